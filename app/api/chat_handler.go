package api

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"

	"policyrag/engine"
	"policyrag/speech"
	"policyrag/types"
)

const (
	maxChatMessages     = 3
	sentencesPerMessage = 2
)

var sentenceEnd = regexp.MustCompile(`(?s)(.*?[.!?])(?:\s+|$)`)

// ChatHandler serves the avatar endpoint: the answer is split into short
// utterances, each carrying audio, mouth cues and presentation hints.
type ChatHandler struct {
	engine      *engine.Engine
	synthesizer *speech.Synthesizer
	lipsync     *speech.LipsyncEngine
	logger      *slog.Logger
}

func NewChatHandler(e *engine.Engine, s *speech.Synthesizer, l *speech.LipsyncEngine, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{engine: e, synthesizer: s, lipsync: l, logger: logger}
}

func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var params types.ChatParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	answer := h.engine.Answer(c.Context(), params.Message, false)

	parts := SplitUtterances(answer.Text)
	messages := make([]types.ChatMessage, 0, len(parts))
	for i, part := range parts {
		msg := types.ChatMessage{Text: part}
		msg.FacialExpression, msg.Animation = presentation(part, answer.Kind, i)
		msg.Audio, msg.Lipsync = h.voice(c.Context(), part)
		messages = append(messages, msg)
	}
	return c.JSON(&types.ChatResponse{Messages: messages})
}

// voice attaches audio and mouth cues to one utterance. TTS failure is
// logged and leaves the audio empty; the cues still cover the estimated
// duration so the avatar keeps moving.
func (h *ChatHandler) voice(ctx context.Context, text string) (string, types.LipsyncData) {
	path, audio, err := h.synthesizer.Synthesize(ctx, text)
	if err != nil {
		h.logger.Warn("speech synthesis failed", "error", err)
		return "", speech.SyntheticCues(speech.EstimateDuration(text))
	}
	return audio, h.lipsync.Cues(ctx, path, text)
}

// SplitUtterances breaks an answer into at most three spans of up to two
// sentences each. Text past the cap is dropped rather than crammed into
// the last span.
func SplitUtterances(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	rest := text
	for len(sentences) < maxChatMessages*sentencesPerMessage {
		m := sentenceEnd.FindStringSubmatchIndex(rest)
		if m == nil {
			if s := strings.TrimSpace(rest); s != "" {
				sentences = append(sentences, s)
			}
			break
		}
		sentences = append(sentences, strings.TrimSpace(rest[m[2]:m[3]]))
		rest = rest[m[1]:]
	}

	var parts []string
	for i := 0; i < len(sentences) && len(parts) < maxChatMessages; i += sentencesPerMessage {
		end := i + sentencesPerMessage
		if end > len(sentences) {
			end = len(sentences)
		}
		parts = append(parts, strings.Join(sentences[i:end], " "))
	}
	return parts
}

var talkingAnimations = []string{"Talking_0", "Talking_1", "Talking_2"}

// presentation picks the expression and body animation for one utterance
// from simple text cues plus the answer outcome.
func presentation(text string, kind types.AnswerKind, i int) (string, string) {
	lower := strings.ToLower(text)
	switch {
	case kind == types.AnswerError || kind == types.AnswerOverloaded:
		return "sad", "Talking_2"
	case strings.Contains(lower, "sorry") || strings.Contains(lower, "apologize") || strings.Contains(lower, "couldn't find"):
		return "sad", "Talking_2"
	case strings.HasSuffix(strings.TrimSpace(text), "!"):
		return "smile", "Talking_1"
	case strings.HasSuffix(strings.TrimSpace(text), "?"):
		return "surprised", "Talking_0"
	default:
		return "default", talkingAnimations[i%len(talkingAnimations)]
	}
}
