// Package agent turns retrieved context into a user-facing answer. It owns
// the prompt, the token budget on the context window, the spacing between
// outbound model calls and the retry discipline on throttled responses.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sethvargo/go-retry"

	"policyrag/model"
	"policyrag/types"
)

const promptTemplate = `You are an educational assistant. Use the following context from institutional documents to answer the question. If the context does not contain enough information, say so honestly.

Context:
%s

Question: %s

Answer:`

const (
	msgEmptyQuery = "Please ask a question about the program, policies or procedures."
	msgNoResults  = "I couldn't find any relevant information in the provided documents to answer your question."
	msgOverloaded = "I'm experiencing high traffic right now. Please try again in a few minutes."
)

// Agent synthesizes answers with a single generator behind a rate gate.
type Agent struct {
	generator model.Generator
	governor  *model.RateGovernor
	logger    *slog.Logger

	maxContextTokens int
	retryAttempts    int
	retryUnit        time.Duration
}

func New(generator model.Generator, governor *model.RateGovernor, maxContextTokens, retryAttempts int, retryUnit time.Duration, logger *slog.Logger) *Agent {
	if retryAttempts <= 0 {
		retryAttempts = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		generator:        generator,
		governor:         governor,
		logger:           logger,
		maxContextTokens: maxContextTokens,
		retryAttempts:    retryAttempts,
		retryUnit:        retryUnit,
	}
}

// Answer produces the final typed answer for a query and its retrieved
// context. An empty query and an empty context short-circuit before any
// model call is made.
func (a *Agent) Answer(ctx context.Context, query string, retrieved []types.Retrieved) types.Answer {
	if strings.TrimSpace(query) == "" {
		return types.Answer{Kind: types.AnswerEmptyQuery, Text: msgEmptyQuery}
	}
	if len(retrieved) == 0 {
		return types.Answer{Kind: types.AnswerNoResults, Text: msgNoResults}
	}

	prompt := a.buildPrompt(query, retrieved)
	text, err := a.generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, model.ErrThrottled) {
			a.logger.Warn("model throttled after retries", "attempts", a.retryAttempts)
			return types.Answer{Kind: types.AnswerOverloaded, Text: msgOverloaded, Sources: sources(retrieved)}
		}
		a.logger.Error("answer generation failed", "error", err)
		return types.Answer{
			Kind:    types.AnswerError,
			Text:    fmt.Sprintf("I apologize, but I encountered an error while processing your question: %v", err),
			Sources: sources(retrieved),
		}
	}
	return types.Answer{Kind: types.AnswerOK, Text: text, Sources: sources(retrieved)}
}

// generate runs the gated model call with linear backoff on throttling.
// The first attempt waits retryUnit after a throttle, the second twice
// that; the configured attempt count is a hard cap.
func (a *Agent) generate(ctx context.Context, prompt string) (string, error) {
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(a.retryAttempts-1), retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return time.Duration(attempt) * a.retryUnit, false
	}))

	var text string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if waited := a.governor.Gate(); waited > 0 {
			a.logger.Debug("rate gate held call", "waited", waited)
		}
		out, err := a.generator.Generate(ctx, prompt)
		if err != nil {
			if errors.Is(err, model.ErrThrottled) {
				return retry.RetryableError(err)
			}
			return err
		}
		text = out
		return nil
	})
	return text, err
}

func (a *Agent) buildPrompt(query string, retrieved []types.Retrieved) string {
	parts := make([]string, len(retrieved))
	for i, r := range retrieved {
		parts[i] = r.Chunk.Content
	}
	contextText := a.trimToBudget(strings.Join(parts, "\n\n"))
	return fmt.Sprintf(promptTemplate, contextText, query)
}

// trimToBudget cuts the context to the configured token budget so the
// prompt stays inside the model window regardless of chunk sizes.
func (a *Agent) trimToBudget(text string) string {
	if a.maxContextTokens <= 0 {
		return text
	}
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		a.logger.Warn("tokenizer unavailable, sending untrimmed context", "error", err)
		return text
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= a.maxContextTokens {
		return text
	}
	return enc.Decode(tokens[:a.maxContextTokens])
}

func sources(retrieved []types.Retrieved) []types.Source {
	out := make([]types.Source, len(retrieved))
	for i, r := range retrieved {
		out[i] = types.Source{
			SourceID:  r.Chunk.SourceID,
			ChunkText: r.Chunk.Content,
			Index:     r.Chunk.Index,
			Score:     r.Score,
		}
	}
	return out
}
