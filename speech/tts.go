// Package speech produces the audio side of avatar replies: spoken audio
// for each message plus mouth-cue timelines the 3D front end plays back.
// Everything here is best effort; a reply without audio is still a reply.
package speech

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"policyrag/model"
)

// Synthesizer fetches spoken audio for short text spans from a
// translate-style TTS endpoint and keeps the files under audioDir. Calls
// go through the shared rate governor like every other outbound model
// request.
type Synthesizer struct {
	client   *http.Client
	baseURL  string
	audioDir string
	lang     string
	governor *model.RateGovernor
	logger   *slog.Logger
}

func NewSynthesizer(baseURL, audioDir string, governor *model.RateGovernor, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		client:   &http.Client{Timeout: 15 * time.Second},
		baseURL:  baseURL,
		audioDir: audioDir,
		lang:     "en",
		governor: governor,
		logger:   logger,
	}
}

// Synthesize fetches audio for the text and stores it as an mp3 file.
// It returns the file path and the base64-encoded payload.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (string, string, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", s.lang)
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", "", fmt.Errorf("build tts request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	if s.governor != nil {
		s.governor.Gate()
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("tts request: unexpected status %d", resp.StatusCode)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read tts response: %w", err)
	}

	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create audio dir: %w", err)
	}
	path := filepath.Join(s.audioDir, uuid.New().String()+".mp3")
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", "", fmt.Errorf("write audio file: %w", err)
	}
	return path, base64.StdEncoding.EncodeToString(audio), nil
}
