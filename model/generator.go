package model

import (
	"context"
	"errors"
)

// ErrThrottled marks a rate-limit rejection (HTTP 429 semantics) from a
// generative backend. The answer synthesizer retries on it; every other
// generation error is terminal for the attempt.
var ErrThrottled = errors.New("model backend throttled the request")

// Generator produces text from a prompt. Implementations classify 429
// responses as ErrThrottled (wrapped) so callers can retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
