package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyrag/model"
	"policyrag/types"
)

type scriptedGenerator struct {
	calls   int
	prompts []string
	reply   string
	err     error
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func newTestAgent(g model.Generator) *Agent {
	return New(g, model.NewRateGovernor(0), 0, 3, time.Millisecond, nil)
}

func retrievedFixture() []types.Retrieved {
	return []types.Retrieved{
		{Chunk: types.Chunk{SourceID: "handbook.pdf", Content: "Attendance above 80% is required.", Index: 2}, Score: 0.9},
		{Chunk: types.Chunk{SourceID: "faq.txt", Content: "Waivers are granted case by case.", Index: 0}, Score: 0.5},
	}
}

func TestAnswerEmptyQuery(t *testing.T) {
	gen := &scriptedGenerator{reply: "should not be used"}
	a := newTestAgent(gen)

	for _, q := range []string{"", "   ", "\n\t"} {
		ans := a.Answer(context.Background(), q, retrievedFixture())
		assert.Equal(t, types.AnswerEmptyQuery, ans.Kind)
		assert.NotEmpty(t, ans.Text)
	}
	assert.Zero(t, gen.calls)
}

func TestAnswerNoResults(t *testing.T) {
	gen := &scriptedGenerator{reply: "should not be used"}
	a := newTestAgent(gen)

	ans := a.Answer(context.Background(), "what about attendance?", nil)
	assert.Equal(t, types.AnswerNoResults, ans.Kind)
	assert.Contains(t, ans.Text, "couldn't find any relevant information")
	assert.Zero(t, gen.calls)
}

func TestAnswerSuccess(t *testing.T) {
	gen := &scriptedGenerator{reply: "You need at least 80% attendance."}
	a := newTestAgent(gen)

	ans := a.Answer(context.Background(), "what attendance is required?", retrievedFixture())
	require.Equal(t, types.AnswerOK, ans.Kind)
	assert.Equal(t, "You need at least 80% attendance.", ans.Text)
	require.Len(t, ans.Sources, 2)
	assert.Equal(t, "handbook.pdf", ans.Sources[0].SourceID)
	assert.Equal(t, 0.9, ans.Sources[0].Score)
	assert.Equal(t, 1, gen.calls)
}

func TestAnswerPromptCarriesContextAndQuestion(t *testing.T) {
	gen := &scriptedGenerator{reply: "ok"}
	a := newTestAgent(gen)

	a.Answer(context.Background(), "tell me about waivers", retrievedFixture())
	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "educational assistant")
	assert.Contains(t, prompt, "Attendance above 80% is required.")
	assert.Contains(t, prompt, "Waivers are granted case by case.")
	assert.Contains(t, prompt, "tell me about waivers")
}

func TestAnswerThrottledExactAttempts(t *testing.T) {
	gen := &scriptedGenerator{err: fmt.Errorf("%w: try later", model.ErrThrottled)}
	a := newTestAgent(gen)

	ans := a.Answer(context.Background(), "anything", retrievedFixture())
	assert.Equal(t, types.AnswerOverloaded, ans.Kind)
	assert.Contains(t, ans.Text, "high traffic")
	assert.Equal(t, 3, gen.calls)
}

func TestAnswerOtherErrorApologizes(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("model exploded")}
	a := newTestAgent(gen)

	ans := a.Answer(context.Background(), "anything", retrievedFixture())
	assert.Equal(t, types.AnswerError, ans.Kind)
	assert.Contains(t, ans.Text, "I apologize")
	assert.Contains(t, ans.Text, "model exploded")
	assert.Equal(t, 1, gen.calls)
}

func TestAnswerThrottleThenSuccess(t *testing.T) {
	gen := &flakyGenerator{failures: 2, reply: "recovered answer"}
	a := newTestAgent(gen)

	ans := a.Answer(context.Background(), "anything", retrievedFixture())
	assert.Equal(t, types.AnswerOK, ans.Kind)
	assert.Equal(t, "recovered answer", ans.Text)
	assert.Equal(t, 3, gen.calls)
}

type flakyGenerator struct {
	calls    int
	failures int
	reply    string
}

func (g *flakyGenerator) Generate(context.Context, string) (string, error) {
	g.calls++
	if g.calls <= g.failures {
		return "", fmt.Errorf("%w: busy", model.ErrThrottled)
	}
	return g.reply, nil
}
