package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"policyrag/engine"
	"policyrag/types"
)

// AskHandler serves the plain question-answer endpoint.
type AskHandler struct {
	engine *engine.Engine
}

func NewAskHandler(e *engine.Engine) *AskHandler {
	return &AskHandler{engine: e}
}

func (h *AskHandler) HandleAsk(c *fiber.Ctx) error {
	var params types.AskParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	answer := h.engine.Answer(c.Context(), params.Query, params.UseLocal)

	resp := &types.AskResponse{
		Kind:      answer.Kind,
		Answer:    answer.Text,
		Sources:   answer.Sources,
		Timestamp: time.Now(),
	}
	return c.JSON(resp)
}
