package api

import (
	"github.com/gofiber/fiber/v2"

	"policyrag/engine"
)

type CheckHandler struct {
	engine *engine.Engine
}

func NewCheckHandler(e *engine.Engine) *CheckHandler {
	return &CheckHandler{engine: e}
}

func (h *CheckHandler) HandleHealthy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"result": "ok"})
}

func (h *CheckHandler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.engine.Status())
}
