package api

import (
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"policyrag/engine"
	"policyrag/loader"
)

// FileHandler covers the admin corpus operations: uploading documents,
// listing what is on disk and triggering a rebuild.
type FileHandler struct {
	engine *engine.Engine
}

func NewFileHandler(e *engine.Engine) *FileHandler {
	return &FileHandler{engine: e}
}

func (h *FileHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ErrBadRequest()
	}

	name := filepath.Base(fileHeader.Filename)
	if !loader.AllowedExtension(name) {
		return ErrUnsupportedFile(name)
	}

	dir := h.engine.CorpusDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, name)
	if err := c.SaveFile(fileHeader, path); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"result": "ok", "file": name})
}

func (h *FileHandler) HandleListFiles(c *fiber.Ctx) error {
	entries, err := os.ReadDir(h.engine.CorpusDir())
	if err != nil {
		if os.IsNotExist(err) {
			return c.JSON(fiber.Map{"files": []string{}})
		}
		return err
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && loader.AllowedExtension(entry.Name()) {
			files = append(files, entry.Name())
		}
	}
	return c.JSON(fiber.Map{"files": files})
}

func (h *FileHandler) HandleRebuild(c *fiber.Ctx) error {
	if err := h.engine.Rebuild(c.Context()); err != nil {
		return err
	}
	return c.JSON(h.engine.Status())
}
