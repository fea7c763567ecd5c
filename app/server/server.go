package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"policyrag/app/api"
	"policyrag/app/middleware"
	"policyrag/config"
	"policyrag/engine"
	"policyrag/loader"
	"policyrag/speech"
)

var fiberConfig = fiber.Config{
	ErrorHandler: api.ErrorHandler,
	BodyLimit:    32 * 1024 * 1024,
}

type Server struct {
	cfg    config.Config
	logger *slog.Logger
	app    *fiber.App
}

func NewServer(cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Server) Run(ctx context.Context) error {
	eng, err := engine.New(ctx, s.cfg, s.logger)
	if err != nil {
		return err
	}

	// An empty corpus directory is an admin problem, not a startup
	// failure: the service comes up and answers with the not-ready
	// message until documents are uploaded and a rebuild runs.
	if err := eng.Build(ctx); err != nil {
		if errors.Is(err, loader.ErrNoCorpus) || errors.Is(err, loader.ErrNoDocuments) {
			s.logger.Warn("starting without an index", "error", err)
		} else {
			return err
		}
	}

	synthesizer := speech.NewSynthesizer(s.cfg.TTSURL, s.cfg.AudioDir, eng.Governor(), s.logger)
	lipsync := speech.NewLipsyncEngine(s.cfg.RhubarbBin, s.logger)

	var (
		app          = fiber.New(fiberConfig)
		checkHandler = api.NewCheckHandler(eng)
		askHandler   = api.NewAskHandler(eng)
		chatHandler  = api.NewChatHandler(eng, synthesizer, lipsync, s.logger)
		fileHandler  = api.NewFileHandler(eng)

		check = app.Group("/check")
		apiv1 = app.Group("/api/v1")
		admin = app.Group("/admin", middleware.AdminKey(s.cfg.AdminKey))
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	check.Get("/status", checkHandler.HandleStatus)

	apiv1.Post("/ask", askHandler.HandleAsk)
	apiv1.Post("/chat", chatHandler.HandleChat)

	admin.Post("/upload", fileHandler.HandleUpload)
	admin.Get("/files", fileHandler.HandleListFiles)
	admin.Post("/rebuild", fileHandler.HandleRebuild)

	s.app = app
	s.logger.Info("server listening", "addr", s.cfg.ListenAddr)
	return app.Listen(s.cfg.ListenAddr)
}

func (s *Server) Stop() {
	if s.app != nil {
		if err := s.app.Shutdown(); err != nil {
			s.logger.Error("shutdown failed", "error", err)
		}
	}
	s.logger.Info("server stopped")
}
