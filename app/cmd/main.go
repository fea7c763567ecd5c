package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"policyrag/app/server"
	"policyrag/config"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using the environment as is")
	}
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.FromEnv()
	s := server.NewServer(cfg, logger)

	go func() {
		if err := s.Run(context.Background()); err != nil {
			logger.Error("server exited", "error", err)
			os.Exit(1)
		}
	}()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	logger.Info("received shutdown signal, shutting down")
	s.Stop()
}
