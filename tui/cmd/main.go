package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"policyrag/tui"
)

func main() {
	_ = godotenv.Load()

	baseURL := flag.String("url", envOr("RAG_URL", "http://localhost:5001"), "service base URL")
	useLocal := flag.Bool("local", false, "route answers to the local model")
	flag.Parse()

	model := tui.New(tui.NewClient(*baseURL), *useLocal)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "tui error:", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
