// cmd/lonboard/main.go
//
// This is the entry point for the lonboard dashboard.
//
// Flow:
// 1. Load .env overrides, resolve the data directory and config
// 2. Open the logbook and credential store
// 3. Wire the API client, session and resource store
// 4. Launch the TUI

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/lonhq/lonboard/internal/api"
	"github.com/lonhq/lonboard/internal/config"
	"github.com/lonhq/lonboard/internal/logbook"
	"github.com/lonhq/lonboard/internal/resource"
	"github.com/lonhq/lonboard/internal/session"
	"github.com/lonhq/lonboard/internal/tokenstore"
	"github.com/lonhq/lonboard/internal/tui"
)

func main() {
	// A .env in the working directory can override LONBOARD_BASE_URL and
	// LONBOARD_DATA_DIR without touching the shell profile.
	_ = godotenv.Load()

	dataDir, err := config.DefaultDataDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving data directory: %v\n", err)
		os.Exit(1)
	}
	if err := config.InitDataDir(dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing %s: %v\n", dataDir, err)
		os.Exit(1)
	}
	cfg, err := config.NewConfig(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	lb, err := logbook.New(cfg.LogPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening logbook: %v\n", err)
		os.Exit(1)
	}
	defer lb.Close()

	tokens := tokenstore.New(cfg.CredentialsPath())
	client := api.New(cfg.BaseURL(), tokens, api.WithLogbook(lb))
	sess := session.New(client, tokens, lb)
	store := resource.NewStore(client)

	lb.Info("lonboard starting, backend %s", cfg.BaseURL())

	p := tea.NewProgram(
		tui.NewApp(cfg, sess, store, lb),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
