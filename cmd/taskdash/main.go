package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-kit/kit/log/level"
	"github.com/tgienger/taskdash/internal/api"
	"github.com/tgienger/taskdash/internal/config"
	"github.com/tgienger/taskdash/internal/db"
	"github.com/tgienger/taskdash/internal/logging"
	"github.com/tgienger/taskdash/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.BoolVar(showVersion, "v", false, "print version and exit (shorthand)")
	configPath := flag.String("config", "", "path to config.toml")
	flag.Parse()

	if *showVersion {
		fmt.Printf("taskdash %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, logFile, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	// Initialize database
	database, err := db.New(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	client, err := api.NewClient(api.Options{
		APIURL:     cfg.APIURL,
		AuthURL:    cfg.AuthURL,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring API client: %v\n", err)
		os.Exit(1)
	}

	level.Info(logger).Log("msg", "starting", "version", version, "api_url", cfg.APIURL, "auth_url", cfg.AuthURL)

	// Create and run the application
	app := ui.NewApp(client, client, database, logger)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		level.Error(logger).Log("msg", "application exited", "err", err)
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}
