package main

import (
	"log/slog"
	"os"

	"github.com/tallvaxt/floraquiz/cmd"
	"github.com/tallvaxt/floraquiz/internal/conf"
	"github.com/tallvaxt/floraquiz/internal/logging"
)

func main() {
	logging.Init(slog.LevelInfo)

	settings, err := conf.Load()
	if err != nil {
		logging.Fatal("Error loading settings", "error", err)
	}

	if settings.Debug {
		logging.Init(slog.LevelDebug)
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
