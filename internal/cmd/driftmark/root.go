// Package driftmark builds the driftmark CLI: an interactive play loop plus
// journal inspection and verification commands.
package driftmark

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mverett/driftmark/internal/platform/config"
)

// Config holds driftmark CLI configuration.
type Config struct {
	DBPath      string `env:"DRIFTMARK_DB" envDefault:"driftmark.db"`
	ContentDir  string `env:"DRIFTMARK_CONTENT" envDefault:"content"`
	TotalQuests int    `env:"DRIFTMARK_TOTAL_QUESTS" envDefault:"3"`
	LogLevel    string `env:"DRIFTMARK_LOG_LEVEL" envDefault:"info"`
}

// ParseConfig loads .env (when present) and parses environment configuration.
func ParseConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewRoot builds the root command with all subcommands attached.
func NewRoot(version string) (*cobra.Command, error) {
	cfg, err := ParseConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.LogLevel)

	rootCmd := &cobra.Command{
		Use:     "driftmark",
		Short:   "A salvage-strategy narrative engine driven by an event-sourced journal",
		Version: version,
	}
	rootCmd.PersistentFlags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the journal database")
	rootCmd.PersistentFlags().StringVar(&cfg.ContentDir, "content", cfg.ContentDir, "Path to the content directory")

	rootCmd.AddCommand(
		newPlayCmd(&cfg, logger),
		newReplayCmd(&cfg, logger),
		newVerifyCmd(&cfg, logger),
	)
	return rootCmd, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
