package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Configuration is read from the environment.  A .env file in the working
// directory is loaded first if present (real environment variables win), so
// local runs don't need an export dance.  A missing required setting is
// fatal at startup in polling mode; in webhook mode the server starts
// anyway and the failure is reported per acknowledged request, through the
// reply channel when possible.

const (
	envBotToken      = "BOT_TOKEN"
	envSpreadsheetID = "SPREADSHEET_ID"
	envCredsJSON     = "GOOGLE_CREDENTIALS_JSON"
	envCredsFile     = "GOOGLE_CREDENTIALS_FILE"
	envMode          = "MODE"
	envListenAddr    = "LISTEN_ADDR"
)

const (
	modePoll    = "poll"
	modeWebhook = "webhook"
)

type Config struct {
	BotToken      string
	SpreadsheetID string
	// CredentialsJSON holds the service-account key material.  It is taken
	// from GOOGLE_CREDENTIALS_JSON directly, or read from the file named by
	// GOOGLE_CREDENTIALS_FILE.
	CredentialsJSON []byte
	Mode            string
	ListenAddr      string
}

func loadConfig() (*Config, error) {
	// Ignore the error: a missing .env simply means the environment is
	// already populated.
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:      strings.TrimSpace(os.Getenv(envBotToken)),
		SpreadsheetID: strings.TrimSpace(os.Getenv(envSpreadsheetID)),
		Mode:          envOr(envMode, modePoll),
		ListenAddr:    envOr(envListenAddr, ":8080"),
	}
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("%s is not set; please provide your Telegram bot token", envBotToken)
	}
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("%s is not set", envSpreadsheetID)
	}
	if cfg.Mode != modePoll && cfg.Mode != modeWebhook {
		return nil, fmt.Errorf("%s must be %q or %q, got %q", envMode, modePoll, modeWebhook, cfg.Mode)
	}

	if raw := strings.TrimSpace(os.Getenv(envCredsJSON)); raw != "" {
		cfg.CredentialsJSON = []byte(raw)
	} else if path := strings.TrimSpace(os.Getenv(envCredsFile)); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read credentials file: %w", err)
		}
		cfg.CredentialsJSON = b
	} else {
		return nil, fmt.Errorf("either %s or %s must be set", envCredsJSON, envCredsFile)
	}
	return cfg, nil
}

// envOr returns the value of the named environment variable, or def when it
// is unset or blank.
func envOr(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}
