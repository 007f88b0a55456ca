package main

// Telegram bot that keeps simple per-person to-do tables in one Google
// Sheets spreadsheet.  Two deployment shapes: an always-on long-polling
// process (default) and a webhook server that acknowledges updates
// immediately and finishes the work detached.  The spreadsheet is the only
// store; nothing is persisted locally between invocations.

import (
	"context"
	"fmt"
	"log"
	"net/http"
)

func main() {
	cfg, cfgErr := loadConfig()
	mode := envOr(envMode, modePoll)

	if mode != modeWebhook {
		if cfgErr != nil {
			log.Fatalf("config: %v", cfgErr)
		}
		bot, err := buildBot(cfg)
		if err != nil {
			log.Fatalf("%v", err)
		}
		log.Printf("polling mode")
		bot.Run(context.Background())
		return
	}

	// Webhook shape: a broken configuration is a per-request condition, not
	// a startup-fatal one.  The server comes up regardless, every delivery
	// still gets its 200, and the failure is reported through the reply
	// channel when a chat can be reached, else only through the logs.
	setupErr := cfgErr
	var bot *Bot
	if setupErr == nil {
		bot, setupErr = buildBot(cfg)
	}
	if setupErr != nil {
		log.Printf("webhook setup failed, reporting per request: %v", setupErr)
	}
	addr := ":8080"
	if cfg != nil {
		addr = cfg.ListenAddr
	}
	http.Handle("/webhook", webhookHandler(bot, setupErr))
	log.Printf("webhook mode, listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}

func buildBot(cfg *Config) (*Bot, error) {
	backend, err := newGoogleSheets(context.Background(), cfg.SpreadsheetID, cfg.CredentialsJSON)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	registry := NewRegistry(householdIdentities())
	store := NewStore(backend, registry)
	bot, err := NewBot(cfg.BotToken, store, registry)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return bot, nil
}

// householdIdentities is the deployed mapping: who the bot knows, and where
// each person's table lives in the sheet.  Hendrik's table sits at a fixed
// offset near the top; Aaron's moves around as rows get added above it, so
// his header is found by scanning.  Tests build their own registries, this
// one is production data only.
func householdIdentities() []Identity {
	return []Identity{
		{
			Handle:   "hendrik_w",
			Aliases:  []string{"he", "hendrik"},
			Shortcut: "he",
			Location: TableLocation{StartRow: 3},
		},
		{
			Handle:   "aaron_mk",
			Aliases:  []string{"aaron"},
			Shortcut: "aaron",
			Location: TableLocation{SearchStart: 10, SearchEnd: 120},
		},
	}
}
