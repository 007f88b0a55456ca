package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Webhook deployment shape.  Telegram retries a delivery that doesn't get a
// prompt 200, so the handler acknowledges unconditionally and immediately;
// the actual sheet work finishes in a detached goroutine.  From that point
// on the only observable outcomes are the reply message and the logs;
// there is no cancellation once the task is launched.

const misconfiguredReply = "The bot is misconfigured and can't reach the spreadsheet. Ask the operator to check the logs."

// webhookHandler acks every delivery.  When setupErr is non-nil the process
// came up with broken configuration or clients; updates are still
// acknowledged, and each one gets the failure reported back instead of
// being handled.
func webhookHandler(bot *Bot, setupErr error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			log.Printf("webhook: undecodable update: %v", err)
			w.WriteHeader(http.StatusOK) // still ack; a retry won't decode any better
			return
		}
		w.WriteHeader(http.StatusOK)

		go func() {
			defer func() {
				if p := recover(); p != nil {
					log.Printf("webhook: handler panicked: %v", p)
				}
			}()
			if setupErr != nil {
				reportSetupFailure(update, setupErr)
				return
			}
			bot.HandleUpdate(context.Background(), update)
		}()
	})
}

// reportSetupFailure handles an update that arrived while the process is
// misconfigured.  The delivery was already acked, so the remaining channels
// are the logs and, when the update names a chat and a bot token is at
// hand, a reply.  A failure to send even that is itself only logged.
func reportSetupFailure(update tgbotapi.Update, setupErr error) {
	log.Printf("webhook: configuration failure: %v", setupErr)
	chatID, ok := updateChatID(update)
	if !ok {
		return
	}
	token := strings.TrimSpace(os.Getenv(envBotToken))
	if token == "" {
		return
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Printf("webhook: cannot reach Telegram to report the failure: %v", err)
		return
	}
	if _, err := api.Send(tgbotapi.NewMessage(chatID, misconfiguredReply)); err != nil {
		log.Printf("webhook: reporting the failure failed too: %v", err)
	}
}

// updateChatID extracts the chat an update came from, when it names one.
func updateChatID(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	}
	return 0, false
}
