package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const updateJSON = `{"update_id":1,"message":{"message_id":1,"chat":{"id":7},"text":"/list"}}`

func TestWebhookAcksDespiteSetupFailure(t *testing.T) {
	t.Setenv(envBotToken, "") // no token to reply with; the failure goes to the logs
	h := webhookHandler(nil, errors.New("BOT_TOKEN is not set"))

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(updateJSON))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even with broken configuration", rec.Code)
	}
}

func TestWebhookAcksUndecodableBody(t *testing.T) {
	h := webhookHandler(nil, errors.New("broken"))
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestWebhookRejectsNonPost(t *testing.T) {
	h := webhookHandler(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestUpdateChatID(t *testing.T) {
	if _, ok := updateChatID(tgbotapi.Update{}); ok {
		t.Fatalf("empty update must not name a chat")
	}
	id, ok := updateChatID(tgbotapi.Update{
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 7}},
	})
	if !ok || id != 7 {
		t.Fatalf("message chat = (%d, %v), want (7, true)", id, ok)
	}
	id, ok = updateChatID(tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 9}}},
	})
	if !ok || id != 9 {
		t.Fatalf("callback chat = (%d, %v), want (9, true)", id, ok)
	}
}
