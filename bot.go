package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot wires the Telegram transport to the store.  Each command handler
// returns an error; the dispatch boundary converts every error into a
// human-readable reply, so nothing short of startup failure takes the
// process down.

// UsageError is a malformed or insufficient command.  Its text is shown to
// the user verbatim, with an example of what would have worked.
type UsageError struct {
	Text string
}

func (e *UsageError) Error() string { return e.Text }

const (
	usageAdd  = "Usage: /add @user buy milk, by friday — or /add me buy milk"
	usageHelp = "I keep per-person to-do tables in our spreadsheet.\n\n" +
		"/add @user <task>[, <goal>] — add a task for someone\n" +
		"/add me <task> — add a task for yourself\n" +
		"/list [user] — pending tasks, newest first\n" +
		"/done [user] — pick a task to mark as done"
	genericFailure = "Something went wrong talking to the spreadsheet. Try again in a bit."
)

// sender is the slice of the Telegram client the handlers use.  The polling
// loop needs the full client; everything else only sends, which is what
// tests fake.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api      *tgbotapi.BotAPI // nil outside the polling deployment path
	sender   sender
	store    *Store
	registry *Registry
}

func NewBot(token string, store *Store, registry *Registry) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	log.Printf("authorized on account %s", api.Self.UserName)
	return &Bot{api: api, sender: api, store: store, registry: registry}, nil
}

// Run long-polls for updates until the context is cancelled.  Used by the
// always-on deployment shape; the webhook shape calls HandleUpdate directly.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case update := <-updates:
			b.HandleUpdate(ctx, update)
		case <-ctx.Done():
			log.Printf("stopped: %v", ctx.Err())
			return
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	b.handleCommand(ctx, update.Message)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	command := strings.ToLower(msg.Command())
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	var err error
	switch command {
	case "start", "help":
		b.reply(chatID, usageHelp)
		return
	case "add":
		err = b.addCommand(ctx, msg, args)
	case "list":
		err = b.listCommand(ctx, msg, args)
	case "done":
		err = b.doneCommand(ctx, msg, args)
	default:
		if id, ok := b.registry.Shortcut(command); ok {
			err = b.addFor(ctx, chatID, id, args)
		}
		// Unknown commands are ignored gracefully.
	}
	if err != nil {
		log.Printf("command /%s failed: %v", command, err)
		b.reply(chatID, userMessage(err))
	}
}

// addCommand handles the three assign forms: explicit @mention, literal
// "me " prefix (caller's own handle), and missing input.
func (b *Bot) addCommand(ctx context.Context, msg *tgbotapi.Message, args string) error {
	if args == "" {
		return &UsageError{Text: usageAdd}
	}
	var (
		id      Identity
		payload string
		err     error
	)
	switch {
	case strings.HasPrefix(args, "@"):
		token := args
		if i := strings.IndexFunc(args, unicode.IsSpace); i >= 0 {
			token, payload = args[:i], strings.TrimSpace(args[i:])
		}
		id, err = b.registry.Resolve(token)
	case strings.EqualFold(args, "me") || hasFoldPrefix(args, "me "):
		payload = strings.TrimSpace(args[len("me"):])
		id, err = b.registry.ResolveSelf(senderHandle(msg))
	default:
		return &UsageError{Text: usageAdd}
	}
	if err != nil {
		return err
	}
	return b.addFor(ctx, msg.Chat.ID, id, payload)
}

func (b *Bot) addFor(ctx context.Context, chatID int64, id Identity, payload string) error {
	purpose, goal := splitPayload(payload)
	if purpose == "" {
		return &UsageError{Text: usageAdd}
	}
	if err := b.store.AddTodo(ctx, id, purpose, goal); err != nil {
		return err
	}
	text := fmt.Sprintf("Added for @%s: %s", id.Handle, purpose)
	if goal != "" {
		text += " (" + goal + ")"
	}
	b.reply(chatID, text)
	return nil
}

func (b *Bot) listCommand(ctx context.Context, msg *tgbotapi.Message, args string) error {
	id, err := b.targetIdentity(msg, args)
	if err != nil {
		return err
	}
	items, err := b.store.ListTodos(ctx, id)
	if err != nil {
		return err
	}
	b.reply(msg.Chat.ID, formatPending(id.Handle, items))
	return nil
}

func (b *Bot) doneCommand(ctx context.Context, msg *tgbotapi.Message, args string) error {
	id, err := b.targetIdentity(msg, args)
	if err != nil {
		return err
	}
	return b.sendDoneKeyboard(ctx, msg.Chat.ID, id)
}

// targetIdentity resolves the optional trailing user/alias token of /list
// and /done, falling back to the caller's own handle when absent.
func (b *Bot) targetIdentity(msg *tgbotapi.Message, args string) (Identity, error) {
	if args == "" {
		return b.registry.ResolveSelf(senderHandle(msg))
	}
	return b.registry.Resolve(args)
}

// sendDoneKeyboard replies with one button per pending item.  The button
// data carries the absolute row number; the row is only as fresh as this
// list.
func (b *Bot) sendDoneKeyboard(ctx context.Context, chatID int64, id Identity) error {
	items, err := b.store.ListTodos(ctx, id)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		b.reply(chatID, formatPending(id.Handle, nil))
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(items))
	for i, item := range items {
		label := fmt.Sprintf("✅ %d) %s", i+1, truncate(item.Purpose, 32))
		data := encodeMarkDoneRow(id.Handle, item.RowNumber)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, data),
		))
	}
	reply := tgbotapi.NewMessage(chatID, fmt.Sprintf("Pick a task of @%s to mark as done:", id.Handle))
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.sender.Send(reply); err != nil {
		return fmt.Errorf("send keyboard: %w", err)
	}
	return nil
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// Acknowledge first to stop the client's loading animation; the real
	// outcome arrives as a separate message.
	if _, err := b.sender.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		log.Printf("answering callback query: %v", err)
	}
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID

	handle, row, showList, ok := decodeMarkDone(cq.Data)
	if !ok {
		return
	}
	id, err := b.registry.Resolve(handle)
	if err == nil {
		if showList {
			err = b.sendDoneKeyboard(ctx, chatID, id)
		} else {
			err = b.markDone(ctx, chatID, id, row)
		}
	}
	if err != nil {
		log.Printf("callback %q failed: %v", cq.Data, err)
		b.reply(chatID, userMessage(err))
	}
}

func (b *Bot) markDone(ctx context.Context, chatID int64, id Identity, row int) error {
	if err := b.store.MarkDone(ctx, row); err != nil {
		return err
	}
	reply := tgbotapi.NewMessage(chatID, fmt.Sprintf("Done ✅ (row %d of @%s)", row, id.Handle))
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Show remaining", encodeShowList(id.Handle)),
	))
	reply.ReplyMarkup = markup
	if _, err := b.sender.Send(reply); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	return nil
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		// Last resort: the user never sees this failure, only the logs do.
		log.Printf("send reply to %d: %v", chatID, err)
	}
}

// formatPending renders the numbered newest-first list, or the no-tasks
// message when nothing qualifies.
func formatPending(handle string, items []TodoItem) string {
	if len(items) == 0 {
		return fmt.Sprintf("No pending tasks for @%s 🎉", handle)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Pending tasks for @%s (newest first):\n", handle)
	for i, item := range items {
		fmt.Fprintf(&sb, "%d) %s", i+1, item.Purpose)
		if item.Goal != "" {
			fmt.Fprintf(&sb, " - %s", item.Goal)
		}
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

// userMessage maps the error taxonomy to reply text.  Anything unrecognized
// is a backend failure and gets the generic fallback.
func userMessage(err error) string {
	var unknown *UnknownIdentityError
	if errors.As(err, &unknown) {
		return fmt.Sprintf("I don't know %q. I do know: %s", unknown.Token, strings.Join(unknown.Known, ", "))
	}
	var noHeader *HeaderNotFoundError
	if errors.As(err, &noHeader) {
		return fmt.Sprintf("Couldn't find the table header for @%s (searched rows %d-%d).",
			noHeader.Handle, noHeader.Start, noHeader.End)
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return usage.Text
	}
	if errors.Is(err, ErrNoSheets) {
		return "The spreadsheet has no sheets."
	}
	if errors.Is(err, ErrUntitledSheet) {
		return "The leftmost sheet has no title."
	}
	return genericFailure
}

func senderHandle(msg *tgbotapi.Message) string {
	if msg.From == nil {
		return ""
	}
	return msg.From.UserName
}

func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
