// Package telegram adapts Telegram updates to the transport-neutral
// event dispatcher, using github.com/go-telegram/bot for long polling.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	botpkg "github.com/nbenali/campusbot-go/internal/bot"
	domerrors "github.com/nbenali/campusbot-go/internal/errors"
	"github.com/nbenali/campusbot-go/internal/logger"
)

const (
	msgUnknownCommand = "أمر غير معروف. جرّب /help.\n" +
		"Commande inconnue. Essayez /help.\n" +
		"Unknown command. Try /help."

	msgInternalError = "حدث خطأ، يرجى المحاولة لاحقاً.\n" +
		"Une erreur s'est produite, veuillez réessayer plus tard.\n" +
		"Something went wrong, please try again later."
)

// Adapter connects a Telegram bot to the event processor.
type Adapter struct {
	b         *tgbot.Bot
	processor *botpkg.Processor
	log       *logger.Logger
}

// New creates the adapter and registers all update handlers.
// The token is the Telegram Bot API token.
func New(token string, processor *botpkg.Processor, log *logger.Logger) (*Adapter, error) {
	a := &Adapter{
		processor: processor,
		log:       log.WithModule("telegram"),
	}

	b, err := tgbot.New(token, tgbot.WithDefaultHandler(a.handleDefault))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	a.b = b
	a.register()

	return a, nil
}

// register wires commands and keyboard callbacks to the processor.
func (a *Adapter) register() {
	commands := []string{
		botpkg.CommandStart,
		botpkg.CommandHelp,
		botpkg.CommandStatus,
		botpkg.CommandRestart,
	}
	for _, command := range commands {
		cmd := command
		a.b.RegisterHandler(tgbot.HandlerTypeMessageText, "/"+cmd, tgbot.MatchTypePrefix,
			func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
				a.handleCommand(ctx, update, cmd)
			})
	}

	callbackPrefixes := []string{
		botpkg.CallbackInstitutionPrefix,
		botpkg.CallbackSubUnitPrefix,
		botpkg.CallbackDepartmentPrefix,
	}
	for _, prefix := range callbackPrefixes {
		a.b.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, prefix, tgbot.MatchTypePrefix, a.handleCallback)
	}
	a.b.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, botpkg.CallbackSkipDepartment, tgbot.MatchTypeExact, a.handleCallback)
}

// Start begins long polling. Blocks until ctx is cancelled.
func (a *Adapter) Start(ctx context.Context) {
	a.log.Info("telegram long polling started")
	a.b.Start(ctx)
}

func (a *Adapter) handleCommand(ctx context.Context, update *models.Update, command string) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	userID := strconv.FormatInt(update.Message.From.ID, 10)
	chatID := update.Message.Chat.ID

	reply, err := a.processor.HandleCommand(ctx, userID, command)
	a.deliver(ctx, chatID, reply, err)
}

func (a *Adapter) handleCallback(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil {
		return
	}

	// Acknowledge first so the client stops its spinner.
	_, _ = b.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID})

	chatID := cq.From.ID
	if msg := cq.Message.Message; msg != nil {
		chatID = msg.Chat.ID
	}
	userID := strconv.FormatInt(cq.From.ID, 10)

	reply, err := a.processor.HandleCallback(ctx, userID, cq.Data)
	a.deliver(ctx, chatID, reply, err)
}

// handleDefault receives everything no registered handler matched:
// free-text questions and unknown slash commands.
func (a *Adapter) handleDefault(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}
	userID := strconv.FormatInt(msg.From.ID, 10)
	chatID := msg.Chat.ID

	if strings.HasPrefix(msg.Text, "/") {
		command := strings.TrimPrefix(strings.Fields(msg.Text)[0], "/")
		reply, err := a.processor.HandleCommand(ctx, userID, command)
		if errors.Is(err, domerrors.ErrUnknownAction) {
			a.send(ctx, chatID, botpkg.Reply{Text: msgUnknownCommand})
			return
		}
		a.deliver(ctx, chatID, reply, err)
		return
	}

	reply, err := a.processor.HandleText(ctx, userID, msg.Text)
	a.deliver(ctx, chatID, reply, err)
}

// deliver sends the reply, or a generic error message when processing
// failed for a reason the user cannot fix.
func (a *Adapter) deliver(ctx context.Context, chatID int64, reply botpkg.Reply, err error) {
	if err != nil {
		a.log.WithError(err).ErrorContext(ctx, "event processing failed", "chat_id", chatID)
		a.send(ctx, chatID, botpkg.Reply{Text: msgInternalError})
		return
	}
	a.send(ctx, chatID, reply)
}

func (a *Adapter) send(ctx context.Context, chatID int64, reply botpkg.Reply) {
	if reply.Text == "" {
		return
	}

	params := &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   reply.Text,
	}
	if kb := ChoicesKeyboard(reply.Choices); kb != nil {
		params.ReplyMarkup = kb
	}

	if _, err := a.b.SendMessage(ctx, params); err != nil {
		a.log.WithError(err).ErrorContext(ctx, "send message failed", "chat_id", chatID)
	}
}
