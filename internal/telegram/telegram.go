// internal/telegram/telegram.go
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"storebot/internal/bot"
	"storebot/internal/logger"
)

// DefaultPollTimeout is the long-poll timeout in seconds.
const DefaultPollTimeout = 60

// TransportError wraps a failed Bot API call. Failures are logged and never
// retried.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("telegram %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// API is the part of *tgbotapi.BotAPI the transport uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Handler runs one decoded event.
type Handler interface {
	Handle(ctx context.Context, req bot.Request) bot.Response
}

type Options struct {
	PollTimeout int // seconds; 0 uses DefaultPollTimeout
}

// Bot polls Telegram for updates and renders the handler's screens.
type Bot struct {
	api     API
	handler Handler
	opts    Options
}

// clientTimeout leaves room for a full long poll before a request is abandoned.
const clientTimeout = (DefaultPollTimeout + 15) * time.Second

// Connect authenticates against the Bot API.
func Connect(token string, debug bool) (*tgbotapi.BotAPI, error) {
	client := &http.Client{Timeout: clientTimeout}
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, &TransportError{Op: "connect", Err: err}
	}
	api.Debug = debug
	logger.LogInfo("Authorized on Telegram as @%s", api.Self.UserName)
	return api, nil
}

func New(api API, handler Handler, opts Options) *Bot {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = DefaultPollTimeout
	}
	return &Bot{api: api, handler: handler, opts: opts}
}

var commands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Start the bot and view main menu"},
	{Command: "menu", Description: "Browse CSR2 categories"},
	{Command: "cart", Description: "View your cart"},
	{Command: "search", Description: "Search for specific cars"},
	{Command: "brands", Description: "Browse by car brands"},
	{Command: "help", Description: "Customer support & FAQ"},
}

// Run registers the command menu and processes updates one at a time until ctx is
// cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		logger.LogWarn("%v", &TransportError{Op: "setMyCommands", Err: err})
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.opts.PollTimeout
	updates := b.api.GetUpdatesChan(u)
	logger.LogInfo("📡 Polling for messages...")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			logger.LogInfo("Stopped polling for messages")
			return nil
		case update, ok := <-updates:
			if !ok {
				return errors.New("telegram update channel closed")
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate decodes one update, runs it and renders the response.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	log := logger.WithFields(map[string]interface{}{
		"update_id":      update.UpdateID,
		"correlation_id": uuid.NewString(),
	})

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, log, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, log, update.Message)
	default:
		log.Debug("ignoring update without message or callback")
	}
}

func (b *Bot) handleMessage(ctx context.Context, log *logrus.Entry, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}

	var ev bot.Event
	switch {
	case msg.IsCommand():
		ev = bot.ParseCommand(msg.Command(), msg.CommandArguments())
	case msg.Text != "":
		ev = bot.TextEvent()
	default:
		return
	}

	log = log.WithFields(logrus.Fields{"user_id": msg.From.ID, "event": ev.Action.String()})
	resp := b.handler.Handle(ctx, bot.Request{User: userOf(msg.From), Event: ev})
	if resp.Screen == nil {
		log.Debug("no reply")
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, resp.Screen.Text)
	if markup, ok := Markup(resp.Screen); ok {
		out.ReplyMarkup = markup
	}
	if _, err := b.api.Send(out); err != nil {
		log.Errorf("%v", &TransportError{Op: "sendMessage", Err: err})
		return
	}
	log.Info("message handled")
}

func (b *Bot) handleCallback(ctx context.Context, log *logrus.Entry, q *tgbotapi.CallbackQuery) {
	if q.From == nil {
		return
	}

	ev := bot.ParseCallback(q.Data)
	log = log.WithFields(logrus.Fields{"user_id": q.From.ID, "event": ev.Action.String()})
	resp := b.handler.Handle(ctx, bot.Request{User: userOf(q.From), Event: ev})

	// Always answer so the client stops showing a spinner.
	answer := tgbotapi.NewCallback(q.ID, resp.Alert)
	if resp.ShowAlert {
		answer = tgbotapi.NewCallbackWithAlert(q.ID, resp.Alert)
	}
	if _, err := b.api.Request(answer); err != nil {
		log.Warnf("%v", &TransportError{Op: "answerCallbackQuery", Err: err})
	}

	if resp.Screen == nil || q.Message == nil || q.Message.Chat == nil {
		return
	}

	var edit tgbotapi.EditMessageTextConfig
	if markup, ok := Markup(resp.Screen); ok {
		edit = tgbotapi.NewEditMessageTextAndMarkup(q.Message.Chat.ID, q.Message.MessageID, resp.Screen.Text, markup)
	} else {
		edit = tgbotapi.NewEditMessageText(q.Message.Chat.ID, q.Message.MessageID, resp.Screen.Text)
	}
	if _, err := b.api.Request(edit); err != nil {
		log.Errorf("%v", &TransportError{Op: "editMessageText", Err: err})
		return
	}
	log.Info("callback handled")
}

// Sender delivers plain messages outside of an update, such as admin order
// notifications.
type Sender struct {
	api API
}

func NewSender(api API) *Sender {
	return &Sender{api: api}
}

// SendText returns when the message is sent or ctx ends, whichever is first.
func (s *Sender) SendText(ctx context.Context, chatID int64, text string) error {
	sent := make(chan error, 1)
	go func() {
		_, err := s.api.Send(tgbotapi.NewMessage(chatID, text))
		sent <- err
	}()

	select {
	case err := <-sent:
		if err != nil {
			return &TransportError{Op: "sendMessage", Err: err}
		}
		return nil
	case <-ctx.Done():
		return &TransportError{Op: "sendMessage", Err: ctx.Err()}
	}
}

// Markup converts a screen keyboard to Telegram's inline markup. It reports false
// when the screen has no buttons.
func Markup(s *bot.Screen) (tgbotapi.InlineKeyboardMarkup, bool) {
	if s == nil || len(s.Keyboard) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(s.Keyboard))
	for _, row := range s.Keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			if btn.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
			} else {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
			}
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

func userOf(u *tgbotapi.User) bot.User {
	return bot.User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.UserName,
	}
}
