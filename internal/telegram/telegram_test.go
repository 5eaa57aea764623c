package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storebot/internal/bot"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  error
	sendWait time.Duration
	reqErr   error
	updates  chan tgbotapi.Update
	stopped  bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 8)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	time.Sleep(f.sendWait)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: f.reqErr == nil}, f.reqErr
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type handlerFunc func(ctx context.Context, req bot.Request) bot.Response

func (h handlerFunc) Handle(ctx context.Context, req bot.Request) bot.Response { return h(ctx, req) }

type recorder struct {
	requests []bot.Request
	resp     bot.Response
}

func (r *recorder) Handle(_ context.Context, req bot.Request) bot.Response {
	r.requests = append(r.requests, req)
	return r.resp
}

func commandMessage(text string, chatID, userID int64) *tgbotapi.Message {
	length := len(text)
	for i, c := range text {
		if c == ' ' {
			length = i
			break
		}
	}
	return &tgbotapi.Message{
		MessageID: 1,
		Text:      text,
		Chat:      &tgbotapi.Chat{ID: chatID},
		From:      &tgbotapi.User{ID: userID, FirstName: "Bo", UserName: "bo"},
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

var menuScreen = &bot.Screen{
	Text: "menu",
	Keyboard: [][]bot.Button{
		{{Text: "Cart", Data: "cart"}, {Text: "Site", URL: "https://csr2mod.com"}},
	},
}

func TestMarkup(t *testing.T) {
	_, ok := Markup(&bot.Screen{Text: "plain"})
	assert.False(t, ok)

	markup, ok := Markup(menuScreen)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 1)
	row := markup.InlineKeyboard[0]
	require.Len(t, row, 2)
	require.NotNil(t, row[0].CallbackData)
	assert.Equal(t, "cart", *row[0].CallbackData)
	require.NotNil(t, row[1].URL)
	assert.Equal(t, "https://csr2mod.com", *row[1].URL)
	assert.Nil(t, row[1].CallbackData)
}

func TestCommandSendsNewMessage(t *testing.T) {
	api := newFakeAPI()
	rec := &recorder{resp: bot.Response{Screen: menuScreen}}
	b := New(api, rec, Options{})

	b.HandleUpdate(context.Background(), tgbotapi.Update{UpdateID: 1, Message: commandMessage("/search bugatti chiron", 55, 9)})

	require.Len(t, rec.requests, 1)
	assert.Equal(t, bot.Search("bugatti chiron"), rec.requests[0].Event)
	assert.Equal(t, bot.User{ID: 9, FirstName: "Bo", Username: "bo"}, rec.requests[0].User)

	require.Len(t, api.sent, 1)
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(55), msg.ChatID)
	assert.Equal(t, "menu", msg.Text)
	assert.IsType(t, tgbotapi.InlineKeyboardMarkup{}, msg.ReplyMarkup)
}

func TestPlainTextIsTextEvent(t *testing.T) {
	api := newFakeAPI()
	rec := &recorder{}
	b := New(api, rec, Options{})

	msg := &tgbotapi.Message{Text: "hello", Chat: &tgbotapi.Chat{ID: 1}, From: &tgbotapi.User{ID: 2}}
	b.HandleUpdate(context.Background(), tgbotapi.Update{Message: msg})

	require.Len(t, rec.requests, 1)
	assert.Equal(t, bot.ActionText, rec.requests[0].Event.Action)
	assert.Empty(t, api.sent, "nil screen sends nothing")
}

func TestCallbackEditsAndAnswers(t *testing.T) {
	api := newFakeAPI()
	rec := &recorder{resp: bot.Response{Screen: menuScreen, Alert: "✅ added", ShowAlert: true}}
	b := New(api, rec, Options{})

	q := &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: 9},
		Data:    "addcar:chiron",
		Message: &tgbotapi.Message{MessageID: 77, Chat: &tgbotapi.Chat{ID: 55}},
	}
	b.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: q})

	require.Len(t, rec.requests, 1)
	assert.Equal(t, bot.AddCar("chiron"), rec.requests[0].Event)

	require.Len(t, api.requests, 2)
	answer, ok := api.requests[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, "cb-1", answer.CallbackQueryID)
	assert.True(t, answer.ShowAlert)
	assert.Equal(t, "✅ added", answer.Text)

	edit, ok := api.requests[1].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, int64(55), edit.ChatID)
	assert.Equal(t, 77, edit.MessageID)
	assert.Equal(t, "menu", edit.Text)
	require.NotNil(t, edit.ReplyMarkup)
}

func TestCallbackWithoutScreenOnlyAnswers(t *testing.T) {
	api := newFakeAPI()
	b := New(api, &recorder{}, Options{})

	q := &tgbotapi.CallbackQuery{ID: "cb-2", From: &tgbotapi.User{ID: 9}, Data: "noop", Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}}
	b.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: q})

	require.Len(t, api.requests, 1)
	answer := api.requests[0].(tgbotapi.CallbackConfig)
	assert.False(t, answer.ShowAlert)
}

func TestTransportErrorsAreSwallowed(t *testing.T) {
	api := newFakeAPI()
	api.sendErr = errors.New("Forbidden: bot was blocked by the user")
	b := New(api, &recorder{resp: bot.Response{Screen: menuScreen}}, Options{})

	assert.NotPanics(t, func() {
		b.HandleUpdate(context.Background(), tgbotapi.Update{Message: commandMessage("/menu", 1, 2)})
	})

	err := NewSender(api).SendText(context.Background(), 1, "order")
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "sendMessage", te.Op)
	assert.Contains(t, te.Error(), "blocked")
}

func TestRunProcessesUntilCancelled(t *testing.T) {
	api := newFakeAPI()
	var calls int
	b := New(api, handlerFunc(func(_ context.Context, req bot.Request) bot.Response {
		calls++
		return bot.Response{Screen: &bot.Screen{Text: req.Event.Action.String()}}
	}), Options{PollTimeout: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	api.updates <- tgbotapi.Update{UpdateID: 1, Message: commandMessage("/start", 1, 2)}
	api.updates <- tgbotapi.Update{UpdateID: 2, Message: commandMessage("/cart", 1, 2)}
	require.Eventually(t, func() bool { return api.sentCount() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.Equal(t, 2, calls)
	api.mu.Lock()
	defer api.mu.Unlock()
	assert.True(t, api.stopped)
	_, ok := api.requests[0].(tgbotapi.SetMyCommandsConfig)
	assert.True(t, ok, "command menu registered first")
}

func TestSenderStopsAtContextDeadline(t *testing.T) {
	api := newFakeAPI()
	api.sendWait = 3 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := NewSender(api).SendText(ctx, 42, "🔔 NEW CSR2 ORDER!")
	assert.Less(t, time.Since(start), time.Second)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSenderDelivers(t *testing.T) {
	api := newFakeAPI()
	require.NoError(t, NewSender(api).SendText(context.Background(), 42, "hello"))

	require.Equal(t, 1, api.sentCount())
	msg := api.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "hello", msg.Text)
}
