package notify

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storebot/internal/catalog"
	"storebot/internal/logger"
	"storebot/internal/session"
)

type recordingSender struct {
	chatID int64
	text   string
	err    error
	calls  int
}

func (r *recordingSender) SendText(_ context.Context, chatID int64, text string) error {
	r.calls++
	r.chatID = chatID
	r.text = text
	return r.err
}

func sampleNotice() OrderNotice {
	return OrderNotice{
		Order: session.Order{
			ID: "CSR1700000000000",
			Items: []catalog.Product{
				{Name: "5,000,000 Cash", Price: catalog.FixedFloat(1.99)},
				{Name: "CSR2 Bugatti Chiron", Price: catalog.FixedFloat(15)},
				{Name: "Custom Build", Price: catalog.ContactRequired("")},
			},
			Subtotal:     decimal.RequireFromString("16.99"),
			ContactItems: 1,
			CreatedAt:    time.Date(2025, 3, 4, 15, 6, 7, 0, time.UTC),
		},
		Customer: Customer{ID: 42, FirstName: "Ada", Username: "ada"},
	}
}

func TestFormatOrderSummary(t *testing.T) {
	text := FormatOrderSummary(sampleNotice(), time.UTC, "")

	assert.Contains(t, text, "👤 Customer: Ada \n")
	assert.Contains(t, text, "📱 Username: @ada")
	assert.Contains(t, text, "🆔 User ID: 42")
	assert.Contains(t, text, "1. 5,000,000 Cash - 1.99\n2. CSR2 Bugatti Chiron - 15.00\n3. Custom Build - Contact for pricing\n")
	assert.Contains(t, text, "💳 Fixed Price Total: 16.99")
	assert.Contains(t, text, "📞 Contact items: 1")
	assert.Contains(t, text, "📅 Date: 3/4/2025, 3:06:07 PM")
	assert.Contains(t, text, "🌐 Store: csr2mod.com")
}

func TestFormatOrderSummaryContactOnly(t *testing.T) {
	notice := sampleNotice()
	notice.Order.Items = notice.Order.Items[2:]
	notice.Order.Subtotal = decimal.Zero
	notice.Customer.Username = ""

	text := FormatOrderSummary(notice, time.UTC, "shop.example")
	assert.NotContains(t, text, "Fixed Price Total")
	assert.Contains(t, text, "@N/A")
	assert.Contains(t, text, "🌐 Store: shop.example")
}

func TestNotifyOrderSends(t *testing.T) {
	sender := &recordingSender{}
	n, err := New(Config{AdminChatID: "-100123", Location: time.UTC}, sender)
	require.NoError(t, err)
	assert.True(t, n.Enabled())

	require.NoError(t, n.NotifyOrder(context.Background(), sampleNotice()))
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, int64(-100123), sender.chatID)
	assert.Contains(t, sender.text, "🔔 NEW CSR2 ORDER!\n\n🎮 CSR2 MODS ORDER")
}

func TestNotifyOrderFailureIsReturned(t *testing.T) {
	sender := &recordingSender{err: errors.New("chat not found")}
	n, err := New(Config{AdminChatID: "5"}, sender)
	require.NoError(t, err)

	err = n.NotifyOrder(context.Background(), sampleNotice())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CSR1700000000000")
}

func TestNotifyOrderWithoutAdminSkips(t *testing.T) {
	sender := &recordingSender{}
	n, err := New(Config{}, sender)
	require.NoError(t, err)
	assert.False(t, n.Enabled())

	require.NoError(t, n.NotifyOrder(context.Background(), sampleNotice()))
	assert.Zero(t, sender.calls)
}

func TestNotifyOrderMockModeLogs(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	n, err := New(Config{AdminChatID: "7", MockMode: true}, nil)
	require.NoError(t, err)
	require.NoError(t, n.NotifyOrder(context.Background(), sampleNotice()))

	assert.Contains(t, buf.String(), "MOCK ADMIN NOTIFICATION")
	assert.Contains(t, buf.String(), "Contact items: 1")
}

func TestNewRejectsBadChatID(t *testing.T) {
	_, err := New(Config{AdminChatID: "@store"}, &recordingSender{})
	assert.Error(t, err)

	_, err = New(Config{AdminChatID: "5"}, nil)
	assert.Error(t, err)
}
