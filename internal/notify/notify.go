// internal/notify/notify.go
package notify

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/pkg/errors"

	"storebot/internal/logger"
	"storebot/internal/session"
)

const (
	DefaultStoreName = "csr2mod.com"
	dateLayout       = "1/2/2006, 3:04:05 PM"
)

// Config holds admin notification settings.
type Config struct {
	AdminChatID string // Telegram chat that receives orders; empty disables delivery
	MockMode    bool   // log notifications instead of sending them
	StoreName   string
	Location    *time.Location
}

// Customer identifies who placed an order.
type Customer struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
}

// OrderNotice is everything an order summary shows.
type OrderNotice struct {
	Order    session.Order
	Customer Customer
}

// Sender delivers a plain text message to a chat.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

var summaryTemplate = template.Must(template.New("order").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`🎮 CSR2 MODS ORDER

👤 Customer: {{.Customer.FirstName}} {{.Customer.LastName}}
📱 Username: @{{or .Customer.Username "N/A"}}
🆔 User ID: {{.Customer.ID}}

🛒 Items Ordered:
{{range $i, $item := .Order.Items}}{{inc $i}}. {{$item.Name}} - {{$item.Price}}
{{end}}{{if .Order.HasFixed}}
💳 Fixed Price Total: {{.Order.Subtotal.StringFixed 2}}
{{end}}{{if .Order.ContactItems}}📞 Contact items: {{.Order.ContactItems}}
{{end}}📅 Date: {{.Date}}
🌐 Store: {{.Store}}`))

// FormatOrderSummary renders the summary shown to both the customer and the admin.
func FormatOrderSummary(notice OrderNotice, loc *time.Location, store string) string {
	if loc == nil {
		loc = time.Local
	}
	if store == "" {
		store = DefaultStoreName
	}

	data := struct {
		OrderNotice
		Date  string
		Store string
	}{
		OrderNotice: notice,
		Date:        notice.Order.CreatedAt.In(loc).Format(dateLayout),
		Store:       store,
	}

	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, data); err != nil {
		// The template only reads fields that always exist.
		logger.LogError("Failed to render order summary for %s: %v", notice.Order.ID, err)
		return "🎮 CSR2 MODS ORDER " + notice.Order.ID
	}
	return buf.String()
}

// Notifier forwards orders to the store admin.
type Notifier struct {
	config Config
	chatID int64
	sender Sender
}

// New validates the admin chat id. A nil sender is allowed in mock mode.
func New(config Config, sender Sender) (*Notifier, error) {
	n := &Notifier{config: config, sender: sender}
	if config.AdminChatID != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(config.AdminChatID), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid admin chat id %q", config.AdminChatID)
		}
		n.chatID = id
	}
	if sender == nil && !config.MockMode && n.chatID != 0 {
		return nil, errors.New("notify: sender required unless mock mode is enabled")
	}
	return n, nil
}

// Enabled reports whether orders go anywhere.
func (n *Notifier) Enabled() bool {
	return n.config.MockMode || n.chatID != 0
}

// NotifyOrder sends the admin the order summary. Callers treat failures as
// non-fatal.
func (n *Notifier) NotifyOrder(ctx context.Context, notice OrderNotice) error {
	message := "🔔 NEW CSR2 ORDER!\n\n" + FormatOrderSummary(notice, n.config.Location, n.config.StoreName)

	if n.config.MockMode {
		logger.LogInfo("🔔 ========== MOCK ADMIN NOTIFICATION ==========")
		logger.LogInfo("📬 To chat: %s", valueOr(n.config.AdminChatID, "(none)"))
		logger.LogInfo("🧾 Order: %s", notice.Order.ID)
		logger.LogInfo("---")
		for _, line := range strings.Split(message, "\n") {
			logger.LogInfo("   %s", line)
		}
		logger.LogInfo("---")
		logger.LogInfo("✅ Mock notification logged successfully")
		return nil
	}

	if n.chatID == 0 {
		logger.LogInfo("No admin chat configured, skipping notification for order %s", notice.Order.ID)
		return nil
	}

	if err := n.sender.SendText(ctx, n.chatID, message); err != nil {
		return errors.Wrapf(err, "notify admin of order %s", notice.Order.ID)
	}

	logger.LogInfo("Admin notified of order %s", notice.Order.ID)
	return nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
