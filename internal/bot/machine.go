package bot

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sourcegraph/conc"

	"storebot/internal/catalog"
	"storebot/internal/logger"
	"storebot/internal/notify"
	"storebot/internal/session"
)

const (
	// DefaultWebAppURL is linked from the main menu when no storefront is configured.
	DefaultWebAppURL = "https://yourdomain.com"

	// DefaultNotifyTimeout bounds a single admin notification.
	DefaultNotifyTimeout = 15 * time.Second
)

// User is the Telegram account behind a request.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
}

// Request is one decoded inbound event.
type Request struct {
	User  User
	Event Event
}

// Response is what the transport should show. A nil Screen leaves the current
// message unchanged.
type Response struct {
	Screen    *Screen
	Alert     string
	ShowAlert bool
}

// Catalogs provides the current catalog snapshot.
type Catalogs interface {
	Snapshot() *catalog.Snapshot
}

// Sessions provides per-user session state.
type Sessions interface {
	GetOrCreate(userID int64) *session.Session
}

// OrderNotifier forwards completed orders to the store admin.
type OrderNotifier interface {
	NotifyOrder(ctx context.Context, notice notify.OrderNotice) error
}

// Machine turns events into screens, applying session changes along the way.
type Machine struct {
	catalogs  Catalogs
	sessions  Sessions
	notifier  OrderNotifier
	now       func() time.Time
	location  *time.Location
	webAppURL string
	storeName string

	notifyTimeout time.Duration
	notifications conc.WaitGroup
}

type Option func(*Machine)

// WithClock replaces time.Now, used for order ids and dates.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithLocation sets the time zone order dates are shown in.
func WithLocation(loc *time.Location) Option {
	return func(m *Machine) { m.location = loc }
}

func WithWebAppURL(url string) Option {
	return func(m *Machine) {
		if url != "" {
			m.webAppURL = url
		}
	}
}

// WithNotifyTimeout bounds how long one admin notification may take.
func WithNotifyTimeout(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.notifyTimeout = d
		}
	}
}

func WithStoreName(name string) Option {
	return func(m *Machine) { m.storeName = name }
}

// NewMachine wires the state machine. notifier may be nil.
func NewMachine(catalogs Catalogs, sessions Sessions, notifier OrderNotifier, opts ...Option) *Machine {
	m := &Machine{
		catalogs:  catalogs,
		sessions:  sessions,
		notifier:  notifier,
		now:       time.Now,
		location:  time.Local,
		webAppURL: DefaultWebAppURL,

		notifyTimeout: DefaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle runs one event to completion.
func (m *Machine) Handle(ctx context.Context, req Request) Response {
	snap := m.catalogs.Snapshot()
	idx := snap.Index
	sess := m.sessions.GetOrCreate(req.User.ID)
	ev := req.Event

	switch ev.Action {
	case ActionStart:
		return show(welcomeScreen(req.User.FirstName, snap.Catalog.Size(), m.webAppURL))

	case ActionShowMenu, ActionMainMenu:
		return show(menuScreen(m.webAppURL))

	case ActionText:
		return show(textWelcomeScreen(snap.Catalog.Size(), m.webAppURL))

	case ActionHelp:
		return show(helpScreen(snap.Catalog.Size()))

	case ActionShowCart:
		return show(cartScreen(sess.Cart()))

	case ActionSearchPrompt:
		return show(searchPromptScreen())

	case ActionSearch:
		if ev.Arg == "" {
			return show(searchPromptScreen())
		}
		results := idx.Search(ev.Arg)
		sess.SetSearchResults(results)
		logger.LogDebug("Search %q by user %d: %d results", ev.Arg, req.User.ID, len(results))
		return show(searchResultsScreen(ev.Arg, results))

	case ActionListBrands:
		return show(brandsScreen(idx))

	case ActionSelectCategory:
		screen, err := m.categoryPage(idx, ev.Arg, 0, "Choose an item:")
		if err != nil {
			return notFound(err)
		}
		sess.SetCategory(ev.Arg)
		return show(screen)

	case ActionPaginate:
		prompt := "Choose an item:"
		if cat, ok := idx.Category(ev.Arg); ok && cat.IsCarCategory() {
			prompt = "Choose a car:"
		}
		screen, err := m.categoryPage(idx, ev.Arg, ev.Page, prompt)
		if err != nil {
			return notFound(err)
		}
		return show(screen)

	case ActionBackToCategory:
		if key := sess.CurrentCategory(); key != "" {
			if screen, err := m.categoryPage(idx, key, 0, "Choose an item:"); err == nil {
				return show(screen)
			}
		}
		return show(menuScreen(m.webAppURL))

	case ActionViewCar:
		car, err := idx.Car(ev.Arg)
		if err != nil {
			return notFound(err)
		}
		return show(carScreen(car))

	case ActionViewItem:
		item, err := idx.Item(ev.Arg)
		if err != nil {
			return notFound(err)
		}
		return show(itemScreen(item))

	case ActionAddCar:
		car, err := idx.Car(ev.Arg)
		if err != nil {
			return notFound(err)
		}
		return m.addToCart(sess, car)

	case ActionAddItem:
		item, err := idx.Item(ev.Arg)
		if err != nil {
			return notFound(err)
		}
		return m.addToCart(sess, item)

	case ActionClearCart:
		sess.ClearCart()
		return Response{Screen: cartScreen(nil), Alert: "🗑️ Cart cleared!", ShowAlert: true}

	case ActionCheckout:
		return m.checkout(ctx, req.User, sess)

	case ActionSupport:
		return show(supportScreen())

	case ActionNoop:
		return Response{}

	default:
		logger.LogWarn("Unhandled event %s (%q) from user %d", ev.Action, ev.Arg, req.User.ID)
		return Response{}
	}
}

func (m *Machine) categoryPage(idx *catalog.Index, key string, page int, prompt string) (*Screen, error) {
	cat, ok := idx.Category(key)
	if !ok {
		return nil, &catalog.NotFoundError{Kind: "category", ID: key}
	}
	products, err := idx.CategoryProducts(key)
	if err != nil {
		return nil, err
	}
	return categoryScreen(cat, products, page, prompt), nil
}

func (m *Machine) addToCart(sess *session.Session, p catalog.Product) Response {
	sess.AddToCart(p)
	return Response{
		Screen:    cartScreen(sess.Cart()),
		Alert:     "✅ " + p.Name + " added to cart!",
		ShowAlert: true,
	}
}

func (m *Machine) checkout(ctx context.Context, user User, sess *session.Session) Response {
	order, err := sess.Checkout(m.now())
	if errors.Is(err, session.ErrEmptyCart) {
		return Response{Alert: "🛒 Your cart is empty!", ShowAlert: true}
	}
	if err != nil {
		logger.LogError("Checkout failed for user %d: %v", user.ID, err)
		return Response{Alert: "Checkout failed, please try again.", ShowAlert: true}
	}

	notice := notify.OrderNotice{
		Order: order,
		Customer: notify.Customer{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Username:  user.Username,
		},
	}
	logger.LogInfo("Order %s placed by user %d: %d items, subtotal %s, %d contact items",
		order.ID, user.ID, len(order.Items), order.Subtotal.StringFixed(2), order.ContactItems)

	m.notifyAdmin(ctx, notice)

	summary := notify.FormatOrderSummary(notice, m.location, m.storeName)
	return show(confirmationScreen(order.ID, summary))
}

// notifyAdmin sends the order to the admin in the background. The customer's
// confirmation never waits on it.
func (m *Machine) notifyAdmin(ctx context.Context, notice notify.OrderNotice) {
	if m.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	m.notifications.Go(func() {
		ctx, cancel := context.WithTimeout(ctx, m.notifyTimeout)
		defer cancel()
		if err := m.notifier.NotifyOrder(ctx, notice); err != nil {
			logger.LogError("Admin notification failed for order %s: %v", notice.Order.ID, err)
		}
	})
}

// Wait blocks until every admin notification started so far has finished.
func (m *Machine) Wait() {
	m.notifications.Wait()
}

func show(s *Screen) Response {
	return Response{Screen: s}
}

func notFound(err error) Response {
	logger.LogDebug("Ignoring stale reference: %v", err)
	return Response{}
}
