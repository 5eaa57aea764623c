package session

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"storebot/internal/catalog"
)

// ErrEmptyCart is returned by Checkout when there is nothing to order.
var ErrEmptyCart = errors.New("cart is empty")

// Order is an immutable record of one checkout.
type Order struct {
	ID           string
	Items        []catalog.Product
	Subtotal     decimal.Decimal // fixed-price items only
	ContactItems int
	CreatedAt    time.Time
}

// HasFixed reports whether any item had a fixed price.
func (o Order) HasFixed() bool {
	return len(o.Items) > o.ContactItems
}

// NewOrderID derives the order id from the checkout time.
func NewOrderID(t time.Time) string {
	return fmt.Sprintf("CSR%d", t.UnixMilli())
}

// Session is one user's browsing state. It is owned by the user id it was created
// for; all access goes through its methods.
type Session struct {
	UserID int64

	mu              sync.Mutex
	cart            []catalog.Product
	currentCategory string
	searchResults   []catalog.Product
	orderHistory    []Order
}

// Cart returns a copy of the cart in insertion order.
func (s *Session) Cart() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cart)
}

// AddToCart appends p; the same product may be added more than once.
func (s *Session) AddToCart(p catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = append(s.cart, p)
}

func (s *Session) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = nil
}

// CurrentCategory returns the last category visited, or "".
func (s *Session) CurrentCategory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentCategory
}

func (s *Session) SetCategory(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentCategory = key
}

func (s *Session) SearchResults() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.searchResults)
}

// SetSearchResults replaces the previous search, including with an empty result.
func (s *Session) SetSearchResults(results []catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchResults = slices.Clone(results)
}

func (s *Session) OrderHistory() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.orderHistory)
}

// Checkout turns the cart into an order, appends it to the history and empties the
// cart. An empty cart leaves the session untouched.
func (s *Session) Checkout(now time.Time) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cart) == 0 {
		return Order{}, ErrEmptyCart
	}

	order := Order{
		ID:        NewOrderID(now),
		Items:     s.cart,
		Subtotal:  decimal.Zero,
		CreatedAt: now,
	}
	for _, item := range s.cart {
		if amount, ok := item.Price.Amount(); ok {
			order.Subtotal = order.Subtotal.Add(amount)
		} else {
			order.ContactItems++
		}
	}

	s.orderHistory = append(s.orderHistory, order)
	s.cart = nil
	return order, nil
}

// Store maps user ids to sessions. Sessions are created on first use and live for
// the life of the process.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// GetOrCreate returns the user's session, creating it on first reference.
func (st *Store) GetOrCreate(userID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[userID]
	if !ok {
		s = &Session{UserID: userID}
		st.sessions[userID] = s
	}
	return s
}

// Count returns the number of sessions created so far.
func (st *Store) Count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
