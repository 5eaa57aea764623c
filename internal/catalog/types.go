package catalog

import (
	"github.com/shopspring/decimal"
)

// Kind separates catalog cars (loaded from the CSV export) from the
// hand-authored static items (top ups, packs, VIP, services, accounts).
type Kind int

const (
	KindCar Kind = iota
	KindItem
)

func (k Kind) String() string {
	switch k {
	case KindCar:
		return "car"
	case KindItem:
		return "item"
	default:
		return "unknown"
	}
}

// ContactNote is shown wherever a price needs a manual quote.
const ContactNote = "Contact for pricing"

// Price is either a fixed amount or a contact-for-pricing marker. The two are
// never interchangeable: use Amount to branch on the variant.
type Price struct {
	amount  decimal.Decimal
	contact string
}

// Fixed returns a fixed price.
func Fixed(amount decimal.Decimal) Price {
	return Price{amount: amount}
}

// FixedFloat is Fixed for literal amounts.
func FixedFloat(amount float64) Price {
	return Price{amount: decimal.NewFromFloat(amount)}
}

// ContactRequired returns a price that must be quoted by the store. An empty note
// falls back to ContactNote.
func ContactRequired(note string) Price {
	if note == "" {
		note = ContactNote
	}
	return Price{contact: note}
}

// Amount returns the fixed amount and true, or zero and false for a contact price.
func (p Price) Amount() (decimal.Decimal, bool) {
	if p.contact != "" {
		return decimal.Zero, false
	}
	return p.amount, true
}

func (p Price) IsContact() bool {
	return p.contact != ""
}

// String renders fixed prices with two decimals and contact prices as their note.
func (p Price) String() string {
	if amount, ok := p.Amount(); ok {
		return amount.StringFixed(2)
	}
	return p.contact
}

// Variant is one color/SKU/price row of a car.
type Variant struct {
	Color string
	Price Price
	SKU   string
}

// Product is a sellable entry: a car from the CSV export or a static item.
type Product struct {
	ID          string
	Kind        Kind
	Name        string
	Description string
	Image       string
	Price       Price

	// Car fields
	Brand     string
	Vendor    string
	Tags      string
	Published bool
	Variants  []Variant

	// Static item field: the category key the item was authored under.
	Category string
}

func (p Product) IsCar() bool {
	return p.Kind == KindCar
}

// Catalog is the deduplicated result of one CSV load. It is never mutated after
// the loader returns it.
type Catalog struct {
	Cars []Product
	Rows int // data rows read, including skipped ones
}

func (c *Catalog) Size() int {
	if c == nil {
		return 0
	}
	return len(c.Cars)
}

// Category is a browsable menu section.
type Category struct {
	Key   string
	Name  string
	Emoji string

	// Car categories read from a brand bucket, capped at Limit entries.
	Bucket string
	Limit  int

	// Static categories carry their items directly.
	Items []Product
}

func (c Category) IsCarCategory() bool {
	return c.Bucket != ""
}
