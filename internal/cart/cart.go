// Package cart holds the client-resident cart state machine. A Cart belongs
// to exactly one customer session and never touches storage itself; checkout
// receives a by-value snapshot of its items.
package cart

import (
	"errors"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pbp/bookorama/internal/domain/models"
)

type State int

const (
	Empty State = iota
	NonEmpty
	Submitting
	Cleared
)

var (
	ErrEmptyCart          = errors.New("checkout on empty cart")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

// rupiah groups digits the Indonesian way: 80000 -> "80.000".
var rupiah = message.NewPrinter(language.Indonesian)

// Cart is an ordered list of book snapshots. The same ISBN may appear more
// than once; repetition is how quantity is represented.
type Cart struct {
	state State
	items []models.Book
}

func New() *Cart {
	return &Cart{state: Empty}
}

func (c *Cart) State() State {
	return c.state
}

// Items returns a copy of the current entries in insertion order.
func (c *Cart) Items() []models.Book {
	return append([]models.Book(nil), c.items...)
}

func (c *Cart) Len() int {
	return len(c.items)
}

// Add appends a book snapshot. Ignored while a checkout is in flight so a
// failed submission restores exactly the items that were submitted.
func (c *Cart) Add(book models.Book) {
	if c.state == Submitting {
		return
	}
	c.items = append(c.items, book)
	c.state = NonEmpty
}

// Remove deletes the first entry matching the book's ISBN and reports
// whether anything was removed. Removing once decrements quantity by one;
// an absent ISBN is a no-op.
func (c *Cart) Remove(book models.Book) bool {
	if c.state == Submitting {
		return false
	}
	for i, item := range c.items {
		if item.ISBN == book.ISBN {
			c.items = append(c.items[:i], c.items[i+1:]...)
			if len(c.items) == 0 {
				c.state = Empty
			}
			return true
		}
	}
	return false
}

// Clear discards all items from any state, including an in-flight
// checkout: a user-initiated clear wins over a pending restore.
func (c *Cart) Clear() {
	c.items = nil
	c.state = Empty
}

// BeginCheckout moves the cart into Submitting and returns a by-value
// snapshot for the orchestrator. The items stay held so a failed submission
// loses nothing.
func (c *Cart) BeginCheckout() ([]models.Book, error) {
	switch c.state {
	case Submitting:
		return nil, ErrCheckoutInProgress
	case Empty, Cleared:
		return nil, ErrEmptyCart
	}
	if len(c.items) == 0 {
		return nil, ErrEmptyCart
	}
	c.state = Submitting
	return append([]models.Book(nil), c.items...), nil
}

// Complete acknowledges a successful checkout: the submitted items are
// discarded. Cleared behaves like Empty for every later transition.
func (c *Cart) Complete() {
	if c.state != Submitting {
		return
	}
	c.items = nil
	c.state = Cleared
}

// Fail returns the cart to NonEmpty with the pre-checkout items intact.
func (c *Cart) Fail() {
	if c.state != Submitting {
		return
	}
	c.state = NonEmpty
}

// Total sums the prices of the current items. Recomputed on every call;
// carts are small enough that a cached running total is not worth the
// invalidation bugs.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Price)
	}
	return total
}

// FormatTotal renders the total for display, e.g. "Rp80.000".
func (c *Cart) FormatTotal() string {
	return rupiah.Sprintf("Rp%d", c.Total().IntPart())
}
