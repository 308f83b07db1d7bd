package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbp/bookorama/internal/domain/models"
)

func book(isbn string, price int64) models.Book {
	return models.Book{
		ISBN:       isbn,
		Title:      "title " + isbn,
		Author:     "author",
		Price:      decimal.NewFromInt(price),
		CategoryID: 1,
	}
}

func TestAddKeepsDuplicates(t *testing.T) {
	c := New()
	c.Add(book("A", 50000))
	c.Add(book("A", 50000))
	c.Add(book("B", 30000))

	assert.Equal(t, NonEmpty, c.State())
	require.Len(t, c.Items(), 3)
	assert.Equal(t, "A", c.Items()[0].ISBN)
	assert.Equal(t, "A", c.Items()[1].ISBN)
	assert.Equal(t, "B", c.Items()[2].ISBN)
}

func TestRemoveFirstOccurrenceOnly(t *testing.T) {
	c := New()
	c.Add(book("A", 50000))
	c.Add(book("A", 50000))
	c.Add(book("B", 30000))

	removed := c.Remove(book("A", 50000))

	assert.True(t, removed)
	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].ISBN)
	assert.Equal(t, "B", items[1].ISBN)
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	c := New()
	c.Add(book("A", 50000))

	removed := c.Remove(book("Z", 10000))

	assert.False(t, removed)
	assert.Len(t, c.Items(), 1)
	assert.Equal(t, NonEmpty, c.State())
}

func TestRemoveLastItemEmptiesCart(t *testing.T) {
	c := New()
	c.Add(book("A", 50000))
	c.Remove(book("A", 50000))

	assert.Equal(t, Empty, c.State())
	assert.Len(t, c.Items(), 0)
}

func TestClear(t *testing.T) {
	c := New()
	c.Add(book("A", 50000))
	c.Add(book("B", 30000))
	c.Clear()

	assert.Equal(t, Empty, c.State())
	assert.Len(t, c.Items(), 0)
}

func TestBeginCheckoutOnEmptyCart(t *testing.T) {
	c := New()
	snapshot, err := c.BeginCheckout()

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, snapshot)
	assert.Equal(t, Empty, c.State())
}

func TestBeginCheckoutSnapshotsByValue(t *testing.T) {
	c := New()
	c.Add(book("A", 50000))
	c.Add(book("B", 30000))

	snapshot, err := c.BeginCheckout()
	require.NoError(t, err)
	require.Len(t, snapshot, 2)
	assert.Equal(t, Submitting, c.State())

	// Mutating the snapshot never reaches back into the cart.
	snapshot[0].Title = "changed"
	c.Fail()
	assert.Equal(t, "title A", c.Items()[0].Title)
}

func TestDoubleBeginCheckout(t *testing.T) {
	c := New()
	c.Add(book("A", 50000))

	_, err := c.BeginCheckout()
	require.NoError(t, err)

	_, err = c.BeginCheckout()
	assert.ErrorIs(t, err, ErrCheckoutInProgress)
}

func TestFailRestoresItems(t *testing.T) {
	c := New()
	c.Add(book("A", 50000))
	c.Add(book("A", 50000))
	c.Add(book("B", 30000))
	before := c.Items()

	_, err := c.BeginCheckout()
	require.NoError(t, err)
	c.Fail()

	assert.Equal(t, NonEmpty, c.State())
	assert.Equal(t, before, c.Items())
}

func TestCompleteClearsCart(t *testing.T) {
	c := New()
	c.Add(book("A", 50000))

	_, err := c.BeginCheckout()
	require.NoError(t, err)
	c.Complete()

	assert.Equal(t, Cleared, c.State())
	assert.Len(t, c.Items(), 0)

	// Cleared behaves like Empty: checkout is impossible, adding works.
	_, err = c.BeginCheckout()
	assert.ErrorIs(t, err, ErrEmptyCart)
	c.Add(book("B", 30000))
	assert.Equal(t, NonEmpty, c.State())
}

func TestMutationsIgnoredWhileSubmitting(t *testing.T) {
	c := New()
	c.Add(book("A", 50000))
	_, err := c.BeginCheckout()
	require.NoError(t, err)

	c.Add(book("B", 30000))
	assert.Len(t, c.Items(), 1)
	assert.False(t, c.Remove(book("A", 50000)))
	assert.Equal(t, Submitting, c.State())
}

func TestClearWorksFromAnyState(t *testing.T) {
	c := New()
	c.Add(book("A", 50000))
	_, err := c.BeginCheckout()
	require.NoError(t, err)

	c.Clear()
	assert.Equal(t, Empty, c.State())
	assert.Len(t, c.Items(), 0)

	// the late Fail is a no-op; the clear already won
	c.Fail()
	assert.Equal(t, Empty, c.State())
}

func TestTotalRecomputed(t *testing.T) {
	c := New()
	assert.True(t, c.Total().IsZero())

	c.Add(book("A", 50000))
	c.Add(book("B", 30000))
	assert.True(t, c.Total().Equal(decimal.NewFromInt(80000)))

	c.Remove(book("A", 50000))
	assert.True(t, c.Total().Equal(decimal.NewFromInt(30000)))
}

func TestFormatTotal(t *testing.T) {
	c := New()
	c.Add(book("A", 50000))
	c.Add(book("B", 30000))

	assert.Equal(t, "Rp80.000", c.FormatTotal())
}
