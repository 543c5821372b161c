package core

import (
	"testing"

	"github.com/nvoronina/matching-engine/internal/domain"
)

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertEqual(t *testing.T, expected, actual interface{}, msg string) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

func assertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Errorf("%s: expected true", msg)
	}
}

// newTestBook returns a book whose sweep has not been started, so tests
// control it explicitly.
func newTestBook() *Book {
	return newBook(BookConfig{Instrument: "TEST"})
}

func gtc(id domain.OrderID, side domain.Side, price domain.Price, qty domain.Quantity) *domain.Order {
	return domain.NewOrder(domain.GoodTillCancel, id, side, price, qty)
}

// checkIndexIntegrity verifies that every resident order's cached position
// equals its true index in its level, and that the per-price aggregates match
// the remaining quantity actually resting at each price.
func checkIndexIntegrity(t *testing.T, b *Book) {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	seen := 0
	totals := make(map[domain.Price]domain.Quantity)
	counts := make(map[domain.Price]int)

	for _, lad := range []*ladder{b.bids, b.asks} {
		for _, price := range lad.prices {
			lvl := lad.levels[price]
			if len(lvl.orders) == 0 {
				t.Errorf("empty level %d left in ladder", price)
			}
			for i, o := range lvl.orders {
				entry, ok := b.orders[o.ID]
				if !ok {
					t.Errorf("order %d resting at %d has no index entry", o.ID, price)
					continue
				}
				if entry.position != i {
					t.Errorf("order %d: cached position %d, true index %d", o.ID, entry.position, i)
				}
				if entry.price != price {
					t.Errorf("order %d: cached price %d, resting at %d", o.ID, entry.price, price)
				}
				totals[price] += o.RemainingQuantity()
				counts[price]++
				seen++
			}
		}
	}

	if seen != len(b.orders) {
		t.Errorf("index has %d entries, levels hold %d orders", len(b.orders), seen)
	}
	for price, data := range b.data {
		if data.quantity != totals[price] || data.count != counts[price] {
			t.Errorf("aggregate at %d: (%d, %d), resident orders sum to (%d, %d)",
				price, data.quantity, data.count, totals[price], counts[price])
		}
	}
	for price := range totals {
		if _, ok := b.data[price]; !ok {
			t.Errorf("no aggregate for occupied price %d", price)
		}
	}
}
