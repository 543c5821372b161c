package core

import (
	"sort"

	"github.com/nvoronina/matching-engine/internal/domain"
)

// level is the FIFO queue of orders resting at one price. Removal uses
// swap-with-last, so Book keeps each order's slot index in its id index.
type level struct {
	price  domain.Price
	orders []*domain.Order
}

// ladder holds one side's levels keyed by price, with the price keys kept
// sorted best first: descending for bids, ascending for asks.
type ladder struct {
	descending bool
	prices     []domain.Price
	levels     map[domain.Price]*level
}

func newLadder(descending bool) *ladder {
	return &ladder{
		descending: descending,
		levels:     make(map[domain.Price]*level),
	}
}

func (l *ladder) len() int { return len(l.prices) }

func (l *ladder) best() *level {
	if len(l.prices) == 0 {
		return nil
	}
	return l.levels[l.prices[0]]
}

func (l *ladder) worst() *level {
	if len(l.prices) == 0 {
		return nil
	}
	return l.levels[l.prices[len(l.prices)-1]]
}

func (l *ladder) get(price domain.Price) *level { return l.levels[price] }

// upsert returns the level at price, creating it in sorted position if absent.
func (l *ladder) upsert(price domain.Price) *level {
	if lvl, ok := l.levels[price]; ok {
		return lvl
	}
	i := l.search(price)
	l.prices = append(l.prices, 0)
	copy(l.prices[i+1:], l.prices[i:])
	l.prices[i] = price

	lvl := &level{price: price}
	l.levels[price] = lvl
	return lvl
}

func (l *ladder) remove(price domain.Price) {
	if _, ok := l.levels[price]; !ok {
		return
	}
	delete(l.levels, price)
	i := l.search(price)
	if i < len(l.prices) && l.prices[i] == price {
		l.prices = append(l.prices[:i], l.prices[i+1:]...)
	}
}

// search returns the slot where price sits (or would be inserted) in the
// best-first ordering.
func (l *ladder) search(price domain.Price) int {
	return sort.Search(len(l.prices), func(i int) bool {
		if l.descending {
			return l.prices[i] <= price
		}
		return l.prices[i] >= price
	})
}
