package core

import (
	"sync"
	"time"

	"github.com/nvoronina/matching-engine/internal/domain"
)

// DefaultCutoffHour is the local hour at which GoodForDay orders expire.
const DefaultCutoffHour = 16

// orderEntry locates a resting order: its level (side+price) and its slot
// index inside that level. The cached position must always equal the order's
// true index in the level; removeResting repairs it after every swap-remove.
type orderEntry struct {
	order    *domain.Order
	side     domain.Side
	price    domain.Price
	position int
}

// levelData is the per-price running aggregate over resident orders, used by
// the fill-or-kill feasibility walk instead of per-order iteration.
type levelData struct {
	quantity domain.Quantity
	count    int
}

type levelAction int

const (
	levelAdd levelAction = iota
	levelRemove
	levelMatch
)

type BookConfig struct {
	Instrument string
	CutoffHour int
	// TestMode makes the expiry sweep run a single cycle and return, so
	// tests can observe exactly one prune pass.
	TestMode bool
}

// Book is a single-instrument limit order book with price-time priority.
// All state lives behind one mutex; every exported method holds it for its
// full duration, so add/cancel/modify/match effects are totally ordered.
type Book struct {
	mu     sync.Mutex
	bids   *ladder
	asks   *ladder
	orders map[domain.OrderID]*orderEntry
	data   map[domain.Price]*levelData

	instrument string
	cutoffHour int
	testMode   bool
	now        func() time.Time

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewBook builds a book and starts its GoodForDay expiry sweep. Callers must
// Close the book to stop the sweep.
func NewBook(cfg BookConfig) *Book {
	b := newBook(cfg)
	b.start()
	return b
}

func newBook(cfg BookConfig) *Book {
	if cfg.CutoffHour <= 0 || cfg.CutoffHour > 23 {
		cfg.CutoffHour = DefaultCutoffHour
	}
	return &Book{
		bids:       newLadder(true),
		asks:       newLadder(false),
		orders:     make(map[domain.OrderID]*orderEntry),
		data:       make(map[domain.Price]*levelData),
		instrument: cfg.Instrument,
		cutoffHour: cfg.CutoffHour,
		testMode:   cfg.TestMode,
		now:        time.Now,
		done:       make(chan struct{}),
	}
}

func (b *Book) start() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.sweepGoodForDay()
	}()
}

// Close stops the expiry sweep and waits for its goroutine to exit. The book
// must not be used after Close returns.
func (b *Book) Close() {
	b.closeOnce.Do(func() { close(b.done) })
	b.wg.Wait()
}

// AddOrder admits, inserts and matches an order. Rejections are returned as
// sentinel errors (see errors.go); callers can tell "rejected" apart from
// "accepted, resting, nothing crossed yet".
func (b *Book) AddOrder(o *domain.Order) (domain.Trades, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addOrder(o)
}

// CancelOrder removes a resting order. Unknown ids are a no-op.
func (b *Book) CancelOrder(id domain.OrderID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelOrder(id)
}

// ModifyOrder cancels the order and resubmits it with the new side, price and
// quantity but the original type. The replacement goes through the full
// admission path, so it can be rejected or generate trades. Unknown ids are a
// no-op.
func (b *Book) ModifyOrder(m domain.OrderModify) (domain.Trades, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.orders[m.OrderID]
	if !ok {
		return nil, nil
	}
	typ := entry.order.Type
	b.cancelOrder(m.OrderID)
	return b.addOrder(m.ToOrder(typ))
}

// Size returns the number of live resident orders.
func (b *Book) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.orders)
}

// Depth returns per-level (price, remaining quantity) for both sides, best
// price first.
func (b *Book) Depth() *domain.DepthSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &domain.DepthSnapshot{
		Instrument: b.instrument,
		Bids:       levelInfos(b.bids),
		Asks:       levelInfos(b.asks),
		Timestamp:  b.now(),
	}
}

func levelInfos(l *ladder) []domain.LevelInfo {
	infos := make([]domain.LevelInfo, 0, l.len())
	for _, price := range l.prices {
		var total domain.Quantity
		for _, o := range l.levels[price].orders {
			total += o.RemainingQuantity()
		}
		infos = append(infos, domain.LevelInfo{Price: price, Quantity: total})
	}
	return infos
}

func (b *Book) sideLadder(side domain.Side) *ladder {
	if side == domain.Buy {
		return b.bids
	}
	return b.asks
}

func (b *Book) addOrder(o *domain.Order) (domain.Trades, error) {
	if _, ok := b.orders[o.ID]; ok {
		return nil, ErrDuplicateOrder
	}

	if o.Type == domain.Market {
		// Convert to a limit at the worst resting opposing price so the
		// order can cross everything currently on the other side. With no
		// opposite side there is no reference price at all.
		opposing := b.asks
		if o.Side == domain.Sell {
			opposing = b.bids
		}
		worst := opposing.worst()
		if worst == nil {
			return nil, ErrNoLiquidity
		}
		if err := o.ToGoodTillCancel(worst.price); err != nil {
			return nil, err
		}
	}

	if o.Type == domain.FillAndKill && !b.canMatch(o.Side, o.Price()) {
		return nil, ErrNotMatchable
	}
	if o.Type == domain.FillOrKill && !b.canFullyFill(o.Side, o.Price(), o.InitialQuantity()) {
		return nil, ErrNotFullyFillable
	}

	lvl := b.sideLadder(o.Side).upsert(o.Price())
	lvl.orders = append(lvl.orders, o)
	b.orders[o.ID] = &orderEntry{
		order:    o,
		side:     o.Side,
		price:    o.Price(),
		position: len(lvl.orders) - 1,
	}
	b.updateLevelData(o.Price(), o.InitialQuantity(), levelAdd)

	return b.matchOrders(), nil
}

func (b *Book) cancelOrder(id domain.OrderID) {
	entry, ok := b.orders[id]
	if !ok {
		return
	}
	b.updateLevelData(entry.price, entry.order.RemainingQuantity(), levelRemove)
	b.removeResting(id)
}

// removeResting deletes the order from its level and the id index via
// swap-with-last, then repairs the displaced order's cached position.
// Aggregates are the caller's responsibility.
func (b *Book) removeResting(id domain.OrderID) {
	entry, ok := b.orders[id]
	if !ok {
		return
	}
	delete(b.orders, id)

	lad := b.sideLadder(entry.side)
	lvl := lad.get(entry.price)
	if lvl == nil {
		return
	}

	last := len(lvl.orders) - 1
	lvl.orders[entry.position] = lvl.orders[last]
	lvl.orders[last] = nil
	lvl.orders = lvl.orders[:last]

	if entry.position < len(lvl.orders) {
		moved := lvl.orders[entry.position]
		if movedEntry, ok := b.orders[moved.ID]; ok {
			movedEntry.position = entry.position
		}
	}

	if len(lvl.orders) == 0 {
		lad.remove(entry.price)
	}
}

func (b *Book) updateLevelData(price domain.Price, quantity domain.Quantity, action levelAction) {
	data := b.data[price]
	if data == nil {
		data = &levelData{}
		b.data[price] = data
	}
	switch action {
	case levelAdd:
		data.count++
		data.quantity += quantity
	case levelRemove:
		data.count--
		data.quantity -= quantity
	case levelMatch:
		data.quantity -= quantity
	}
	if data.count == 0 {
		delete(b.data, price)
	}
}

func (b *Book) canMatch(side domain.Side, price domain.Price) bool {
	if side == domain.Buy {
		best := b.asks.best()
		return best != nil && price >= best.price
	}
	best := b.bids.best()
	return best != nil && price <= best.price
}

// canFullyFill walks opposing level aggregates best-first, accumulating
// resting quantity until the order is covered or its price bound is passed.
// No individual order is inspected.
func (b *Book) canFullyFill(side domain.Side, price domain.Price, quantity domain.Quantity) bool {
	if !b.canMatch(side, price) {
		return false
	}
	opposing := b.asks
	if side == domain.Sell {
		opposing = b.bids
	}
	for _, levelPrice := range opposing.prices {
		if side == domain.Buy && levelPrice > price {
			break
		}
		if side == domain.Sell && levelPrice < price {
			break
		}
		data := b.data[levelPrice]
		if data == nil {
			continue
		}
		if quantity <= data.quantity {
			return true
		}
		quantity -= data.quantity
	}
	return false
}

// matchOrders greedily executes while the best bid crosses the best ask.
// Each iteration either fully consumes an order or exits on the no-cross
// check, so the loop is bounded by the number of resident orders.
func (b *Book) matchOrders() domain.Trades {
	var trades domain.Trades

	for {
		bidLvl, askLvl := b.bids.best(), b.asks.best()
		if bidLvl == nil || askLvl == nil {
			break
		}
		if bidLvl.price < askLvl.price {
			break
		}

		bid, ask := bidLvl.orders[0], askLvl.orders[0]
		quantity := min(bid.RemainingQuantity(), ask.RemainingQuantity())
		if quantity == 0 {
			// A resting order is never empty; bail rather than spin.
			break
		}

		// quantity <= remaining on both sides by construction.
		_ = bid.Fill(quantity)
		_ = ask.Fill(quantity)

		trades = append(trades, domain.Trade{
			Bid: domain.TradeInfo{OrderID: bid.ID, Price: bid.Price(), Quantity: quantity},
			Ask: domain.TradeInfo{OrderID: ask.ID, Price: ask.Price(), Quantity: quantity},
		})

		b.onMatched(bid.Price(), quantity, bid.IsFilled())
		b.onMatched(ask.Price(), quantity, ask.IsFilled())

		if bid.IsFilled() {
			b.removeResting(bid.ID)
		}
		if ask.IsFilled() {
			b.removeResting(ask.ID)
		}

		// A fill-and-kill remainder is removed in the same iteration it was
		// partially filled; it never reaches a second order.
		if !bid.IsFilled() && bid.Type == domain.FillAndKill {
			b.updateLevelData(bid.Price(), bid.RemainingQuantity(), levelRemove)
			b.removeResting(bid.ID)
		}
		if !ask.IsFilled() && ask.Type == domain.FillAndKill {
			b.updateLevelData(ask.Price(), ask.RemainingQuantity(), levelRemove)
			b.removeResting(ask.ID)
		}
	}

	return trades
}

func (b *Book) onMatched(price domain.Price, quantity domain.Quantity, fullyFilled bool) {
	if fullyFilled {
		b.updateLevelData(price, quantity, levelRemove)
	} else {
		b.updateLevelData(price, quantity, levelMatch)
	}
}

// sweepGoodForDay cancels every GoodForDay order once the daily cutoff hour
// passes, then re-arms for the next day. The timed wait happens outside the
// book lock and is cut short when Close fires.
func (b *Book) sweepGoodForDay() {
	for {
		now := b.now()
		cutoff := time.Date(now.Year(), now.Month(), now.Day(), b.cutoffHour, 0, 0, 0, now.Location())
		if !now.Before(cutoff) {
			cutoff = cutoff.AddDate(0, 0, 1)
		}
		// Small grace so the scan runs strictly after the cutoff.
		timer := time.NewTimer(cutoff.Sub(now) + 100*time.Millisecond)

		select {
		case <-b.done:
			timer.Stop()
			return
		case <-timer.C:
		}

		b.mu.Lock()
		var expired []domain.OrderID
		for id, entry := range b.orders {
			if entry.order.Type == domain.GoodForDay {
				expired = append(expired, id)
			}
		}
		for _, id := range expired {
			b.cancelOrder(id)
		}
		b.mu.Unlock()

		if b.testMode {
			return
		}
	}
}
