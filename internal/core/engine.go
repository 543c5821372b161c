package core

import (
	"context"

	"github.com/google/uuid"

	"github.com/nvoronina/matching-engine/internal/domain"
	"github.com/nvoronina/matching-engine/internal/port"
	"github.com/nvoronina/matching-engine/pkg/logger"
)

// Engine drives the book and fans its output out to the collaborators:
// executed trades go to the journal and the stream, depth snapshots to the
// cache. The engine owns no matching logic, and a collaborator failure is
// logged but never reaches book state.
type Engine struct {
	book    *Book
	journal port.Journal
	cache   port.Cache
	stream  port.Stream
	log     *logger.Logger

	instrument string
}

func NewEngine(book *Book, journal port.Journal, cache port.Cache, stream port.Stream, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Default()
	}
	return &Engine{
		book:       book,
		journal:    journal,
		cache:      cache,
		stream:     stream,
		log:        log,
		instrument: book.instrument,
	}
}

// SubmitOrder inserts and matches an order. Rejections come back as the
// book's sentinel errors; use IsRejection to tell them from internal
// failures.
func (e *Engine) SubmitOrder(ctx context.Context, o *domain.Order) (domain.Trades, error) {
	trades, err := e.book.AddOrder(o)
	if err != nil {
		if IsRejection(err) {
			e.log.Debugf("order %d rejected: %v", o.ID, err)
		}
		return nil, err
	}
	e.afterMutation(ctx, trades)
	return trades, nil
}

// CancelOrder removes a resting order; unknown ids are a no-op.
func (e *Engine) CancelOrder(ctx context.Context, id domain.OrderID) {
	e.book.CancelOrder(id)
	e.afterMutation(ctx, nil)
}

// ModifyOrder cancels and resubmits with the original type preserved.
func (e *Engine) ModifyOrder(ctx context.Context, m domain.OrderModify) (domain.Trades, error) {
	trades, err := e.book.ModifyOrder(m)
	if err != nil {
		return nil, err
	}
	e.afterMutation(ctx, trades)
	return trades, nil
}

// Size returns the number of live resident orders.
func (e *Engine) Size() int {
	return e.book.Size()
}

// Depth returns the current per-level view, preferring the cache when it has
// a fresh snapshot.
func (e *Engine) Depth(ctx context.Context) *domain.DepthSnapshot {
	if e.cache != nil {
		if snap, err := e.cache.GetDepth(ctx, e.instrument); err == nil && snap != nil {
			return snap
		}
	}
	snap := e.book.Depth()
	e.setCache(ctx, snap)
	return snap
}

// TradesForOrder returns journaled executions involving the given order.
func (e *Engine) TradesForOrder(ctx context.Context, id domain.OrderID) ([]*domain.TradeRecord, error) {
	if e.journal == nil {
		return nil, nil
	}
	return e.journal.TradesForOrder(ctx, id)
}

// Close stops the book's expiry sweep and waits for it.
func (e *Engine) Close() {
	e.book.Close()
}

func (e *Engine) afterMutation(ctx context.Context, trades domain.Trades) {
	for i := range trades {
		rec := e.record(&trades[i])
		if e.journal != nil {
			if err := e.journal.SaveTrade(ctx, rec); err != nil {
				e.log.Errorf("journal trade %s: %v", rec.ID, err)
			}
		}
		if e.stream != nil {
			if err := e.stream.PublishTrade(ctx, rec); err != nil {
				e.log.Errorf("publish trade %s: %v", rec.ID, err)
			}
		}
	}
	e.setCache(ctx, e.book.Depth())
}

func (e *Engine) setCache(ctx context.Context, snap *domain.DepthSnapshot) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SetDepth(ctx, snap); err != nil {
		e.log.Errorf("cache depth: %v", err)
	}
}

func (e *Engine) record(t *domain.Trade) *domain.TradeRecord {
	return &domain.TradeRecord{
		ID:         uuid.NewString(),
		Instrument: e.instrument,
		BuyOrder:   t.Bid.OrderID,
		SellOrder:  t.Ask.OrderID,
		BidPrice:   t.Bid.Price,
		AskPrice:   t.Ask.Price,
		Quantity:   t.Bid.Quantity,
		ExecutedAt: e.book.now(),
	}
}
