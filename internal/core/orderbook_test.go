package core

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nvoronina/matching-engine/internal/domain"
)

// =============================================================================
// ADMISSION
// =============================================================================

func TestBook_Empty(t *testing.T) {
	b := newTestBook()
	assertEqual(t, 0, b.Size(), "size of new book")
}

func TestBook_AddOrders(t *testing.T) {
	b := newTestBook()

	for id := domain.OrderID(1); id <= 3; id++ {
		trades, err := b.AddOrder(gtc(id, domain.Buy, 100, 10))
		assertNoError(t, err)
		assertEqual(t, 0, len(trades), "same-side orders must not trade")
	}

	assertEqual(t, 3, b.Size(), "book size")
	checkIndexIntegrity(t, b)
}

func TestBook_DuplicateOrderRejected(t *testing.T) {
	b := newTestBook()

	_, err := b.AddOrder(gtc(1, domain.Buy, 100, 10))
	assertNoError(t, err)

	trades, err := b.AddOrder(gtc(1, domain.Sell, 100, 10))
	if !errors.Is(err, ErrDuplicateOrder) {
		t.Fatalf("expected ErrDuplicateOrder, got %v", err)
	}
	assertEqual(t, 0, len(trades), "rejected order must not trade")
	assertEqual(t, 1, b.Size(), "rejected order must not be inserted")
}

func TestBook_MarketOrderEmptyOppositeSide(t *testing.T) {
	b := newTestBook()

	trades, err := b.AddOrder(domain.NewMarketOrder(1, domain.Buy, 10))
	if !errors.Is(err, ErrNoLiquidity) {
		t.Fatalf("expected ErrNoLiquidity, got %v", err)
	}
	assertEqual(t, 0, len(trades), "rejected market order must not trade")
	assertEqual(t, 0, b.Size(), "rejected market order must not be inserted")
}

func TestBook_MarketOrderConvertsAtWorstOpposingPrice(t *testing.T) {
	b := newTestBook()

	// Non-crossing resting book: bids below, asks above.
	assertNoError(t, addAll(b,
		gtc(1, domain.Buy, 100, 10),
		gtc(2, domain.Buy, 150, 10),
		gtc(3, domain.Sell, 200, 10),
		gtc(4, domain.Sell, 300, 10),
	))

	// The market buy becomes a limit at the worst ask (300) and sweeps from
	// the best ask up, so it consumes the 200 level first.
	trades, err := b.AddOrder(domain.NewMarketOrder(5, domain.Buy, 10))
	assertNoError(t, err)

	assertEqual(t, 1, len(trades), "trade count")
	assertEqual(t, domain.OrderID(3), trades[0].Ask.OrderID, "best ask consumed first")
	assertEqual(t, domain.Price(300), trades[0].Bid.Price, "market order converted at worst ask")
	assertEqual(t, domain.Price(200), trades[0].Ask.Price, "resting side keeps its price")
	assertEqual(t, domain.Quantity(10), trades[0].Bid.Quantity, "full quantity")
	assertEqual(t, 3, b.Size(), "both bids and the far ask remain")
	checkIndexIntegrity(t, b)
}

func addAll(b *Book, orders ...*domain.Order) error {
	for _, o := range orders {
		if _, err := b.AddOrder(o); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// MATCHING
// =============================================================================

func TestBook_ExactCross(t *testing.T) {
	b := newTestBook()

	_, err := b.AddOrder(gtc(1, domain.Buy, 100, 10))
	assertNoError(t, err)

	trades, err := b.AddOrder(gtc(2, domain.Sell, 100, 10))
	assertNoError(t, err)

	assertEqual(t, 1, len(trades), "trade count")
	assertEqual(t, domain.OrderID(1), trades[0].Bid.OrderID, "bid order id")
	assertEqual(t, domain.OrderID(2), trades[0].Ask.OrderID, "ask order id")
	assertEqual(t, domain.Price(100), trades[0].Bid.Price, "bid price")
	assertEqual(t, domain.Price(100), trades[0].Ask.Price, "ask price")
	assertEqual(t, domain.Quantity(10), trades[0].Bid.Quantity, "quantity")
	assertEqual(t, 0, b.Size(), "both orders fully filled")
	checkIndexIntegrity(t, b)
}

func TestBook_TradeCarriesEachSidesOwnPrice(t *testing.T) {
	b := newTestBook()

	_, err := b.AddOrder(gtc(1, domain.Sell, 100, 10))
	assertNoError(t, err)

	trades, err := b.AddOrder(gtc(2, domain.Buy, 150, 10))
	assertNoError(t, err)

	assertEqual(t, 1, len(trades), "trade count")
	assertEqual(t, domain.Price(150), trades[0].Bid.Price, "bid side keeps its own price")
	assertEqual(t, domain.Price(100), trades[0].Ask.Price, "ask side keeps its own price")
}

func TestBook_NoCrossNoTrade(t *testing.T) {
	b := newTestBook()

	assertNoError(t, addAll(b,
		gtc(1, domain.Buy, 1, 1),
		gtc(2, domain.Sell, 2, 1),
	))

	assertEqual(t, 2, b.Size(), "ask above bid must rest")
	checkIndexIntegrity(t, b)
}

func TestBook_PriceTimePriority(t *testing.T) {
	b := newTestBook()

	assertNoError(t, addAll(b,
		gtc(1, domain.Sell, 100, 5),
		gtc(2, domain.Sell, 100, 5),
	))

	trades, err := b.AddOrder(gtc(3, domain.Buy, 100, 5))
	assertNoError(t, err)

	assertEqual(t, 1, len(trades), "trade count")
	assertEqual(t, domain.OrderID(1), trades[0].Ask.OrderID, "earliest order at the price matches first")
	assertEqual(t, 1, b.Size(), "later order remains")
	checkIndexIntegrity(t, b)
}

func TestBook_PartialFillKeepsPosition(t *testing.T) {
	b := newTestBook()

	_, err := b.AddOrder(gtc(1, domain.Sell, 100, 10))
	assertNoError(t, err)

	trades, err := b.AddOrder(gtc(2, domain.Buy, 100, 4))
	assertNoError(t, err)
	assertEqual(t, 1, len(trades), "trade count")
	assertEqual(t, domain.Quantity(4), trades[0].Ask.Quantity, "first partial")

	// The partially filled order is still head of its level.
	trades, err = b.AddOrder(gtc(3, domain.Buy, 100, 6))
	assertNoError(t, err)
	assertEqual(t, 1, len(trades), "trade count")
	assertEqual(t, domain.OrderID(1), trades[0].Ask.OrderID, "same resting order")
	assertEqual(t, domain.Quantity(6), trades[0].Ask.Quantity, "remainder")
	assertEqual(t, 0, b.Size(), "fully consumed")
	checkIndexIntegrity(t, b)
}

func TestBook_SweepsMultipleLevels(t *testing.T) {
	b := newTestBook()

	assertNoError(t, addAll(b,
		gtc(1, domain.Sell, 100, 5),
		gtc(2, domain.Sell, 110, 5),
		gtc(3, domain.Sell, 120, 5),
	))

	trades, err := b.AddOrder(gtc(4, domain.Buy, 115, 12))
	assertNoError(t, err)

	assertEqual(t, 2, len(trades), "fills best-first until price bound")
	assertEqual(t, domain.OrderID(1), trades[0].Ask.OrderID, "best ask first")
	assertEqual(t, domain.OrderID(2), trades[1].Ask.OrderID, "next level second")
	// 2 remaining on the buy at 115, plus the untouched 120 ask.
	assertEqual(t, 2, b.Size(), "residual orders")
	checkIndexIntegrity(t, b)
}

// =============================================================================
// FILL-AND-KILL / FILL-OR-KILL
// =============================================================================

func TestBook_FillAndKillRejectedWhenNotCrossing(t *testing.T) {
	b := newTestBook()

	_, err := b.AddOrder(gtc(1, domain.Sell, 200, 10))
	assertNoError(t, err)

	fak := domain.NewOrder(domain.FillAndKill, 2, domain.Buy, 100, 10)
	trades, err := b.AddOrder(fak)
	if !errors.Is(err, ErrNotMatchable) {
		t.Fatalf("expected ErrNotMatchable, got %v", err)
	}
	assertEqual(t, 0, len(trades), "rejected FAK must not trade")
	assertEqual(t, 1, b.Size(), "rejected FAK must not rest")
}

func TestBook_FillAndKillFullFill(t *testing.T) {
	b := newTestBook()

	_, err := b.AddOrder(gtc(1, domain.Sell, 100, 10))
	assertNoError(t, err)

	trades, err := b.AddOrder(domain.NewOrder(domain.FillAndKill, 2, domain.Buy, 100, 10))
	assertNoError(t, err)
	assertEqual(t, 1, len(trades), "trade count")
	assertEqual(t, 0, b.Size(), "both sides consumed")
}

func TestBook_FillAndKillRemainderNeverRests(t *testing.T) {
	b := newTestBook()

	_, err := b.AddOrder(gtc(1, domain.Sell, 100, 5))
	assertNoError(t, err)

	trades, err := b.AddOrder(domain.NewOrder(domain.FillAndKill, 2, domain.Buy, 100, 10))
	assertNoError(t, err)
	assertEqual(t, 1, len(trades), "partial execution")
	assertEqual(t, domain.Quantity(5), trades[0].Bid.Quantity, "matched quantity")
	assertEqual(t, 0, b.Size(), "FAK remainder discarded")
	checkIndexIntegrity(t, b)
}

func TestBook_FillAndKillRemovedAfterFirstPartialFill(t *testing.T) {
	b := newTestBook()

	assertNoError(t, addAll(b,
		gtc(1, domain.Sell, 100, 5),
		gtc(2, domain.Sell, 110, 5),
	))

	// The FAK crosses both ask levels, but a partial fill kills it in the
	// same iteration: only the best level trades, the rest is discarded.
	trades, err := b.AddOrder(domain.NewOrder(domain.FillAndKill, 3, domain.Buy, 110, 12))
	assertNoError(t, err)
	assertEqual(t, 1, len(trades), "only the best level trades")
	assertEqual(t, domain.OrderID(1), trades[0].Ask.OrderID, "best ask consumed")
	assertEqual(t, domain.Quantity(5), trades[0].Bid.Quantity, "matched quantity")
	assertEqual(t, 1, b.Size(), "second ask untouched, remainder discarded")

	b.mu.Lock()
	_, secondAskRests := b.orders[2]
	b.mu.Unlock()
	assertTrue(t, secondAskRests, "110 ask still resting")
	checkIndexIntegrity(t, b)
}

func TestBook_FillOrKillAtomicity(t *testing.T) {
	b := newTestBook()

	_, err := b.AddOrder(gtc(1, domain.Sell, 100, 5))
	assertNoError(t, err)

	// Not enough resting quantity: rejected in full.
	trades, err := b.AddOrder(domain.NewOrder(domain.FillOrKill, 2, domain.Buy, 100, 10))
	if !errors.Is(err, ErrNotFullyFillable) {
		t.Fatalf("expected ErrNotFullyFillable, got %v", err)
	}
	assertEqual(t, 0, len(trades), "rejected FOK must not trade")
	assertEqual(t, 1, b.Size(), "book unchanged")

	_, err = b.AddOrder(gtc(3, domain.Sell, 100, 10))
	assertNoError(t, err)
	assertEqual(t, 2, b.Size(), "aggregate now 15@100")

	// Feasible now: fills the two sells in arrival order.
	trades, err = b.AddOrder(domain.NewOrder(domain.FillOrKill, 4, domain.Buy, 100, 10))
	assertNoError(t, err)
	assertEqual(t, 2, len(trades), "two lots")
	assertEqual(t, domain.OrderID(1), trades[0].Ask.OrderID, "first arrival first")
	assertEqual(t, domain.Quantity(5), trades[0].Ask.Quantity, "first lot")
	assertEqual(t, domain.OrderID(3), trades[1].Ask.OrderID, "second arrival second")
	assertEqual(t, domain.Quantity(5), trades[1].Ask.Quantity, "second lot")

	var total domain.Quantity
	for _, tr := range trades {
		total += tr.Bid.Quantity
	}
	assertEqual(t, domain.Quantity(10), total, "FOK fills exactly its quantity")
	assertEqual(t, 1, b.Size(), "one sell left with 5 remaining")
	checkIndexIntegrity(t, b)
}

func TestBook_FillOrKillStopsAtPriceBound(t *testing.T) {
	b := newTestBook()

	// 5 within bound at 100, another 10 out of reach at 120.
	assertNoError(t, addAll(b,
		gtc(1, domain.Sell, 100, 5),
		gtc(2, domain.Sell, 120, 10),
	))

	_, err := b.AddOrder(domain.NewOrder(domain.FillOrKill, 3, domain.Buy, 110, 10))
	if !errors.Is(err, ErrNotFullyFillable) {
		t.Fatalf("quantity beyond the price bound must not count, got %v", err)
	}
	assertEqual(t, 2, b.Size(), "book unchanged")
}

// =============================================================================
// CANCEL / MODIFY
// =============================================================================

func TestBook_CancelOrders(t *testing.T) {
	b := newTestBook()

	assertNoError(t, addAll(b,
		gtc(1, domain.Buy, 100, 10),
		gtc(2, domain.Buy, 100, 10),
		gtc(3, domain.Buy, 100, 10),
	))

	b.CancelOrder(1)
	b.CancelOrder(2)
	b.CancelOrder(3)

	assertEqual(t, 0, b.Size(), "all cancelled")
}

func TestBook_CancelUnknownOrderNoop(t *testing.T) {
	b := newTestBook()

	_, err := b.AddOrder(gtc(1, domain.Buy, 100, 10))
	assertNoError(t, err)

	b.CancelOrder(42)
	assertEqual(t, 1, b.Size(), "unknown id is a no-op")
}

func TestBook_CancelMiddleRepairsPositions(t *testing.T) {
	b := newTestBook()

	for id := domain.OrderID(1); id <= 5; id++ {
		_, err := b.AddOrder(gtc(id, domain.Buy, 100, 10))
		assertNoError(t, err)
	}

	// Swap-remove moves the tail order into the vacated slot; its cached
	// position must follow.
	b.CancelOrder(2)
	checkIndexIntegrity(t, b)

	b.CancelOrder(1)
	checkIndexIntegrity(t, b)

	b.CancelOrder(5)
	checkIndexIntegrity(t, b)

	assertEqual(t, 2, b.Size(), "two orders left")
}

func TestBook_CancelAfterPartialFill(t *testing.T) {
	b := newTestBook()

	_, err := b.AddOrder(gtc(1, domain.Sell, 100, 10))
	assertNoError(t, err)
	_, err = b.AddOrder(gtc(2, domain.Buy, 100, 4))
	assertNoError(t, err)

	checkIndexIntegrity(t, b)
	b.CancelOrder(1)

	assertEqual(t, 0, b.Size(), "cancelled after partial fill")
	checkIndexIntegrity(t, b)
}

func TestBook_ModifyCrossesBook(t *testing.T) {
	b := newTestBook()

	assertNoError(t, addAll(b,
		gtc(1, domain.Buy, 100, 10),
		gtc(2, domain.Buy, 100, 10),
	))

	// Flip order 2 to the sell side at the same price: it must match order 1.
	trades, err := b.ModifyOrder(domain.OrderModify{
		OrderID: 2, Side: domain.Sell, Price: 100, Quantity: 10,
	})
	assertNoError(t, err)
	assertEqual(t, 1, len(trades), "modify can generate trades")
	assertEqual(t, 0, b.Size(), "both consumed")
	checkIndexIntegrity(t, b)
}

func TestBook_ModifyUnknownOrderNoop(t *testing.T) {
	b := newTestBook()

	trades, err := b.ModifyOrder(domain.OrderModify{
		OrderID: 99, Side: domain.Buy, Price: 100, Quantity: 10,
	})
	assertNoError(t, err)
	assertEqual(t, 0, len(trades), "nothing to modify")
	assertEqual(t, 0, b.Size(), "book unchanged")
}

func TestBook_ModifyKeepsOriginalType(t *testing.T) {
	b := newTestBook()

	_, err := b.AddOrder(domain.NewOrder(domain.FillOrKill, 1, domain.Buy, 100, 10))
	if !errors.Is(err, ErrNotFullyFillable) {
		t.Fatalf("FOK against empty book must be rejected, got %v", err)
	}

	_, err = b.AddOrder(domain.NewOrder(domain.GoodForDay, 2, domain.Buy, 100, 10))
	assertNoError(t, err)

	// The replacement re-enters through admission with type GoodForDay.
	_, err = b.ModifyOrder(domain.OrderModify{
		OrderID: 2, Side: domain.Buy, Price: 90, Quantity: 5,
	})
	assertNoError(t, err)
	assertEqual(t, 1, b.Size(), "replacement rests")

	b.mu.Lock()
	entry := b.orders[2]
	b.mu.Unlock()
	assertEqual(t, domain.GoodForDay, entry.order.Type, "type preserved across modify")
	assertEqual(t, domain.Price(90), entry.order.Price(), "new price")
}

// =============================================================================
// DEPTH
// =============================================================================

func TestBook_Depth(t *testing.T) {
	b := newTestBook()

	assertNoError(t, addAll(b,
		gtc(1, domain.Buy, 100, 10),
		gtc(2, domain.Buy, 150, 3),
		gtc(3, domain.Buy, 150, 4),
		gtc(4, domain.Sell, 200, 10),
		gtc(5, domain.Sell, 300, 2),
	))

	snap := b.Depth()

	assertEqual(t, 2, len(snap.Bids), "bid levels")
	assertEqual(t, 2, len(snap.Asks), "ask levels")
	assertEqual(t, domain.Price(150), snap.Bids[0].Price, "best bid first")
	assertEqual(t, domain.Quantity(7), snap.Bids[0].Quantity, "bid level aggregates remaining")
	assertEqual(t, domain.Price(100), snap.Bids[1].Price, "bids descend")
	assertEqual(t, domain.Price(200), snap.Asks[0].Price, "best ask first")
	assertEqual(t, domain.Price(300), snap.Asks[1].Price, "asks ascend")
	assertEqual(t, "TEST", snap.Instrument, "instrument")
}

func TestBook_DepthReflectsPartialFills(t *testing.T) {
	b := newTestBook()

	_, err := b.AddOrder(gtc(1, domain.Sell, 100, 10))
	assertNoError(t, err)
	_, err = b.AddOrder(gtc(2, domain.Buy, 100, 4))
	assertNoError(t, err)

	snap := b.Depth()
	assertEqual(t, 1, len(snap.Asks), "one ask level")
	assertEqual(t, domain.Quantity(6), snap.Asks[0].Quantity, "remaining, not initial")
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestBook_ConcurrentSubmitters(t *testing.T) {
	b := newTestBook()

	const perSide = 50
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < perSide; i++ {
			_, err := b.AddOrder(gtc(domain.OrderID(i+1), domain.Buy, 100, 1))
			if err != nil {
				t.Errorf("buy %d: %v", i, err)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < perSide; i++ {
			_, err := b.AddOrder(gtc(domain.OrderID(1000+i), domain.Sell, 200, 1))
			if err != nil {
				t.Errorf("sell %d: %v", i, err)
			}
		}
	}()
	wg.Wait()

	assertEqual(t, 2*perSide, b.Size(), "non-crossing orders all rest")
	checkIndexIntegrity(t, b)
}

// =============================================================================
// GOOD-FOR-DAY SWEEP
// =============================================================================

func TestBook_SweepCancelsGoodForDay(t *testing.T) {
	b := newBook(BookConfig{Instrument: "TEST", CutoffHour: 16, TestMode: true})

	// Freeze the clock just before the cutoff so the single sweep cycle
	// fires after ~100ms of real time.
	frozen := time.Date(2025, 6, 2, 15, 59, 59, int(950*time.Millisecond), time.Local)
	b.now = func() time.Time { return frozen }

	assertNoError(t, addAll(b,
		domain.NewOrder(domain.GoodForDay, 1, domain.Buy, 100, 10),
		domain.NewOrder(domain.GoodForDay, 2, domain.Sell, 200, 10),
		gtc(3, domain.Sell, 1000, 10),
	))
	assertEqual(t, 3, b.Size(), "all resting before the cutoff")

	b.start()
	b.wg.Wait()

	assertEqual(t, 1, b.Size(), "both GFD orders pruned")
	b.mu.Lock()
	_, gtcLeft := b.orders[3]
	b.mu.Unlock()
	assertTrue(t, gtcLeft, "GoodTillCancel order survives the sweep")
	checkIndexIntegrity(t, b)
}

func TestBook_SweepSkipsBeforeCutoff(t *testing.T) {
	b := newBook(BookConfig{Instrument: "TEST", CutoffHour: 16, TestMode: true})

	// Far from the cutoff: Close must interrupt the wait immediately.
	frozen := time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)
	b.now = func() time.Time { return frozen }

	_, err := b.AddOrder(domain.NewOrder(domain.GoodForDay, 1, domain.Buy, 100, 10))
	assertNoError(t, err)

	b.start()
	b.Close()

	assertEqual(t, 1, b.Size(), "no prune before the cutoff")
}

func TestBook_CloseJoinsSweep(t *testing.T) {
	b := NewBook(BookConfig{Instrument: "TEST"})

	done := make(chan struct{})
	go func() {
		b.Close()
		b.Close() // idempotent
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not join the sweep goroutine")
	}
}
