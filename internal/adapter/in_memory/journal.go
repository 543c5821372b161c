package in_memory

import (
	"context"
	"sync"

	"github.com/nvoronina/matching-engine/internal/domain"
	"github.com/nvoronina/matching-engine/internal/port"
)

var _ port.Journal = (*Journal)(nil)

// Journal is the in-process trade journal used by tests and by deployments
// without a database configured.
type Journal struct {
	mu      sync.Mutex
	trades  []*domain.TradeRecord
	byOrder map[domain.OrderID][]*domain.TradeRecord
}

func NewJournal() *Journal {
	return &Journal{
		byOrder: make(map[domain.OrderID][]*domain.TradeRecord),
	}
}

func (j *Journal) SaveTrade(ctx context.Context, rec *domain.TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.trades = append(j.trades, rec)
	j.byOrder[rec.BuyOrder] = append(j.byOrder[rec.BuyOrder], rec)
	j.byOrder[rec.SellOrder] = append(j.byOrder[rec.SellOrder], rec)
	return nil
}

func (j *Journal) TradesForOrder(ctx context.Context, id domain.OrderID) ([]*domain.TradeRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	recs := j.byOrder[id]
	out := make([]*domain.TradeRecord, len(recs))
	copy(out, recs)
	return out, nil
}

// Len returns the total number of journaled trades.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.trades)
}
