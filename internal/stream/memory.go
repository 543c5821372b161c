package stream

import (
	"context"
	"sync"

	"github.com/nvoronina/matching-engine/internal/domain"
	"github.com/nvoronina/matching-engine/internal/port"
)

var _ port.Stream = (*Memory)(nil)

// Memory buffers published trades in-process; used by tests and as a stand-in
// when no broker is configured.
type Memory struct {
	mu   sync.Mutex
	recs []*domain.TradeRecord
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) PublishTrade(ctx context.Context, rec *domain.TradeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *Memory) Records() []*domain.TradeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.TradeRecord, len(m.recs))
	copy(out, m.recs)
	return out
}

func (m *Memory) Close() error { return nil }
