package port

import (
	"context"

	"github.com/nvoronina/matching-engine/internal/domain"
)

// Stream publishes executed trades to downstream consumers (Kafka topic,
// websocket subscribers). Publishing is best-effort: a failed publish never
// touches book state.
type Stream interface {
	PublishTrade(ctx context.Context, rec *domain.TradeRecord) error
	Close() error
}
