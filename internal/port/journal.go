package port

import (
	"context"

	"github.com/nvoronina/matching-engine/internal/domain"
)

// Journal persists executed trades. Trades are pure engine output; the book
// itself is never persisted.
type Journal interface {
	SaveTrade(ctx context.Context, rec *domain.TradeRecord) error
	TradesForOrder(ctx context.Context, id domain.OrderID) ([]*domain.TradeRecord, error)
}
