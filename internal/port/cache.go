package port

import (
	"context"

	"github.com/nvoronina/matching-engine/internal/domain"
)

// Cache holds the latest depth snapshot per instrument.
type Cache interface {
	SetDepth(ctx context.Context, snap *domain.DepthSnapshot) error
	GetDepth(ctx context.Context, instrument string) (*domain.DepthSnapshot, error)
	Invalidate(ctx context.Context, instrument string) error
}
