package stream

import (
	"context"
	"errors"

	"github.com/nvoronina/matching-engine/internal/domain"
	"github.com/nvoronina/matching-engine/internal/port"
)

var _ port.Stream = (Fanout)(nil)

// Fanout publishes to every underlying stream. Each sink is attempted even
// when an earlier one fails.
type Fanout []port.Stream

func (f Fanout) PublishTrade(ctx context.Context, rec *domain.TradeRecord) error {
	var errs []error
	for _, s := range f {
		if err := s.PublishTrade(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, s := range f {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
