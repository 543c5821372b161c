package core

import "errors"

// Admission rejections. An order that trips one of these is never inserted
// and produces no trades.
var (
	ErrDuplicateOrder   = errors.New("order id already present in book")
	ErrNoLiquidity      = errors.New("market order with empty opposite side")
	ErrNotMatchable     = errors.New("fill-and-kill order cannot cross")
	ErrNotFullyFillable = errors.New("fill-or-kill order cannot be fully filled")
)

// IsRejection reports whether err is an admission rejection rather than an
// internal failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrDuplicateOrder) ||
		errors.Is(err, ErrNoLiquidity) ||
		errors.Is(err, ErrNotMatchable) ||
		errors.Is(err, ErrNotFullyFillable)
}
