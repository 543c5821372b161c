package http

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/nvoronina/matching-engine/internal/api/dto"
	"github.com/nvoronina/matching-engine/internal/domain"
)

var (
	errInvalidSide = errors.New("side must be BUY or SELL")
	errInvalidType = errors.New("unknown order type")
	errZeroQty     = errors.New("quantity must be greater than 0")
)

func validSide(s dto.Side) bool {
	return s == dto.Buy || s == dto.Sell
}

func validType(t dto.OrderType) bool {
	switch t {
	case dto.GoodTillCancel, dto.GoodForDay, dto.FillAndKill, dto.FillOrKill, dto.Market:
		return true
	}
	return false
}

// orderFromRequest validates the request and builds the domain order. Market
// orders ignore any price in the request; the book fixes it at admission.
func orderFromRequest(req *dto.SubmitOrderRequest) (*domain.Order, error) {
	if !validSide(req.Side) {
		return nil, errInvalidSide
	}
	if !validType(req.Type) {
		return nil, errInvalidType
	}
	if req.Quantity == 0 {
		return nil, errZeroQty
	}

	if req.Type == dto.Market {
		return domain.NewMarketOrder(req.OrderID, domain.Side(req.Side), req.Quantity), nil
	}
	return domain.NewOrder(domain.OrderType(req.Type), req.OrderID, domain.Side(req.Side), req.Price, req.Quantity), nil
}

func validateModify(req *dto.ModifyOrderRequest) error {
	if !validSide(req.Side) {
		return errInvalidSide
	}
	if req.Quantity == 0 {
		return errZeroQty
	}
	return nil
}

func parseOrderID(s string) (domain.OrderID, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid order id %q", s)
	}
	return id, nil
}
