package domain

import (
	"errors"
	"fmt"
	"math"
)

type Side string
type OrderType string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

const (
	GoodTillCancel OrderType = "GOOD_TILL_CANCEL"
	GoodForDay     OrderType = "GOOD_FOR_DAY"
	FillAndKill    OrderType = "FILL_AND_KILL"
	FillOrKill     OrderType = "FILL_OR_KILL"
	Market         OrderType = "MARKET"
)

type (
	OrderID  = uint64
	Price    = int64
	Quantity = uint64
)

// MarketPrice is the placeholder price carried by a Market order until the
// book fixes it at admission time.
const MarketPrice Price = math.MinInt64

var (
	ErrOverfill  = errors.New("fill exceeds remaining quantity")
	ErrNotMarket = errors.New("only market orders can have their price adjusted")
)

// Order is a single resting or incoming order. Quantities are kept private so
// that initial == remaining + filled can only change through Fill. After
// submission an order belongs to the book; callers must not retain it.
type Order struct {
	ID   OrderID
	Side Side
	Type OrderType

	price     Price
	initial   Quantity
	remaining Quantity
	filled    Quantity
}

func NewOrder(typ OrderType, id OrderID, side Side, price Price, quantity Quantity) *Order {
	return &Order{
		ID:        id,
		Side:      side,
		Type:      typ,
		price:     price,
		initial:   quantity,
		remaining: quantity,
	}
}

// NewMarketOrder builds a Market order with no price; the book converts it to
// GoodTillCancel at the worst opposing price when it is admitted.
func NewMarketOrder(id OrderID, side Side, quantity Quantity) *Order {
	return NewOrder(Market, id, side, MarketPrice, quantity)
}

func (o *Order) Price() Price                { return o.price }
func (o *Order) InitialQuantity() Quantity   { return o.initial }
func (o *Order) RemainingQuantity() Quantity { return o.remaining }
func (o *Order) FilledQuantity() Quantity    { return o.filled }
func (o *Order) IsFilled() bool              { return o.remaining == 0 }

// Fill consumes quantity from the order. Filling past the remaining quantity
// is a bookkeeping bug, not a rejection, so it surfaces as an error.
func (o *Order) Fill(quantity Quantity) error {
	if quantity > o.remaining {
		return fmt.Errorf("order %d: %w", o.ID, ErrOverfill)
	}
	o.remaining -= quantity
	o.filled += quantity
	return nil
}

// ToGoodTillCancel fixes the price of a Market order and converts it to
// GoodTillCancel. Called exactly once, at admission.
func (o *Order) ToGoodTillCancel(price Price) error {
	if o.Type != Market {
		return fmt.Errorf("order %d: %w", o.ID, ErrNotMarket)
	}
	o.price = price
	o.Type = GoodTillCancel
	return nil
}

func (o *Order) String() string {
	return fmt.Sprintf("[%d %s %s %d@%d filled:%d]",
		o.ID, o.Side, o.Type, o.remaining, o.price, o.filled)
}

// OrderModify describes a cancel-and-replace: the replacement keeps the
// original order's type but takes the new side, price and quantity.
type OrderModify struct {
	OrderID  OrderID
	Side     Side
	Price    Price
	Quantity Quantity
}

func (m OrderModify) ToOrder(typ OrderType) *Order {
	return NewOrder(typ, m.OrderID, m.Side, m.Price, m.Quantity)
}
