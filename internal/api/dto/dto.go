package dto

import "time"

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

type OrderType string

const (
	GoodTillCancel OrderType = "GOOD_TILL_CANCEL"
	GoodForDay     OrderType = "GOOD_FOR_DAY"
	FillAndKill    OrderType = "FILL_AND_KILL"
	FillOrKill     OrderType = "FILL_OR_KILL"
	Market         OrderType = "MARKET"
)

// Status distinguishes a rejected order from one that was accepted but has
// not crossed anything yet.
type Status string

const (
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
)

type SubmitOrderRequest struct {
	OrderID  uint64    `json:"order_id" binding:"required"`
	Side     Side      `json:"side" binding:"required"`
	Type     OrderType `json:"type" binding:"required"`
	Price    int64     `json:"price"` // ignored for MARKET
	Quantity uint64    `json:"quantity" binding:"required"`
}

type SubmitOrderResponse struct {
	OrderID uint64  `json:"order_id"`
	Status  Status  `json:"status"`
	Reason  string  `json:"reason,omitempty"`
	Trades  []Trade `json:"trades"`
}

type ModifyOrderRequest struct {
	OrderID  uint64 `json:"order_id" binding:"required"`
	Side     Side   `json:"side" binding:"required"`
	Price    int64  `json:"price"`
	Quantity uint64 `json:"quantity" binding:"required"`
}

type ModifyOrderResponse struct {
	OrderID uint64  `json:"order_id"`
	Status  Status  `json:"status"`
	Reason  string  `json:"reason,omitempty"`
	Trades  []Trade `json:"trades"`
}

type CancelOrderRequest struct {
	OrderID uint64 `json:"order_id" binding:"required"`
}

type CancelOrderResponse struct {
	OrderID   uint64 `json:"order_id"`
	Cancelled bool   `json:"cancelled"`
}

type TradeInfo struct {
	OrderID  uint64 `json:"order_id"`
	Price    int64  `json:"price"`
	Quantity uint64 `json:"quantity"`
}

type Trade struct {
	Bid TradeInfo `json:"bid"`
	Ask TradeInfo `json:"ask"`
}

type Level struct {
	Price    int64  `json:"price"`
	Quantity uint64 `json:"quantity"`
}

type OrderbookResponse struct {
	Instrument string    `json:"instrument"`
	Bids       []Level   `json:"bids"`
	Asks       []Level   `json:"asks"`
	Size       int       `json:"size"`
	Timestamp  time.Time `json:"timestamp"`
}

type TradeRecord struct {
	ID         string    `json:"id"`
	Instrument string    `json:"instrument"`
	BuyOrder   uint64    `json:"buy_order"`
	SellOrder  uint64    `json:"sell_order"`
	BidPrice   int64     `json:"bid_price"`
	AskPrice   int64     `json:"ask_price"`
	Quantity   uint64    `json:"quantity"`
	ExecutedAt time.Time `json:"executed_at"`
}

type TradesResponse struct {
	Trades []TradeRecord `json:"trades"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
