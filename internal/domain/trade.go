package domain

import "time"

// TradeInfo is one side's view of an execution: the order it filled, that
// order's own price and the matched quantity.
type TradeInfo struct {
	OrderID  OrderID  `json:"order_id"`
	Price    Price    `json:"price"`
	Quantity Quantity `json:"quantity"`
}

// Trade pairs the bid and ask views of a single matched lot. Trades are pure
// output; they are never mutated after creation.
type Trade struct {
	Bid TradeInfo `json:"bid"`
	Ask TradeInfo `json:"ask"`
}

type Trades []Trade

// TradeRecord is the journaled/published form of a Trade, stamped with an
// identifier and execution time by the engine.
type TradeRecord struct {
	ID         string    `json:"id"`
	Instrument string    `json:"instrument"`
	BuyOrder   OrderID   `json:"buy_order"`
	SellOrder  OrderID   `json:"sell_order"`
	BidPrice   Price     `json:"bid_price"`
	AskPrice   Price     `json:"ask_price"`
	Quantity   Quantity  `json:"quantity"`
	ExecutedAt time.Time `json:"executed_at"`
}
