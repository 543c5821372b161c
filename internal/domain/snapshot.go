package domain

import "time"

// LevelInfo is one price level as seen from outside: the price and the sum of
// remaining quantity across every order resting there.
type LevelInfo struct {
	Price    Price    `json:"price"`
	Quantity Quantity `json:"quantity"`
}

// DepthSnapshot is a derived view of the book. Bids are ordered best (highest)
// first, asks best (lowest) first.
type DepthSnapshot struct {
	Instrument string      `json:"instrument"`
	Bids       []LevelInfo `json:"bids"`
	Asks       []LevelInfo `json:"asks"`
	Timestamp  time.Time   `json:"timestamp"`
}
