// Package store provides the trade data models and the in-memory alert accumulator.
package store

import "time"

// Trade sides as reported by the Polymarket data API.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// RawTrade is a single trade as returned by the upstream trade-history feed.
// It is only held for the duration of a fetch cycle.
type RawTrade struct {
	// ProxyWallet is the trader's wallet address
	ProxyWallet string

	// Side is BUY or SELL
	Side string

	// Size is the number of outcome shares traded
	Size float64

	// Price is the execution price (0-1 range for prediction markets)
	Price float64

	// ConditionID is the market identifier
	ConditionID string

	// Title is the human-readable market question
	Title string

	// Outcome is the outcome label (e.g. Yes, No)
	Outcome string

	// Timestamp is the upstream event time, in seconds or milliseconds since epoch
	Timestamp int64

	// Name is the trader's display name (may be empty)
	Name string

	// Pseudonym is the trader's generated pseudonym (may be empty)
	Pseudonym string

	// TransactionHash is the on-chain transaction hash (may be empty)
	TransactionHash string
}

// Alert is a trade whose notional value met the configured threshold.
type Alert struct {
	ID              string
	Address         string
	DisplayName     string
	Side            string
	Size            float64
	Price           float64
	Value           float64
	MarketTitle     string
	Outcome         string
	Timestamp       time.Time
	TransactionHash string
}

// Trader returns the display name if known, otherwise the wallet address.
func (a Alert) Trader() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Address
}

// Time converts the upstream timestamp to a time.Time.
// Values above 1e12 are milliseconds, anything smaller is seconds.
func (t RawTrade) Time() time.Time {
	if t.Timestamp > 1e12 {
		return time.UnixMilli(t.Timestamp)
	}
	return time.Unix(t.Timestamp, 0)
}
