// Package detector decides which upstream trades are whale trades.
package detector

import (
	"fmt"
	"strconv"

	"github.com/polyinsider/whalewatch/internal/store"
)

// Classify converts a raw trade into an Alert when its notional value
// (size × price) is at least minValue. The second return is false when the
// trade is below the threshold.
func Classify(trade store.RawTrade, minValue float64) (store.Alert, bool) {
	value := trade.Size * trade.Price
	if value < minValue {
		return store.Alert{}, false
	}

	return store.Alert{
		ID:              AlertID(trade),
		Address:         trade.ProxyWallet,
		DisplayName:     coalesce(trade.Name, trade.Pseudonym),
		Side:            trade.Side,
		Size:            trade.Size,
		Price:           trade.Price,
		Value:           value,
		MarketTitle:     trade.Title,
		Outcome:         trade.Outcome,
		Timestamp:       trade.Time(),
		TransactionHash: trade.TransactionHash,
	}, true
}

// AlertID returns the dedup key for a trade: the transaction hash when the
// upstream provides one, otherwise wallet-timestamp-market-size.
//
// The fallback is a heuristic. Two distinct fills sharing all four fields
// collapse into one alert.
func AlertID(trade store.RawTrade) string {
	if trade.TransactionHash != "" {
		return trade.TransactionHash
	}
	return fmt.Sprintf("%s-%d-%s-%s",
		trade.ProxyWallet,
		trade.Timestamp,
		trade.ConditionID,
		strconv.FormatFloat(trade.Size, 'f', -1, 64),
	)
}

// Classifier applies a fixed threshold.
type Classifier struct {
	minValue float64
}

// NewClassifier creates a Classifier for the given minimum notional value.
func NewClassifier(minValue float64) *Classifier {
	return &Classifier{minValue: minValue}
}

// MinValue returns the configured threshold.
func (c *Classifier) MinValue() float64 {
	return c.minValue
}

// Classify runs Classify with the configured threshold.
func (c *Classifier) Classify(trade store.RawTrade) (store.Alert, bool) {
	return Classify(trade, c.minValue)
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
