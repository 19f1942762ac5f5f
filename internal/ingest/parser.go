package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Activity is a trade execution observed on the CLOB market channel.
// It carries no identity and is only used to decide whether to refresh early.
type Activity struct {
	AssetID string
	Side    string
	Size    float64
	Price   float64
}

// Notional returns size × price.
func (a Activity) Notional() float64 {
	return a.Size * a.Price
}

// marketEvent covers the market channel events that report executions.
type marketEvent struct {
	EventType string `json:"event_type"`
	Type      string `json:"type"`
	AssetID   string `json:"asset_id"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	Side      string `json:"side"`
}

func (e marketEvent) kind() string {
	if e.EventType != "" {
		return e.EventType
	}
	return e.Type
}

// ParseMessage parses a raw market channel frame and returns any executions in it.
// Frames are either a single event object or an array of events; book snapshots,
// price changes and other event types are skipped.
func ParseMessage(data []byte) ([]Activity, error) {
	var events []marketEvent
	if err := json.Unmarshal(data, &events); err != nil {
		var single marketEvent
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		events = []marketEvent{single}
	}

	var out []Activity
	for _, ev := range events {
		switch ev.kind() {
		case "last_trade_price", "trade":
		default:
			continue
		}
		if ev.AssetID == "" {
			continue
		}
		out = append(out, Activity{
			AssetID: ev.AssetID,
			Side:    ev.Side,
			Size:    parseFloat(ev.Size),
			Price:   parseFloat(ev.Price),
		})
	}
	return out, nil
}

// parseFloat safely parses a string to float64.
func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
