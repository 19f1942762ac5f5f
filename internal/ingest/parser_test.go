package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessageLastTradePrice(t *testing.T) {
	msg := []byte(`{"event_type":"last_trade_price","asset_id":"tok-1","price":"0.55","size":"4000","side":"BUY"}`)

	activities, err := ParseMessage(msg)
	require.NoError(t, err)
	require.Len(t, activities, 1)

	a := activities[0]
	assert.Equal(t, "tok-1", a.AssetID)
	assert.Equal(t, "BUY", a.Side)
	assert.InDelta(t, 2200.0, a.Notional(), 1e-9)
}

func TestParseMessageArraySkipsBookEvents(t *testing.T) {
	msg := []byte(`[
		{"event_type":"book","asset_id":"tok-1","bids":[],"asks":[]},
		{"event_type":"price_change","asset_id":"tok-1","price":"0.5"},
		{"type":"trade","asset_id":"tok-2","price":"0.9","size":"10"}
	]`)

	activities, err := ParseMessage(msg)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "tok-2", activities[0].AssetID)
}

func TestParseMessageIgnoresMissingAsset(t *testing.T) {
	activities, err := ParseMessage([]byte(`{"event_type":"last_trade_price","price":"0.5","size":"10"}`))
	require.NoError(t, err)
	assert.Empty(t, activities)
}

func TestParseMessageInvalid(t *testing.T) {
	_, err := ParseMessage([]byte(`PONG`))
	assert.Error(t, err)
}
