package detector

import (
	"testing"

	"github.com/polyinsider/whalewatch/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	// Test Case 1: Whale (2000 × 0.6 = 1200)
	whale := store.RawTrade{
		ProxyWallet:     "0xWhale",
		Side:            store.SideBuy,
		Size:            2000,
		Price:           0.6,
		ConditionID:     "0xmarket",
		Title:           "Will it rain?",
		Outcome:         "Yes",
		Timestamp:       1760000000,
		TransactionHash: "0xtx",
	}
	alert, ok := Classify(whale, 1000)
	require.True(t, ok)
	assert.Equal(t, whale.Size*whale.Price, alert.Value)
	assert.Equal(t, "0xtx", alert.ID)
	assert.Equal(t, "0xWhale", alert.Address)
	assert.Equal(t, store.SideBuy, alert.Side)
	assert.Equal(t, "Will it rain?", alert.MarketTitle)
	assert.Equal(t, "Yes", alert.Outcome)
	assert.Equal(t, int64(1760000000), alert.Timestamp.Unix())

	// Test Case 2: Below threshold (100 × 5 = 500)
	small := store.RawTrade{ProxyWallet: "0xSmall", Size: 100, Price: 5}
	_, ok = Classify(small, 1000)
	assert.False(t, ok)

	// Test Case 3: Exactly at threshold is included
	exact := store.RawTrade{ProxyWallet: "0xExact", Size: 2000, Price: 0.5}
	alert, ok = Classify(exact, 1000)
	require.True(t, ok)
	assert.Equal(t, 1000.0, alert.Value)

	// Test Case 4: Zero or negative values never pass a positive threshold
	_, ok = Classify(store.RawTrade{Size: 0, Price: 0}, 1000)
	assert.False(t, ok)
	_, ok = Classify(store.RawTrade{Size: -5000, Price: 0.9}, 1000)
	assert.False(t, ok)
}

func TestClassifyValueIsExactProduct(t *testing.T) {
	cases := []struct{ size, price float64 }{
		{1234.56, 0.987},
		{99999, 0.01},
		{3333.33, 0.3},
		{1e6, 0.999},
	}
	for _, c := range cases {
		alert, ok := Classify(store.RawTrade{Size: c.size, Price: c.price}, 1)
		require.True(t, ok)
		assert.Equal(t, c.size*c.price, alert.Value)
	}
}

func TestAlertIDFallback(t *testing.T) {
	trade := store.RawTrade{
		ProxyWallet: "0xabc",
		Timestamp:   1760000000,
		ConditionID: "0xmkt",
		Size:        2500.5,
	}
	assert.Equal(t, "0xabc-1760000000-0xmkt-2500.5", AlertID(trade))

	// Same four fields collide; that is the accepted limitation
	other := trade
	other.Price = 0.1
	other.Side = store.SideSell
	assert.Equal(t, AlertID(trade), AlertID(other))

	// A different size does not
	other.Size = 2500
	assert.NotEqual(t, AlertID(trade), AlertID(other))
}

func TestDisplayNameFallsBackToPseudonym(t *testing.T) {
	base := store.RawTrade{ProxyWallet: "0x1", Size: 5000, Price: 1}

	named := base
	named.Name = "bigfish"
	named.Pseudonym = "Spotted-Orca"
	alert, _ := Classify(named, 1)
	assert.Equal(t, "bigfish", alert.DisplayName)

	pseudo := base
	pseudo.Pseudonym = "Spotted-Orca"
	alert, _ = Classify(pseudo, 1)
	assert.Equal(t, "Spotted-Orca", alert.DisplayName)

	alert, _ = Classify(base, 1)
	assert.Empty(t, alert.DisplayName)
	assert.Equal(t, "0x1", alert.Trader())
}

func TestClassifierUsesThreshold(t *testing.T) {
	c := NewClassifier(1000)
	assert.Equal(t, 1000.0, c.MinValue())

	_, ok := c.Classify(store.RawTrade{Size: 2000, Price: 0.6})
	assert.True(t, ok)
	_, ok = c.Classify(store.RawTrade{Size: 100, Price: 5})
	assert.False(t, ok)
}
