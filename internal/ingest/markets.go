package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	// GammaAPIURL is the Polymarket Gamma API endpoint for market data
	GammaAPIURL = "https://gamma-api.polymarket.com/markets"
	// DefaultMarketLimit is the number of markets to fetch
	DefaultMarketLimit = 50
)

// Market represents a Polymarket market from the Gamma API.
type Market struct {
	ID           string  `json:"id"`
	Question     string  `json:"question"`
	Slug         string  `json:"slug"`
	Active       bool    `json:"active"`
	Closed       bool    `json:"closed"`
	ClobTokenIDs string  `json:"clobTokenIds"` // JSON array as string
	VolumeNum    float64 `json:"volumeNum"`
}

// FetchActiveMarkets fetches open markets, highest volume first.
func FetchActiveMarkets(ctx context.Context, baseURL string, limit int) ([]Market, error) {
	if baseURL == "" {
		baseURL = GammaAPIURL
	}
	if limit <= 0 {
		limit = DefaultMarketLimit
	}

	url := fmt.Sprintf("%s?active=true&closed=false&order=volumeNum&ascending=false&limit=%d", baseURL, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch markets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var markets []Market
	if err := json.NewDecoder(resp.Body).Decode(&markets); err != nil {
		return nil, fmt.Errorf("failed to decode markets: %w", err)
	}

	return markets, nil
}

// ExtractTokenIDs extracts all unique outcome token IDs from a list of markets.
func ExtractTokenIDs(markets []Market, log zerolog.Logger) []string {
	var tokenIDs []string
	seen := make(map[string]bool)

	for _, market := range markets {
		if market.ClobTokenIDs == "" {
			continue
		}

		var ids []string
		if err := json.Unmarshal([]byte(market.ClobTokenIDs), &ids); err != nil {
			log.Debug().Err(err).Str("market", market.Slug).Msg("token_ids_unparseable")
			continue
		}

		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				tokenIDs = append(tokenIDs, id)
			}
		}
	}

	return tokenIDs
}
