// Package ingest provides trade data fetching from the Polymarket APIs.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/polyinsider/whalewatch/internal/store"
	"github.com/rs/zerolog"
)

const (
	// DataAPIBaseURL is the Polymarket data API endpoint serving trade history
	DataAPIBaseURL = "https://data-api.polymarket.com"
	// DefaultFetchTimeout bounds a single page request
	DefaultFetchTimeout = 10 * time.Second
)

// TradeAPIResponse represents one record from the data API /trades endpoint.
type TradeAPIResponse struct {
	ProxyWallet     string  `json:"proxyWallet" validate:"required"`
	Side            string  `json:"side" validate:"oneof=BUY SELL"`
	Asset           string  `json:"asset"`
	ConditionID     string  `json:"conditionId" validate:"required"`
	Size            float64 `json:"size" validate:"gte=0"`
	Price           float64 `json:"price"`
	Timestamp       int64   `json:"timestamp" validate:"gt=0"`
	Title           string  `json:"title"`
	Slug            string  `json:"slug"`
	Outcome         string  `json:"outcome"`
	Name            string  `json:"name"`
	Pseudonym       string  `json:"pseudonym"`
	TransactionHash string  `json:"transactionHash"`
}

// TradesClient fetches pages of the reverse-chronological trade feed.
type TradesClient struct {
	baseURL  string
	client   *http.Client
	validate *validator.Validate
	log      zerolog.Logger
}

// NewTradesClient creates a new TradesClient.
func NewTradesClient(baseURL string, timeout time.Duration, log zerolog.Logger) *TradesClient {
	if baseURL == "" {
		baseURL = DataAPIBaseURL
	}
	if timeout == 0 {
		timeout = DefaultFetchTimeout
	}

	return &TradesClient{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		validate: validator.New(),
		log:      log.With().Str("component", "trades_client").Logger(),
	}
}

// Fetch retrieves up to limit trades starting at offset into the feed.
// Any transport, status, decode or schema failure is returned; nothing is retried.
func (c *TradesClient) Fetch(ctx context.Context, limit, offset int) ([]store.RawTrade, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	if offset < 0 {
		return nil, fmt.Errorf("offset must not be negative, got %d", offset)
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	endpoint := c.baseURL + "/trades?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var apiTrades []TradeAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiTrades); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	trades := make([]store.RawTrade, 0, len(apiTrades))
	for i, apiTrade := range apiTrades {
		if err := c.validate.Struct(apiTrade); err != nil {
			return nil, fmt.Errorf("trade %d failed schema check: %w", i, err)
		}
		trades = append(trades, convertTrade(apiTrade))
	}

	c.log.Debug().
		Int("limit", limit).
		Int("offset", offset).
		Int("count", len(trades)).
		Dur("took", time.Since(start)).
		Msg("trades_fetched")

	return trades, nil
}

// convertTrade converts a TradeAPIResponse to store.RawTrade.
func convertTrade(apiTrade TradeAPIResponse) store.RawTrade {
	return store.RawTrade{
		ProxyWallet:     apiTrade.ProxyWallet,
		Side:            apiTrade.Side,
		Size:            apiTrade.Size,
		Price:           apiTrade.Price,
		ConditionID:     apiTrade.ConditionID,
		Title:           apiTrade.Title,
		Outcome:         apiTrade.Outcome,
		Timestamp:       apiTrade.Timestamp,
		Name:            apiTrade.Name,
		Pseudonym:       apiTrade.Pseudonym,
		TransactionHash: apiTrade.TransactionHash,
	}
}
