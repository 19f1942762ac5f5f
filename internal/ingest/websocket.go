package ingest

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Reconnection and heartbeat settings for the market channel.
const (
	InitialBackoff = 1 * time.Second
	MaxBackoff     = 60 * time.Second
	BackoffFactor  = 2.0
	JitterPercent  = 0.2

	HeartbeatTimeout = 60 * time.Second
	PongTimeout      = 10 * time.Second
	WriteTimeout     = 10 * time.Second
)

// Nudger watches the CLOB market channel and calls onWhale when an execution
// with notional at or above minNotional is seen. Calls are throttled to one
// per gap so a burst of large fills produces a single early refresh.
type Nudger struct {
	url         string
	minNotional float64
	gap         time.Duration
	onWhale     func()
	onStatus    func(string)
	log         zerolog.Logger

	conn     *websocket.Conn
	connMu   sync.Mutex
	backoff  time.Duration
	assetIDs []string

	lastMsg   time.Time
	lastMsgMu sync.RWMutex

	lastNudge time.Time
	nudgeMu   sync.Mutex

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewNudger creates a market channel watcher.
func NewNudger(url string, assetIDs []string, minNotional float64, gap time.Duration, onWhale func(), log zerolog.Logger) *Nudger {
	return &Nudger{
		url:         url,
		minNotional: minNotional,
		gap:         gap,
		onWhale:     onWhale,
		log:         log.With().Str("component", "stream_nudge").Logger(),
		backoff:     InitialBackoff,
		assetIDs:    assetIDs,
		stopChan:    make(chan struct{}),
	}
}

// OnStatus registers fn to receive connection status changes
// ("connecting", "connected", "disconnected"). Call before Start.
func (n *Nudger) OnStatus(fn func(string)) {
	n.onStatus = fn
}

func (n *Nudger) setStatus(status string) {
	if n.onStatus != nil {
		n.onStatus(status)
	}
}

// Start begins the listener with automatic reconnection.
func (n *Nudger) Start(ctx context.Context) {
	n.wg.Add(2)
	go n.runLoop(ctx)
	go n.heartbeatMonitor(ctx)
}

// Stop shuts down the listener and waits for its goroutines.
func (n *Nudger) Stop() {
	n.stopOnce.Do(func() { close(n.stopChan) })
	n.closeConnection()
	n.wg.Wait()
}

func (n *Nudger) runLoop(ctx context.Context) {
	defer n.wg.Done()

	for {
		if n.stopped(ctx) {
			return
		}

		n.setStatus("connecting")
		if err := n.connect(ctx); err != nil {
			n.log.Error().Err(err).Dur("backoff", n.backoff).Msg("ws_connect_failed")
			n.waitBackoff(ctx)
			continue
		}

		if err := n.readLoop(ctx); err != nil {
			n.log.Warn().Err(err).Msg("ws_read_error")
		}
		n.closeConnection()

		if n.stopped(ctx) {
			return
		}
		n.waitBackoff(ctx)
	}
}

func (n *Nudger) stopped(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-n.stopChan:
		return true
	default:
		return false
	}
}

// connect dials the market channel and subscribes to the configured assets.
func (n *Nudger) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	headers := http.Header{}
	headers.Set("Origin", "https://polymarket.com")

	url := n.url
	if !strings.HasSuffix(url, "/market") {
		url = strings.TrimSuffix(url, "/") + "/market"
	}

	conn, resp, err := dialer.DialContext(ctx, url, headers)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial failed with status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("dial failed: %w", err)
	}

	n.connMu.Lock()
	n.conn = conn
	n.connMu.Unlock()
	n.backoff = InitialBackoff

	n.log.Info().Str("endpoint", url).Msg("ws_connected")
	n.setStatus("connected")

	if err := n.subscribe(); err != nil {
		return fmt.Errorf("subscribe failed: %w", err)
	}

	n.updateLastMsg()
	return nil
}

func (n *Nudger) subscribe() error {
	msg := map[string]interface{}{
		"type":       "market",
		"assets_ids": n.assetIDs,
	}

	n.connMu.Lock()
	defer n.connMu.Unlock()

	if n.conn == nil {
		return fmt.Errorf("connection is nil")
	}

	n.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	if err := n.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to send subscribe message: %w", err)
	}

	n.log.Info().Int("asset_count", len(n.assetIDs)).Msg("ws_subscribed")
	return nil
}

func (n *Nudger) readLoop(ctx context.Context) error {
	for {
		if n.stopped(ctx) {
			return nil
		}

		n.connMu.Lock()
		conn := n.conn
		n.connMu.Unlock()
		if conn == nil {
			return fmt.Errorf("connection is nil")
		}

		conn.SetReadDeadline(time.Now().Add(HeartbeatTimeout + PongTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}

		n.updateLastMsg()
		n.handleMessage(message)
	}
}

// handleMessage fires the nudge for the first qualifying execution in a frame.
func (n *Nudger) handleMessage(data []byte) {
	activities, err := ParseMessage(data)
	if err != nil {
		n.log.Debug().Err(err).Msg("ws_parse_error")
		return
	}

	for _, a := range activities {
		if a.Notional() < n.minNotional {
			continue
		}
		if n.allowNudge(time.Now()) {
			n.log.Debug().
				Str("asset", truncate(a.AssetID, 16)).
				Float64("notional", a.Notional()).
				Msg("whale_execution_seen")
			n.onWhale()
		}
		return
	}
}

// allowNudge reports whether at least gap has passed since the last nudge.
func (n *Nudger) allowNudge(now time.Time) bool {
	n.nudgeMu.Lock()
	defer n.nudgeMu.Unlock()

	if !n.lastNudge.IsZero() && now.Sub(n.lastNudge) < n.gap {
		return false
	}
	n.lastNudge = now
	return true
}

func (n *Nudger) heartbeatMonitor(ctx context.Context) {
	defer n.wg.Done()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-n.stopChan:
			return
		case <-ticker.C:
			n.checkHeartbeat()
		}
	}
}

// checkHeartbeat pings a quiet connection and drops it if the ping fails.
func (n *Nudger) checkHeartbeat() {
	n.lastMsgMu.RLock()
	lastMsg := n.lastMsg
	n.lastMsgMu.RUnlock()

	if lastMsg.IsZero() {
		return
	}

	elapsed := time.Since(lastMsg)
	if elapsed <= HeartbeatTimeout {
		return
	}
	n.log.Warn().Dur("elapsed", elapsed).Msg("ws_heartbeat_timeout")

	n.connMu.Lock()
	conn := n.conn
	n.connMu.Unlock()
	if conn == nil {
		return
	}

	conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		n.log.Warn().Err(err).Msg("ws_ping_failed")
		n.closeConnection()
	}
}

func (n *Nudger) updateLastMsg() {
	n.lastMsgMu.Lock()
	n.lastMsg = time.Now()
	n.lastMsgMu.Unlock()
}

func (n *Nudger) closeConnection() {
	n.connMu.Lock()
	defer n.connMu.Unlock()

	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
		n.log.Info().Msg("ws_disconnected")
		n.setStatus("disconnected")
	}
}

// waitBackoff waits for the backoff duration with jitter, then grows it.
func (n *Nudger) waitBackoff(ctx context.Context) {
	jitter := time.Duration(float64(n.backoff) * JitterPercent * (rand.Float64()*2 - 1))
	wait := n.backoff + jitter

	select {
	case <-ctx.Done():
	case <-n.stopChan:
	case <-time.After(wait):
	}

	n.backoff = time.Duration(float64(n.backoff) * BackoffFactor)
	if n.backoff > MaxBackoff {
		n.backoff = MaxBackoff
	}
}

// truncate shortens a string for logging.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
