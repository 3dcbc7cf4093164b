// Package feed consumes a live shot stream over a WebSocket.
//
// The server sends one JSON event per message:
//
//	{"type": "shot", "data": {...shot fields...}}
//	{"type": "end"}
//
// The stream ends on an "end" event or a normal close.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/shottree/shotlog"
)

// Config holds feed configuration
type Config struct {
	URL            string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig(url string) Config {
	return Config{
		URL:            url,
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    30 * time.Second,
	}
}

// Event is a single message from the stream
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Stats holds stream counters
type Stats struct {
	Shots   int64
	Invalid int64
}

// Feed is a shot source backed by a WebSocket stream.
type Feed struct {
	config Config
	logger *slog.Logger
	stats  Stats
}

func New(config Config, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{config: config, logger: logger.With("feed", config.URL)}
}

// Each connects to the stream and passes every shot to fn until the stream
// ends, fn fails or ctx is done.
func (f *Feed) Each(ctx context.Context, fn func(shotlog.Shot) error) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: f.config.ConnectTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, f.config.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		if f.config.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("read error: %w", err)
		}

		var event Event
		if err := json.Unmarshal(message, &event); err != nil {
			atomic.AddInt64(&f.stats.Invalid, 1)
			f.logger.Warn("failed to parse event", "err", err)
			continue
		}

		switch event.Type {
		case "shot":
			var shot shotlog.Shot
			if err := json.Unmarshal(event.Data, &shot); err != nil {
				atomic.AddInt64(&f.stats.Invalid, 1)
				f.logger.Warn("failed to parse shot", "err", err)
				continue
			}
			atomic.AddInt64(&f.stats.Shots, 1)
			if err := fn(shot); err != nil {
				return err
			}

		case "end":
			f.closeNormally(conn)
			return nil

		default:
			f.logger.Debug("ignoring event", "type", event.Type)
		}
	}
}

func (f *Feed) closeNormally(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		f.logger.Debug("close handshake failed", "err", err)
	}
}

// GetStats returns current statistics
func (f *Feed) GetStats() Stats {
	return Stats{
		Shots:   atomic.LoadInt64(&f.stats.Shots),
		Invalid: atomic.LoadInt64(&f.stats.Invalid),
	}
}
