package stream

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"tickflash/internal/observability"
)

// ClientConfig configures feed connection behavior.
type ClientConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the exponential reconnect backoff.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing control frames.
	WriteTimeout time.Duration
	// Buffer is the decoded-message channel depth.
	Buffer int
}

// DefaultClientConfig returns default feed connection configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		Buffer:            1024,
	}
}

// Client maintains the persistent websocket feed connection, decodes
// inbound messages, and delivers them on a single channel in arrival
// order. It reconnects with exponential backoff and keeps the
// connection alive with pings.
type Client struct {
	endpoint string
	config   ClientConfig
	logger   zerolog.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	msgs chan *Message
	done chan struct{}
	wg   sync.WaitGroup

	reconnecting atomic.Bool
}

// NewClient creates a feed client and connects to the endpoint.
func NewClient(ctx context.Context, endpoint string, config *ClientConfig, logger zerolog.Logger) (*Client, error) {
	cfg := DefaultClientConfig()
	if config != nil {
		cfg = *config
	}

	c := &Client{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger.With().Str("component", "stream").Logger(),
		msgs:     make(chan *Message, cfg.Buffer),
		done:     make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// Messages returns the decoded message channel. Closed on Close.
// Delivery preserves arrival order; the consumer owns ordering-sensitive
// state and must drain on a single goroutine.
func (c *Client) Messages() <-chan *Message {
	return c.msgs
}

// connect establishes the websocket connection.
func (c *Client) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// Close closes the connection and the message channel.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil // already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	close(c.msgs)
	return nil
}

// readLoop reads, decodes, and delivers messages until shutdown.
func (c *Client) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, raw, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = c.config.ReconnectDelay

		msg, err := Decode(raw)
		if err != nil {
			// Not fatal; count it and keep reading.
			observability.RecordMalformedMessage()
			c.logger.Debug().Err(err).Msg("dropping undecodable feed message")
			continue
		}

		// Block until delivered; events must not be dropped or reordered.
		select {
		case c.msgs <- msg:
		case <-c.done:
			return
		}
	}
}

// reconnect attempts to re-establish the connection after a delay.
func (c *Client) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		// Retry happens on the next read error.
		c.logger.Warn().Err(err).Msg("feed reconnect failed")
		return
	}

	observability.RecordStreamReconnect()
	c.logger.Info().Str("endpoint", c.endpoint).Msg("feed reconnected")
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (c *Client) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead; the reader handles reconnect.
				}
			}
			c.connMu.Unlock()
		}
	}
}
