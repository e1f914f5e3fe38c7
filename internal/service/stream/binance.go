package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	"TradePulse/pkg/logger"

	"github.com/gorilla/websocket"
)

// Client implements a PriceStream backed by the Binance miniTicker WebSocket.
type Client struct {
	websocketURL   string
	symbol         string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	bufferSize     int
	log            *logger.Logger

	conn      *websocket.Conn
	connected bool
}

// New creates a Binance PriceStream for a single symbol.
func New(websocketURL, symbol string, reconnectDelay, pingInterval time.Duration, bufferSize int, log *logger.Logger) drepo.PriceStream {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	return &Client{
		websocketURL:   websocketURL,
		symbol:         symbol,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		bufferSize:     bufferSize,
		log:            log,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("binance stream connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	c.log.Info("binance stream connected", logger.String("symbol", c.symbol))
	return nil
}

// Subscribe subscribes to the symbol's miniTicker channel.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("binance stream not connected")
	}
	msg := map[string]any{
		"method": "SUBSCRIBE",
		"params": []string{strings.ToLower(c.symbol) + "@miniTicker"},
		"id":     1,
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe %s: %w", c.symbol, err)
	}
	c.log.Info("binance stream subscribed", logger.String("symbol", c.symbol))
	return nil
}

type miniTicker struct {
	Event  string `json:"e"`
	TimeMs int64  `json:"E"`
	Symbol string `json:"s"`
	Close  string `json:"c"`
}

// Read streams Tick events and errors until the context is cancelled or the
// connection drops.
func (c *Client) Read(ctx context.Context) (<-chan *models.Tick, <-chan error) {
	ticks := make(chan *models.Tick, c.bufferSize)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(ticks)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("binance stream conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("binance stream read: %w", err)
					return
				}
				var m miniTicker
				if err := json.Unmarshal(b, &m); err != nil {
					// subscription acks and other non-ticker frames
					continue
				}
				if m.Event != "24hrMiniTicker" {
					continue
				}
				price, err := strconv.ParseFloat(m.Close, 64)
				if err != nil {
					continue
				}
				tick := &models.Tick{Symbol: m.Symbol, Price: price, Timestamp: m.TimeMs}
				select {
				case ticks <- tick:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return ticks, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
