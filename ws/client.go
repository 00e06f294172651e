package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"goLangClient/config"
	"goLangClient/state"
)

var ErrNotConnected = errors.New("not connected to game server")

// Handler receives every decoded server message.
type Handler func(ctx context.Context, env state.Envelope) error

// ClientConfig holds the game server connection settings.
type ClientConfig struct {
	URL                   string
	HandshakeTimeout      time.Duration
	ReadTimeout           time.Duration
	WriteTimeout          time.Duration
	PingInterval          time.Duration
	InitialReconnectDelay time.Duration
	MaxReconnectDelay     time.Duration
}

func DefaultClientConfig(serverURL string) ClientConfig {
	return ClientConfig{
		URL:                   serverURL,
		HandshakeTimeout:      config.WSHandshakeTimeout,
		ReadTimeout:           config.WSReadDeadline,
		WriteTimeout:          config.WSWriteDeadline,
		PingInterval:          config.WSPingInterval,
		InitialReconnectDelay: config.InitialReconnectDelay,
		MaxReconnectDelay:     config.MaxReconnectDelay,
	}
}

// Client keeps a connection to the game server open, decoding inbound
// envelopes for a handler and serializing outbound writes.
type Client struct {
	cfg       ClientConfig
	log       logrus.FieldLogger
	handler   Handler
	onConnect func(ctx context.Context)

	writeMutex sync.Mutex // Protects conn and websocket writes
	conn       *websocket.Conn
}

func NewClient(cfg ClientConfig, handler Handler, log logrus.FieldLogger) *Client {
	return &Client{cfg: cfg, handler: handler, log: log}
}

// OnConnect registers fn to run after every successful (re)connection.
// Must be called before Run.
func (c *Client) OnConnect(fn func(ctx context.Context)) {
	c.onConnect = fn
}

// Run connects and reconnects with exponential backoff until ctx is done.
func (c *Client) Run(ctx context.Context) error {
	if _, err := url.Parse(c.cfg.URL); err != nil {
		return fmt.Errorf("invalid game server URL: %w", err)
	}

	reconnectDelay := c.cfg.InitialReconnectDelay

	for {
		connected, err := c.handleConnection(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			reconnectDelay = c.cfg.InitialReconnectDelay
		}
		c.log.Errorf("❌ Game server connection lost: %v. Reconnecting in %v...", err, reconnectDelay)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}

		reconnectDelay *= 2
		if reconnectDelay > c.cfg.MaxReconnectDelay {
			reconnectDelay = c.cfg.MaxReconnectDelay
		}
	}
}

// handleConnection runs one connection until it fails. connected reports
// whether the dial succeeded.
func (c *Client) handleConnection(ctx context.Context) (connected bool, err error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
		ReadBufferSize:   config.WSReadBufferSize,
		WriteBufferSize:  config.WSWriteBufferSize,
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to connect to game server: %w", err)
	}
	defer c.drop(conn)

	conn.SetReadLimit(config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	})

	c.writeMutex.Lock()
	c.conn = conn
	c.writeMutex.Unlock()

	c.log.Infof("🔌 Connected to game server %s", c.cfg.URL)

	connCtx, connCancel := context.WithCancel(ctx)
	defer connCancel()

	if c.onConnect != nil {
		go c.onConnect(connCtx)
	}

	readErrors := make(chan error, 1)
	messages := make(chan state.Envelope, 100)

	go func() {
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				readErrors <- err
				return
			}
			conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))

			var env state.Envelope
			if err := json.Unmarshal(raw, &env); err != nil || env.Type == "" {
				c.log.Warnf("⚠️  Dropping malformed message: %.120s", raw)
				continue
			}

			select {
			case messages <- env:
			case <-connCtx.Done():
				return
			}
		}
	}()

	pingTicker := time.NewTicker(c.cfg.PingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.writeMutex.Lock()
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.cfg.WriteTimeout))
			c.writeMutex.Unlock()
			return true, ctx.Err()

		case err := <-readErrors:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return true, fmt.Errorf("read error: %w", err)
			}
			return true, fmt.Errorf("connection closed: %w", err)

		case env := <-messages:
			if err := c.handler(connCtx, env); err != nil {
				c.log.Warnf("⚠️  Handler failed for %s: %v", env.Type, err)
			}

		case <-pingTicker.C:
			c.writeMutex.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteTimeout))
			c.writeMutex.Unlock()
			if err != nil {
				return true, fmt.Errorf("ping failed: %w", err)
			}
		}
	}
}

func (c *Client) drop(conn *websocket.Conn) {
	c.writeMutex.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.writeMutex.Unlock()
	conn.Close()
}

// Send writes one envelope to the game server.
func (c *Client) Send(msgType string, data any) error {
	env, err := state.NewEnvelope(msgType, data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msgType, err)
	}

	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	if err := c.conn.WriteJSON(env); err != nil {
		return fmt.Errorf("send %s: %w", msgType, err)
	}
	return nil
}

// Connected reports whether a connection is currently open.
func (c *Client) Connected() bool {
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()
	return c.conn != nil
}
