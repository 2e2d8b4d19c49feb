// Package event implements a client for the real-time event
// streaming service, the websocket counterpart of the census REST
// API.
package event

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
)

// reconnectInterval bounds the backoff between reconnection attempts.
const reconnectInterval = 30 * time.Second

// Client maintains a connection to the event stream and delivers
// game events to the Messages channel.
//
// Subscriptions survive reconnects: after every successful dial the
// client replays all active subscriptions before reading events.
type Client struct {
	endpoint    string
	environment string
	serviceID   string
	log         *slog.Logger
	dialer      *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
	subs []Subscription

	messages chan ServiceMessage
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the stream endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithEnvironment selects the game environment ("ps2", "ps2ps4us" or
// "ps2ps4eu").
func WithEnvironment(env string) Option {
	return func(c *Client) { c.environment = env }
}

// WithServiceID sets the service ID sent when connecting.
func WithServiceID(id string) Option {
	return func(c *Client) { c.serviceID = id }
}

// WithLogger sets the logger used for connection diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates an event stream client. The connection is not
// opened until Run is called.
func NewClient(serviceID string, opts ...Option) *Client {
	c := &Client{
		endpoint:    DefaultEndpoint,
		environment: "ps2",
		serviceID:   serviceID,
		log:         slog.Default(),
		dialer:      websocket.DefaultDialer,
		messages:    make(chan ServiceMessage, 64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Messages returns the channel game events are delivered on. The
// channel is closed when Run returns.
func (c *Client) Messages() <-chan ServiceMessage {
	return c.messages
}

// Subscribe registers a subscription and, if connected, sends it
// immediately. Subscriptions are replayed after every reconnect.
func (c *Client) Subscribe(sub Subscription) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, sub)
	if c.conn == nil {
		return nil
	}
	return c.conn.WriteJSON(subscribeMessage(sub))
}

// ClearSubscriptions drops all subscriptions, on the server and for
// future reconnects.
func (c *Client) ClearSubscriptions() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = nil
	if c.conn == nil {
		return nil
	}
	return c.conn.WriteJSON(clearAllMessage())
}

// Run connects to the stream and delivers events until the context
// is cancelled. Dropped connections are redialled with exponential
// backoff; Run only returns early if a dial fails permanently.
func (c *Client) Run(ctx context.Context) error {
	defer close(c.messages)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		policy := backoff.NewExponentialBackOff()
		policy.MaxInterval = reconnectInterval
		policy.MaxElapsedTime = 0
		conn, err := backoff.RetryWithData(func() (*websocket.Conn, error) {
			return c.dial(ctx)
		}, backoff.WithContext(policy, ctx))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		c.attach(conn)
		err = c.readLoop(ctx, conn)
		c.detach(conn)
		if ctx.Err() != nil {
			return nil
		}
		c.log.Warn("event stream connection lost, reconnecting",
			slog.String("error", err.Error()))
	}
}

// dial opens a websocket connection to the stream endpoint.
func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	streamURL := fmt.Sprintf("%s?environment=%s&service-id=%s",
		c.endpoint, url.QueryEscape(c.environment), url.QueryEscape(c.serviceID))
	conn, _, err := c.dialer.DialContext(ctx, streamURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dialling event stream: %w", err)
	}
	return conn, nil
}

// attach installs the connection and replays active subscriptions.
func (c *Client) attach(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = conn
	for _, sub := range c.subs {
		if err := conn.WriteJSON(subscribeMessage(sub)); err != nil {
			c.log.Warn("resubscribe failed", slog.String("error", err.Error()))
			return
		}
	}
}

func (c *Client) detach(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	conn.Close()
}

// readLoop decodes incoming frames until the connection drops or the
// context is cancelled. Only service messages reach the caller; the
// stream's bookkeeping frames are logged and consumed here.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		frame, err := ParseFrame(data)
		if err != nil {
			c.log.Debug("ignoring stream frame", slog.String("error", err.Error()))
			continue
		}
		switch f := frame.(type) {
		case ServiceMessage:
			select {
			case c.messages <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		case Heartbeat:
			c.log.Debug("event stream heartbeat",
				slog.Int("endpoints", len(f.Online)))
		case ServiceStateChanged:
			c.log.Info("endpoint state changed",
				slog.String("detail", f.Detail), slog.Bool("online", f.Online))
		case ConnectionStateChanged:
			c.log.Info("event stream connection state",
				slog.Bool("connected", f.Connected))
		case SubscriptionEcho:
			c.log.Debug("subscription updated")
		}
	}
}
