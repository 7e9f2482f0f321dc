/*
	Caller-side access to a websocket node. The client owns one
	connection, pairs each sent envelope with the single response the
	node produces for it, and translates typed failures into package
	sentinels the caller can branch on.
*/

package client

import (
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/meshworks/gridnode/message"
	"github.com/meshworks/gridnode/pointer"
	"github.com/meshworks/gridnode/uid"
)

type Config struct {
	Logger *slog.Logger
	// Endpoint is the node's host:port; the message path is fixed.
	Endpoint string
	Timeout  time.Duration
}

type Client struct {
	logger *slog.Logger
	cfg    *Config

	// one in-flight request at a time; the protocol pairs each frame
	// with exactly one response frame
	mu   sync.Mutex
	conn *websocket.Conn
}

func Dial(cfg *Config) (*Client, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("client requires an endpoint")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	u := url.URL{Scheme: "ws", Host: cfg.Endpoint, Path: "/msg"}
	dialer := websocket.Dialer{HandshakeTimeout: cfg.Timeout}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial node at %s", cfg.Endpoint)
	}

	return &Client{
		logger: cfg.Logger.WithGroup("client"),
		cfg:    cfg,
		conn:   conn,
	}, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return c.conn.Close()
}

func (c *Client) do(env message.Envelope) (message.Response, error) {
	raw, err := message.Encode(env)
	if err != nil {
		return message.Response{}, errors.Wrap(err, "failed to encode envelope")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debug("dispatching", "kind", env.Kind.String())

	c.conn.SetWriteDeadline(time.Now().Add(c.cfg.Timeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		return message.Response{}, errors.Wrap(err, "failed to send envelope")
	}

	c.conn.SetReadDeadline(time.Now().Add(c.cfg.Timeout))
	_, reply, err := c.conn.ReadMessage()
	if err != nil {
		return message.Response{}, errors.Wrap(err, "failed to read response")
	}

	resp, err := message.DecodeResponse(reply)
	if err != nil {
		return message.Response{}, errors.Wrap(err, "failed to decode response")
	}
	return resp, nil
}

// Save stores an object on the node under the given identifier.
func (c *Client) Save(id uid.UID, obj any) error {
	env, err := message.SaveObject(id, obj)
	if err != nil {
		return err
	}
	resp, err := c.do(env)
	if err != nil {
		return err
	}
	return translateResponse(resp)
}

// Get fetches the object stored under the identifier.
func (c *Client) Get(id uid.UID) (any, error) {
	resp, err := c.do(message.GetObject(id))
	if err != nil {
		return nil, err
	}
	if err := translateResponse(resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// Delete removes the object stored under the identifier.
func (c *Client) Delete(id uid.UID) error {
	resp, err := c.do(message.DeleteObject(id))
	if err != nil {
		return err
	}
	return translateResponse(resp)
}

// CallMethod invokes a method on the stored object. The result comes
// back inline, or as a pointer when it stayed on the node.
func (c *Client) CallMethod(id uid.UID, method string, args []any) (any, *pointer.Pointer, error) {
	env, err := message.RunClassMethod(id, method, args)
	if err != nil {
		return nil, nil, err
	}
	resp, err := c.do(env)
	if err != nil {
		return nil, nil, err
	}
	if err := translateResponse(resp); err != nil {
		return nil, nil, err
	}
	return resp.Value, resp.Pointer, nil
}

// Call invokes a function or constructor by its dotted framework path.
func (c *Client) Call(path string, args []any) (any, *pointer.Pointer, error) {
	env, err := message.RunFunctionOrConstructor(path, args)
	if err != nil {
		return nil, nil, err
	}
	resp, err := c.do(env)
	if err != nil {
		return nil, nil, err
	}
	if err := translateResponse(resp); err != nil {
		return nil, nil, err
	}
	return resp.Value, resp.Pointer, nil
}
