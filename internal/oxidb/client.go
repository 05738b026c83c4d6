// Package oxidb is a TCP client for oxidb-server, trimmed to what the site
// needs to keep submissions in an OxiDB collection.
//
// Protocol: each message is [4-byte little-endian length][JSON payload].
// Server responds with {"ok": true, "data": ...} or {"ok": false, "error": "..."}.
package oxidb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// maxFrame bounds a single response payload.
const maxFrame = 16 << 20

// ErrBroken is returned by a client whose connection was dropped after a
// failed or abandoned exchange. Replies on such a connection can no longer
// be paired with their requests.
var ErrBroken = errors.New("oxidb: connection is broken")

// Client is a TCP client for oxidb-server. Requests on one client are
// serialized.
type Client struct {
	conn   net.Conn
	mu     sync.Mutex
	broken atomic.Bool
}

// Connect dials oxidb-server at host:port.
func Connect(ctx context.Context, host string, port int, timeout time.Duration) (*Client, error) {
	addr := net.JoinHostPort(host, fmt.Sprint(port))
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("oxidb: connect to %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	if c.broken.Swap(true) {
		return nil
	}
	return c.conn.Close()
}

// Broken reports whether the connection was dropped and the client must be
// replaced.
func (c *Client) Broken() bool {
	return c.broken.Load()
}

func (c *Client) drop() {
	if !c.broken.Swap(true) {
		c.conn.Close()
	}
}

func (c *Client) send(data []byte) error {
	frame := make([]byte, 4+len(data))
	binary.LittleEndian.PutUint32(frame, uint32(len(data)))
	copy(frame[4:], data)
	_, err := c.conn.Write(frame)
	return err
}

func (c *Client) recv() ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(c.conn, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("oxidb: read length: %w", err)
	}
	length := binary.LittleEndian.Uint32(lenBuf[:])
	if length > maxFrame {
		return nil, fmt.Errorf("oxidb: frame of %d bytes exceeds limit", length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(c.conn, payload); err != nil {
		return nil, fmt.Errorf("oxidb: read payload: %w", err)
	}
	return payload, nil
}

func (c *Client) request(ctx context.Context, payload map[string]any) (map[string]any, error) {
	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("oxidb: marshal request: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken.Load() {
		return nil, ErrBroken
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := c.exchange(ctx, jsonBytes)
	if err != nil {
		c.drop()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("oxidb: request abandoned: %w", ctxErr)
		}
		return nil, err
	}
	return resp, nil
}

// exchange writes one frame and reads its reply. Cancelling ctx forces the
// connection deadline into the past so a blocked read or write returns.
func (c *Client) exchange(ctx context.Context, data []byte) (map[string]any, error) {
	deadline, _ := ctx.Deadline()
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("oxidb: set deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetDeadline(time.Now())
	})
	defer func() {
		// The deadline may be in the past now; the next request on this
		// connection would race it.
		if !stop() {
			c.drop()
		}
	}()

	if err := c.send(data); err != nil {
		return nil, fmt.Errorf("oxidb: send: %w", err)
	}
	respBytes, err := c.recv()
	if err != nil {
		return nil, err
	}
	var resp map[string]any
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("oxidb: unmarshal response: %w", err)
	}
	return resp, nil
}

func (c *Client) checked(ctx context.Context, payload map[string]any) (any, error) {
	resp, err := c.request(ctx, payload)
	if err != nil {
		return nil, err
	}
	ok, _ := resp["ok"].(bool)
	if !ok {
		errMsg, _ := resp["error"].(string)
		if errMsg == "" {
			errMsg = "unknown error"
		}
		return nil, &Error{Msg: errMsg}
	}
	return resp["data"], nil
}

// Ping sends a ping to the server. Returns "pong". Any other reply means
// the stream is out of step and the connection is dropped.
func (c *Client) Ping(ctx context.Context) (string, error) {
	data, err := c.checked(ctx, map[string]any{"cmd": "ping"})
	if err != nil {
		return "", err
	}
	s, _ := data.(string)
	if s != "pong" {
		c.drop()
		return "", fmt.Errorf("oxidb: unexpected ping reply %v", data)
	}
	return s, nil
}

// CreateCollection explicitly creates a collection. Creating one that
// already exists is not an error.
func (c *Client) CreateCollection(ctx context.Context, name string) error {
	_, err := c.checked(ctx, map[string]any{"cmd": "create_collection", "collection": name})
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "exists") {
		return nil
	}
	return err
}

// Insert inserts a single document and returns the id the server assigned.
func (c *Client) Insert(ctx context.Context, collection string, doc map[string]any) (string, error) {
	data, err := c.checked(ctx, map[string]any{"cmd": "insert", "collection": collection, "doc": doc})
	if err != nil {
		return "", err
	}
	m, _ := data.(map[string]any)
	switch v := m["id"].(type) {
	case string:
		return v, nil
	case float64:
		return fmt.Sprintf("%.0f", v), nil
	}
	return "", nil
}

// Count returns the number of documents matching a query.
func (c *Client) Count(ctx context.Context, collection string, query map[string]any) (int, error) {
	if query == nil {
		query = map[string]any{}
	}
	data, err := c.checked(ctx, map[string]any{
		"cmd": "count", "collection": collection, "query": query,
	})
	if err != nil {
		return 0, err
	}
	m, _ := data.(map[string]any)
	count, _ := m["count"].(float64)
	return int(count), nil
}
