package hostinput

import (
	"context"
	"fmt"
	"net"
	"time"
)

const defaultDialTimeout = 3 * time.Second

// Client sends host events to a serve instance.
type Client struct {
	conn net.Conn
}

// Dial connects to the input listener at addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	d := &net.Dialer{Timeout: defaultDialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return &Client{conn: conn}, nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn) *Client { return &Client{conn: conn} }

// Send writes one event.
func (c *Client) Send(s InputState) error {
	data, err := s.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("write input state: %w", err)
	}
	return nil
}

// Close closes the connection.
func (c *Client) Close() error { return c.conn.Close() }
