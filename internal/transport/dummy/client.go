package dummy

import (
	"errors"
	"io"
	"net"
	"sync"

	"github.com/indigo-web/lantern/internal/transport"
)

var _ transport.Client = new(Client)

var ErrWriteFailed = errors.New("dummy: write failed")

// Client returns the pieces it was initialised with one by one and then io.EOF, unless set
// to loop them. All the written data is kept and can be inspected afterwards.
type Client struct {
	mu         sync.Mutex
	closed     bool
	loop       bool
	pointer    int
	tmp        []byte
	written    []byte
	writes     int
	failAfter  int
	data       [][]byte
	remoteAddr net.Addr
}

func NewClient(data ...[]byte) *Client {
	return &Client{
		data:      data,
		failAfter: -1,
	}
}

func NewStringClient(data ...string) *Client {
	pieces := make([][]byte, len(data))
	for i, piece := range data {
		pieces[i] = []byte(piece)
	}

	return NewClient(pieces...)
}

func (c *Client) Read() (data []byte, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, io.EOF
	}

	if len(c.tmp) > 0 {
		data, c.tmp = c.tmp, nil

		return data, nil
	}

	if c.pointer >= len(c.data) {
		if !c.loop || len(c.data) == 0 {
			return nil, io.EOF
		}

		c.pointer = 0
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *Client) Pushback(takeback []byte) {
	c.mu.Lock()
	c.tmp = takeback
	c.mu.Unlock()
}

func (c *Client) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, net.ErrClosed
	}

	if c.failAfter >= 0 && c.writes >= c.failAfter {
		return 0, ErrWriteFailed
	}

	c.writes++
	c.written = append(c.written, p...)

	return len(p), nil
}

func (c *Client) Conn() net.Conn {
	return nil
}

func (c *Client) Remote() net.Addr {
	return c.remoteAddr
}

func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	return nil
}

// LoopReads makes the client start over once all the pieces were returned.
func (c *Client) LoopReads() *Client {
	c.loop = true
	return c
}

// FailWritesAfter makes every write after the first n ones fail.
func (c *Client) FailWritesAfter(n int) *Client {
	c.failAfter = n
	return c
}

func (c *Client) WithRemote(addr net.Addr) *Client {
	c.remoteAddr = addr
	return c
}

func (c *Client) Written() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return string(c.written)
}

func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}
