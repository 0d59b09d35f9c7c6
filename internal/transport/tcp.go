package transport

import (
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/indigo-web/lantern/config"
)

type listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

// TCP accepts plain connections. Every connection is served by its own goroutine and
// closed as soon as the callback returns.
type TCP struct {
	l     listener
	wg    *sync.WaitGroup
	stop  *atomic.Bool
	conns *sync.Map
}

func NewTCP() *TCP {
	tcp := newTCP(nil)
	return &tcp
}

func newTCP(l listener) TCP {
	return TCP{
		l:     l,
		wg:    new(sync.WaitGroup),
		stop:  new(atomic.Bool),
		conns: new(sync.Map),
	}
}

func bindTCP(addr string) (*net.TCPListener, error) {
	tcpaddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	return net.ListenTCP("tcp", tcpaddr)
}

func (t *TCP) Bind(addr string) (err error) {
	t.l, err = bindTCP(addr)
	return err
}

// Addr returns the bound address. Useful when bound to port 0.
func (t *TCP) Addr() net.Addr {
	if t.l == nil {
		return nil
	}

	return t.l.Addr()
}

// Listen accepts connections until Stop is called. Accept is interrupted periodically in
// order to notice the stop in time.
func (t *TCP) Listen(cfg config.NET, cb func(conn net.Conn)) error {
	for !t.stop.Load() {
		err := t.l.SetDeadline(time.Now().Add(cfg.AcceptLoopInterruptPeriod))
		if err != nil {
			return err
		}

		conn, err := t.l.Accept()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}

			if t.stop.Load() {
				return nil
			}

			return err
		}

		t.wg.Add(1)
		t.conns.Store(conn, struct{}{})
		go func(conn net.Conn) {
			defer t.wg.Done()
			cb(conn)
			_ = conn.Close()
			t.conns.Delete(conn)
		}(conn)
	}

	return nil
}

func (t *TCP) Stop() {
	t.stop.Store(true)
}

// Close closes the listener and interrupts reads on all the open connections, so idle
// keep-alive connections don't hold the shutdown. Responses being written are not affected.
func (t *TCP) Close() {
	if t.l != nil {
		_ = t.l.Close()
	}

	t.conns.Range(func(key, _ any) bool {
		_ = key.(net.Conn).SetReadDeadline(time.Now())
		return true
	})
}

// Wait blocks until all the connection goroutines are done.
func (t *TCP) Wait() {
	t.wg.Wait()
}
