package http1

import (
	"sync"

	"github.com/indigo-web/lantern/http"
)

var _ http.Sink = new(exchange)

type op struct {
	data []byte
	cb   func(error)
	end  bool
	err  error
}

// exchange hands the response over from whatever goroutine produces it to the connection
// goroutine. Posting never blocks, so neither the loop nor background goroutines ever
// wait for a slow client.
type exchange struct {
	mu     sync.Mutex
	ops    []op
	signal chan struct{}
}

func newExchange() *exchange {
	return &exchange{
		signal: make(chan struct{}, 1),
	}
}

func (e *exchange) Flush(data []byte, cb func(error)) {
	e.push(op{data: data, cb: cb})
}

func (e *exchange) End(data []byte, err error) {
	e.push(op{data: data, end: true, err: err})
}

func (e *exchange) push(o op) {
	e.mu.Lock()
	e.ops = append(e.ops, o)
	e.mu.Unlock()

	select {
	case e.signal <- struct{}{}:
	default:
	}
}

// take moves all the pending operations into buff.
func (e *exchange) take(buff []op) []op {
	e.mu.Lock()
	buff = append(buff, e.ops...)
	clear(e.ops)
	e.ops = e.ops[:0]
	e.mu.Unlock()

	return buff
}
