package http1

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/indigo-web/lantern/config"
	"github.com/indigo-web/lantern/http"
	"github.com/indigo-web/lantern/http/status"
	"github.com/indigo-web/lantern/internal/loop"
	"github.com/indigo-web/lantern/internal/transport"
	"github.com/indigo-web/lantern/kv"
	"github.com/indigo-web/lantern/metrics"
	"github.com/indigo-web/lantern/router"
)

// Server runs HTTP/1.x exchanges over client connections. Parsing and writing happen on the
// connection goroutine, while handlers are executed on the loop.
type Server struct {
	cfg     *config.Config
	router  router.Router
	loop    *loop.Loop
	logger  hclog.Logger
	metrics *metrics.Registry
}

func NewServer(
	cfg *config.Config, r router.Router, l *loop.Loop, logger hclog.Logger, m *metrics.Registry,
) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Server{
		cfg:     cfg,
		router:  r,
		loop:    l,
		logger:  logger,
		metrics: m,
	}
}

// HandleConn serves a raw connection until it's closed or broken.
func (s *Server) HandleConn(conn net.Conn) {
	buff := make([]byte, s.cfg.NET.ReadBufferSize)
	s.Serve(transport.NewClient(conn, s.cfg.NET.ReadTimeout, buff))
}

// Serve processes requests one after another until the client goes away, a request
// demands closing the connection or an exchange fails. The client is closed afterwards.
func (s *Server) Serve(client transport.Client) {
	s.metrics.ConnOpened()
	defer s.metrics.ConnClosed()
	defer func() {
		_ = client.Close()
	}()

	var (
		parser   = newParser(s.cfg.Headers)
		body     = newBody(client, s.cfg.Body)
		request  = http.NewRequest(kv.NewPrealloc(s.cfg.Headers.Prealloc), client.Remote())
		sink     = newExchange()
		response = http.NewResponse(sink)
		returned = make(chan struct{}, 1)
		ops      []op
	)

	for {
		request.Reset()
		response.Reset()
		request.Body.Init(body)

		err := s.read(client, parser, body, request)
		if err != nil && !isHTTPError(err) {
			if !isDisconnect(err) {
				s.logger.Debug("reading request", "remote", client.Remote(), "error", err)
			}

			return
		}

		request.ID = uuid.NewString()
		posted := s.loop.Post(func() {
			defer func() {
				returned <- struct{}{}
			}()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("handler panicked", "id", request.ID, "path", request.Path, "panic", r)
					response.Fail(fmt.Errorf("handler panicked: %v", r))
				}
			}()

			if err != nil {
				s.router.OnError(request, response, err)
				return
			}

			if rerr := s.router.OnRequest(request, response); rerr != nil {
				s.router.OnError(request, response, rerr)
			}
		})
		if !posted {
			return
		}

		var ok bool
		ops, ok = s.drive(client, sink, ops)
		s.metrics.Exchange(request.Method, response.Code())
		if !ok {
			return
		}

		// the handler may be still running even though the response is complete, and
		// the request must not be touched until it returns
		select {
		case <-returned:
		case <-s.loop.Done():
			return
		}

		s.logger.Debug("exchange",
			"id", request.ID,
			"method", request.Method.String(),
			"path", request.Path,
			"remote", client.Remote(),
			"code", int(response.Code()),
		)

		if err != nil || !request.KeepAlive() {
			return
		}
	}
}

// read parses the next request and buffers its body, so handlers never block on the
// connection. HTTP errors are returned for requests that must be answered, but after
// which the connection cannot be reused.
func (s *Server) read(client transport.Client, parser *parser, body *body, request *http.Request) error {
	head, err := parser.readHead(client)
	if err != nil {
		return err
	}

	if err = parser.parse(head, request); err != nil {
		return err
	}

	body.init(request)
	_, err = request.Body.Bytes()

	return err
}

// drive performs the response operations until the exchange is completed. It reports
// whether the connection can be reused.
func (s *Server) drive(client transport.Client, sink *exchange, buff []op) ([]op, bool) {
	var writeErr error

	for {
		select {
		case <-sink.signal:
		case <-s.loop.Done():
			return buff, false
		}

		buff = sink.take(buff[:0])

		for i, o := range buff {
			if !o.end {
				if writeErr == nil && len(o.data) > 0 {
					_, writeErr = client.Write(o.data)
				}

				cbErr := writeErr
				cb := o.cb
				s.loop.Post(func() {
					cb(cbErr)
				})
				continue
			}

			if o.err != nil {
				s.logger.Debug("response aborted", "remote", client.Remote(), "error", o.err)
				clear(buff)
				return buff, false
			}

			if writeErr == nil && len(o.data) > 0 {
				_, writeErr = client.Write(o.data)
			}

			if len(buff) > i+1 {
				s.logger.Warn("operations after the response ended were dropped", "count", len(buff)-i-1)
			}

			clear(buff)
			return buff, writeErr == nil
		}

		clear(buff)
	}
}

func isHTTPError(err error) bool {
	var target status.HTTPError
	return errors.As(err, &target)
}

func isDisconnect(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, os.ErrDeadlineExceeded) ||
		errors.Is(err, net.ErrClosed)
}
