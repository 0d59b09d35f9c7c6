package stream

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/indigo-web/lantern/http"
	"github.com/indigo-web/lantern/http/status"
	"github.com/indigo-web/lantern/metrics"
)

var ErrLengthMismatch = errors.New("file length changed during the transfer")

type sender struct {
	response *http.Response
	session  *Session
	logger   hclog.Logger
	metrics  *metrics.Registry
}

// Begin writes the response head with Content-Length set to the session's length and starts
// transferring the file. Every chunk is flushed before the next one is read, so the transfer
// proceeds one loop task at a time. The response is ended once the whole file was sent, or
// aborted if anything went wrong. The session is released in both cases.
func Begin(response *http.Response, session *Session, logger hclog.Logger, m *metrics.Registry) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	s := &sender{
		response: response,
		session:  session,
		logger:   logger,
		metrics:  m,
	}

	response.Head(status.OK, session.length)
	s.step()
}

func (s *sender) step() {
	chunk, last, err := s.session.fill()
	if err != nil {
		s.abort(fmt.Errorf("read file: %w", err))
		return
	}

	if len(chunk) == 0 {
		s.complete()
		return
	}

	_, _ = s.response.Write(chunk)
	s.session.sent += int64(len(chunk))
	s.response.Flush(func(err error) {
		s.onFlushed(err, len(chunk), last)
	})
}

func (s *sender) onFlushed(err error, n int, last bool) {
	if err != nil {
		s.logger.Warn("connection interrupted",
			"error", err,
			"sent", s.session.sent,
			"length", s.session.length,
		)
		s.abort(err)
		return
	}

	s.metrics.Streamed(n)

	if last {
		s.complete()
		return
	}

	s.step()
}

func (s *sender) complete() {
	if s.session.sent != s.session.length {
		s.logger.Warn("file length mismatch",
			"sent", s.session.sent,
			"length", s.session.length,
		)
		s.abort(ErrLengthMismatch)
		return
	}

	s.release()
	s.response.End()
}

func (s *sender) abort(err error) {
	s.metrics.StreamAborted()
	s.release()
	s.response.Abort(err)
}

func (s *sender) release() {
	if err := s.session.release(); err != nil {
		s.logger.Debug("close file", "error", err)
	}
}
