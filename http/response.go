package http

import (
	"errors"
	"strconv"
	"sync/atomic"

	"github.com/indigo-web/lantern/http/status"
	json "github.com/json-iterator/go"
)

var ErrResponseEnded = errors.New("response has already been ended")

// Sink is implemented by the transport. It receives the serialized response in pieces.
type Sink interface {
	// Flush hands the data over to the connection. The callback is invoked on the event loop
	// exactly once, after the data was written or the write failed.
	Flush(data []byte, cb func(error))
	// End hands the last piece of data over and completes the exchange. A non-nil err means
	// the response must not be completed and the connection must be closed instead.
	End(data []byte, err error)
}

// Response is a write sink for a single exchange. It may be completed either synchronously
// inside of the handler or later, from any goroutine, as long as only one goroutine uses
// it at a time. Exactly one of End or Abort takes effect.
type Response struct {
	sink  Sink
	buff  []byte
	code  status.Code
	ended atomic.Bool
}

func NewResponse(sink Sink) *Response {
	return &Response{
		sink: sink,
	}
}

// Reset prepares the response for the next exchange.
func (r *Response) Reset() {
	r.buff = r.buff[:0]
	r.code = 0
	r.ended.Store(false)
}

// Head appends the status line and the Content-Length header. It must be called exactly
// once, before any body data is written.
func (r *Response) Head(code status.Code, length int64) *Response {
	r.code = code
	r.buff = append(r.buff, "HTTP/1.1 "...)
	r.buff = strconv.AppendUint(r.buff, uint64(code), 10)
	r.buff = append(r.buff, ' ')
	r.buff = append(r.buff, status.Text(code)...)
	r.buff = append(r.buff, "\r\nContent-Length: "...)
	r.buff = strconv.AppendInt(r.buff, length, 10)
	r.buff = append(r.buff, "\r\n\r\n"...)

	return r
}

// Write implements the io.Writer interface. The data is buffered until the next Flush or End.
func (r *Response) Write(b []byte) (int, error) {
	if r.ended.Load() {
		return 0, ErrResponseEnded
	}

	r.buff = append(r.buff, b...)
	return len(b), nil
}

// Flush hands the buffered data over to the connection. The callback runs on the event loop
// once the data is written, or the write failed. Flushing an ended response calls the
// callback right away with ErrResponseEnded.
func (r *Response) Flush(cb func(error)) {
	if r.ended.Load() {
		cb(ErrResponseEnded)
		return
	}

	data := r.buff
	r.buff = nil
	r.sink.Flush(data, cb)
}

// End completes the response. Only the first call of End or Abort takes effect, the
// returned value tells whether this call was the one.
func (r *Response) End() bool {
	if !r.ended.CompareAndSwap(false, true) {
		return false
	}

	data := r.buff
	r.buff = nil
	r.sink.End(data, nil)

	return true
}

// Abort completes the response without completing the exchange: the connection is closed
// right after all the already flushed data is written.
func (r *Response) Abort(err error) bool {
	if err == nil {
		err = ErrResponseEnded
	}

	if !r.ended.CompareAndSwap(false, true) {
		return false
	}

	r.buff = nil
	r.sink.End(nil, err)

	return true
}

// Fail completes the response after the handler failed unexpectedly. If nothing was written
// yet, the client gets 500 Internal Server Error. Otherwise the status line is already out
// and the only option left is to abort. An ended response is left untouched.
func (r *Response) Fail(err error) bool {
	if r.ended.Load() {
		return false
	}

	if r.code != 0 {
		return r.Abort(err)
	}

	return r.Error(status.ErrInternalServerError)
}

// Ended tells whether End or Abort was already called.
func (r *Response) Ended() bool {
	return r.ended.Load()
}

// Code returns the status code written by Head, or 0 if none was written yet.
func (r *Response) Code() status.Code {
	return r.code
}

// String writes a complete response with the given body and ends it.
func (r *Response) String(code status.Code, body string) bool {
	r.Head(code, int64(len(body)))
	r.buff = append(r.buff, body...)
	return r.End()
}

// Bytes writes a complete response with the given body and ends it.
func (r *Response) Bytes(code status.Code, body []byte) bool {
	r.Head(code, int64(len(body)))
	r.buff = append(r.buff, body...)
	return r.End()
}

// JSON serializes the model and responds with it. A serialization failure results in 500.
func (r *Response) JSON(code status.Code, model any) bool {
	stream := json.ConfigDefault.BorrowStream(nil)
	defer json.ConfigDefault.ReturnStream(stream)

	stream.WriteVal(model)
	if err := stream.Error; err != nil {
		return r.Error(status.NewError(status.InternalServerError, err.Error()))
	}

	return r.Bytes(code, stream.Buffer())
}

// Error responds with the text of the error. The status code is taken from status.HTTPError
// if err is one, otherwise 500 Internal Server Error is used.
func (r *Response) Error(err error) bool {
	if err == nil {
		return r.String(status.OK, "")
	}

	return r.String(status.CodeOf(err), err.Error())
}
