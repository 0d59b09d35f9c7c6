package http

import (
	"context"
	"net"
	"strconv"
	"strings"

	"github.com/indigo-web/lantern/http/method"
	"github.com/indigo-web/lantern/kv"
	"github.com/indigo-web/utils/strcomp"
)

var zeroContext = context.Background()

type Headers = *kv.Storage

// Request represents an HTTP request. It is populated by the transport before any handler
// sees it and must be treated as read-only by handlers. The object is reused across
// requests on the same connection, so it must not be retained once the response ended.
type Request struct {
	// ID uniquely identifies the exchange. Mainly used to correlate log lines.
	ID string
	// Method is an enum representing the request method.
	Method method.Method
	// Path is the URL-decoded request path, query excluded.
	Path string
	// Query is the raw query string, without the leading question mark.
	Query string
	// Proto is the protocol token as it was received, e.g. HTTP/1.1.
	Proto string
	// Headers holds header pairs in their original order. Duplicates are preserved and lookup
	// is case-insensitive.
	Headers Headers
	// ContentLength is the value of the Content-Length header, 0 if absent. It doesn't make
	// any sense when Chunked is set.
	ContentLength int64
	// Chunked tells whether the body is transferred using chunked encoding.
	Chunked bool
	// Body is a dedicated entity providing access to the message body.
	Body *Body
	// PathMatch contains the captures of the route that matched, index 0 being the whole
	// match. It's nil if the request was served by a default handler.
	PathMatch []string
	// Remote holds the remote address of the connection.
	Remote net.Addr
	// Ctx is a user-managed context, reset with every request.
	Ctx context.Context
}

func NewRequest(headers *kv.Storage, remote net.Addr) *Request {
	request := &Request{
		Method:  method.Unknown,
		Headers: headers,
		Remote:  remote,
		Ctx:     zeroContext,
	}
	request.Body = NewBody(nopRetriever{})

	return request
}

// Version returns the protocol version without the HTTP/ prefix, e.g. 1.1.
func (r *Request) Version() string {
	return strings.TrimPrefix(r.Proto, "HTTP/")
}

// RemoteAddress returns the remote host, without the port.
func (r *Request) RemoteAddress() string {
	host, _ := r.splitRemote()
	return host
}

// RemotePort returns the remote port, or 0 if it's unknown.
func (r *Request) RemotePort() int {
	_, port := r.splitRemote()
	return port
}

func (r *Request) splitRemote() (string, int) {
	if r.Remote == nil {
		return "", 0
	}

	host, portStr, err := net.SplitHostPort(r.Remote.String())
	if err != nil {
		return r.Remote.String(), 0
	}

	port, _ := strconv.Atoi(portStr)

	return host, port
}

// KeepAlive tells whether the connection may be reused after this request according to the
// protocol version and the Connection header.
func (r *Request) KeepAlive() bool {
	conn := r.Headers.Value("connection")

	switch r.Proto {
	case "HTTP/1.0":
		return strcomp.EqualFold(conn, "keep-alive")
	default:
		return !strcomp.EqualFold(conn, "close")
	}
}

// Reset prepares the request for being filled by the next exchange.
func (r *Request) Reset() {
	r.ID = ""
	r.Method = method.Unknown
	r.Path = ""
	r.Query = ""
	r.Proto = ""
	r.Headers.Clear()
	r.ContentLength = 0
	r.Chunked = false
	r.PathMatch = nil
	r.Ctx = zeroContext
}
