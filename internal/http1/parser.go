package http1

import (
	"bytes"
	"io"
	"strconv"

	"github.com/indigo-web/lantern/config"
	"github.com/indigo-web/lantern/http"
	"github.com/indigo-web/lantern/http/method"
	"github.com/indigo-web/lantern/http/status"
	"github.com/indigo-web/lantern/internal/transport"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
)

var crlfcrlf = []byte("\r\n\r\n")

// parser reads and parses request heads. Parsed values reference its internal buffers,
// so they stay valid only until the next head is read.
type parser struct {
	cfg  config.Headers
	head []byte
	path []byte
}

func newParser(cfg config.Headers) *parser {
	return &parser{
		cfg:  cfg,
		head: make([]byte, 0, 1024),
	}
}

// readHead accumulates data until the end of the head. Everything after it is pushed back
// into the client, so the body and pipelined requests aren't lost. The returned error
// is io.EOF if the connection was closed before any byte of a new request arrived.
func (p *parser) readHead(client transport.Client) ([]byte, error) {
	p.head = p.head[:0]

	for {
		data, err := client.Read()
		if err != nil {
			if err == io.EOF && len(p.head) > 0 {
				return nil, io.ErrUnexpectedEOF
			}

			return nil, err
		}

		if len(p.head) == 0 {
			// tolerate empty lines preceding the request line
			data = bytes.TrimLeft(data, "\r\n")
			if len(data) == 0 {
				continue
			}
		}

		offset := max(0, len(p.head)-len(crlfcrlf)+1)
		p.head = append(p.head, data...)

		if i := bytes.Index(p.head[offset:], crlfcrlf); i != -1 {
			end := offset + i + len(crlfcrlf)
			extra := len(p.head) - end
			client.Pushback(data[len(data)-extra:])

			return p.head[:end], nil
		}

		if len(p.head) > p.cfg.MaxHeadSize {
			return nil, status.ErrHeaderFieldsTooLarge
		}
	}
}

// parse fills the request from the head, which must include the terminating empty line.
func (p *parser) parse(head []byte, request *http.Request) error {
	if len(head) > p.cfg.MaxHeadSize {
		return status.ErrHeaderFieldsTooLarge
	}

	line, rest, _ := bytes.Cut(head, []byte("\r\n"))
	if err := p.parseRequestLine(line, request); err != nil {
		return err
	}

	for {
		line, rest, _ = bytes.Cut(rest, []byte("\r\n"))
		if len(line) == 0 {
			break
		}

		if request.Headers.Len() >= p.cfg.MaxNumber {
			return status.ErrTooManyHeaders
		}

		key, value, found := bytes.Cut(line, []byte(":"))
		if !found || len(key) == 0 || bytes.ContainsAny(key, " \t") {
			return status.ErrBadHeader
		}

		request.Headers.Add(uf.B2S(key), uf.B2S(bytes.Trim(value, " \t")))
	}

	return p.parseBodyHeaders(request)
}

func (p *parser) parseRequestLine(line []byte, request *http.Request) error {
	rawMethod, line, found := bytes.Cut(line, []byte(" "))
	if !found {
		return status.ErrBadRequestLine
	}

	target, proto, found := bytes.Cut(line, []byte(" "))
	if !found || len(target) == 0 || bytes.IndexByte(proto, ' ') != -1 {
		return status.ErrBadRequestLine
	}

	request.Method = method.Parse(uf.B2S(rawMethod))
	if request.Method == method.Unknown {
		return status.ErrMethodNotImplemented
	}

	switch {
	case string(proto) == "HTTP/1.1", string(proto) == "HTTP/1.0":
		request.Proto = uf.B2S(proto)
	case bytes.HasPrefix(proto, []byte("HTTP/")):
		return status.ErrHTTPVersionNotSupported
	default:
		return status.ErrBadRequestLine
	}

	if target[0] != '/' {
		return status.ErrBadRequestLine
	}

	path, query, _ := bytes.Cut(target, []byte("?"))
	request.Query = uf.B2S(query)

	decoded, err := decodePath(path, p.path[:0])
	if err != nil {
		return err
	}

	if len(decoded) > 0 && &decoded[0] != &path[0] {
		// the buffer was used, so keep it for the next request
		p.path = decoded
	}

	request.Path = uf.B2S(decoded)

	return nil
}

func (p *parser) parseBodyHeaders(request *http.Request) error {
	if encodings := request.Headers.Values("transfer-encoding"); len(encodings) > 0 {
		last := encodings[len(encodings)-1]
		if !strcomp.EqualFold(last, "chunked") || len(encodings) > 1 {
			return status.ErrUnsupportedEncoding
		}

		request.Chunked = true
		request.ContentLength = 0

		return nil
	}

	lengths := request.Headers.Values("content-length")
	if len(lengths) == 0 {
		return nil
	}

	length, err := strconv.ParseUint(lengths[0], 10, 63)
	if err != nil {
		return status.ErrBadContentLength
	}

	for _, other := range lengths[1:] {
		if other != lengths[0] {
			return status.ErrBadContentLength
		}
	}

	request.ContentLength = int64(length)

	return nil
}
