package http1

import (
	"io"

	"github.com/indigo-web/chunkedbody"
	"github.com/indigo-web/lantern/config"
	"github.com/indigo-web/lantern/http"
	"github.com/indigo-web/lantern/http/status"
	"github.com/indigo-web/lantern/internal/transport"
)

var _ http.Retriever = new(body)

// body retrieves the message body from the connection, using either Content-Length or
// chunked transfer encoding. The limits are enforced in both cases.
type body struct {
	client   transport.Client
	parser   *chunkedbody.Parser
	maxSize  uint64
	chunked  bool
	left     uint64
	received uint64
	eof      bool
}

func newBody(client transport.Client, cfg config.Body) *body {
	return &body{
		client:  client,
		parser:  chunkedbody.NewParser(chunkedbody.DefaultSettings()),
		maxSize: cfg.MaxSize,
	}
}

func (b *body) init(request *http.Request) {
	b.chunked = request.Chunked
	b.left = uint64(request.ContentLength)
	b.received = 0
	b.eof = !b.chunked && b.left == 0
	if b.chunked {
		b.parser = chunkedbody.NewParser(chunkedbody.DefaultSettings())
	}
}

func (b *body) Retrieve() ([]byte, error) {
	if b.eof {
		return nil, io.EOF
	}

	var (
		piece []byte
		err   error
	)

	if b.chunked {
		piece, err = b.readChunked()
	} else {
		piece, err = b.readPlain()
	}

	if err == io.EOF {
		b.eof = true
	}

	return piece, err
}

func (b *body) readPlain() ([]byte, error) {
	if b.left > b.maxSize {
		return nil, status.ErrBodyTooLarge
	}

	data, err := b.client.Read()
	if err != nil {
		return nil, unexpected(err)
	}

	if uint64(len(data)) < b.left {
		b.left -= uint64(len(data))
		return data, nil
	}

	piece, extra := data[:b.left], data[b.left:]
	b.client.Pushback(extra)
	b.left = 0

	return piece, io.EOF
}

func (b *body) readChunked() ([]byte, error) {
	data, err := b.client.Read()
	if err != nil {
		return nil, unexpected(err)
	}

	chunk, extra, err := b.parser.Parse(data, false)
	switch err {
	case nil, io.EOF:
	default:
		return nil, status.NewError(status.BadRequest, "malformed chunked body: "+err.Error())
	}

	b.received += uint64(len(chunk))
	if b.received > b.maxSize {
		return nil, status.ErrBodyTooLarge
	}

	b.client.Pushback(extra)

	return chunk, err
}

// unexpected converts an EOF in the middle of a body, as it isn't a normal end of it.
func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}

	return err
}
