package stream

import (
	"io"
)

// BufferSize is the size of a single chunk read from a file and handed over to the
// connection at once.
const BufferSize = 131072

// Session is the state of a single file transfer. It's owned by whichever continuation
// is currently pending, so it's never accessed concurrently.
type Session struct {
	file     io.ReadCloser
	buff     []byte
	length   int64
	sent     int64
	released bool
}

// NewSession wraps a file of the given length. The session takes ownership of the file:
// it's closed once the transfer is over, no matter how it ended.
func NewSession(file io.ReadCloser, length int64) *Session {
	return &Session{
		file:   file,
		buff:   make([]byte, BufferSize),
		length: length,
	}
}

// Length returns the declared length of the file.
func (s *Session) Length() int64 {
	return s.length
}

// Sent returns the number of bytes already handed over to the connection.
func (s *Session) Sent() int64 {
	return s.sent
}

// Released tells whether the session has already released its resources.
func (s *Session) Released() bool {
	return s.released
}

// fill reads the next chunk. It tells whether the chunk is the last one, which is the
// case for every read that didn't fill the whole buffer.
func (s *Session) fill() (chunk []byte, last bool, err error) {
	window := s.buff
	if remaining := s.length - s.sent; remaining < int64(len(window)) {
		window = window[:remaining]
	}

	if len(window) == 0 {
		return nil, true, nil
	}

	n, err := io.ReadFull(s.file, window)
	switch err {
	case nil, io.EOF, io.ErrUnexpectedEOF:
	default:
		return nil, true, err
	}

	return window[:n], n < len(s.buff), nil
}

func (s *Session) release() error {
	if s.released {
		return nil
	}

	s.released = true
	s.buff = nil

	return s.file.Close()
}
