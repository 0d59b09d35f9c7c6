package http1

import (
	"bytes"

	"github.com/indigo-web/lantern/http/status"
)

// decodePath translates percent-encoded sequences into their true form. The source is
// returned as it is if there's nothing to decode, otherwise the result is appended to buff.
func decodePath(src, buff []byte) ([]byte, error) {
	i := bytes.IndexByte(src, '%')
	if i == -1 {
		return src, nil
	}

	for ; i != -1; i = bytes.IndexByte(src, '%') {
		if i+2 >= len(src) {
			return nil, status.ErrURLDecoding
		}

		hi, ok1 := unhex(src[i+1])
		lo, ok2 := unhex(src[i+2])
		if !ok1 || !ok2 {
			return nil, status.ErrURLDecoding
		}

		buff = append(buff, src[:i]...)
		buff = append(buff, hi<<4|lo)
		src = src[i+3:]
	}

	return append(buff, src...), nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
