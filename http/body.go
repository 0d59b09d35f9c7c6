package http

import (
	"io"

	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
)

type Retriever interface {
	// Retrieve reads and returns a piece of body available for processing. The last piece
	// may come together with io.EOF.
	Retrieve() ([]byte, error)
}

type retriever = Retriever

type Body struct {
	retriever
	buff    []byte
	pending []byte
	error   error
}

func NewBody(impl Retriever) *Body {
	return &Body{
		retriever: impl,
	}
}

// Init sets the source of the next request's body and resets everything left from the
// previous one.
func (b *Body) Init(impl Retriever) {
	b.retriever = impl
	b.buff = b.buff[:0]
	b.pending = nil
	b.error = nil
}

// Bytes returns the whole body at once. The returned slice is valid until the request
// is over.
func (b *Body) Bytes() ([]byte, error) {
	if b.error == io.EOF {
		return b.buff, nil
	}

	if b.error != nil {
		return nil, b.error
	}

	b.buff = append(b.buff, b.pending...)
	b.pending = nil

	for {
		var data []byte
		data, b.error = b.Retrieve()
		b.buff = append(b.buff, data...)
		switch b.error {
		case nil:
		case io.EOF:
			// keep the body readable via Read as well
			b.pending = b.buff
			return b.buff, nil
		default:
			return nil, b.error
		}
	}
}

// String returns the whole body at once as a string.
func (b *Body) String() (string, error) {
	bytes, err := b.Bytes()
	return uf.B2S(bytes), err
}

// Read implements the io.Reader interface.
func (b *Body) Read(into []byte) (n int, err error) {
	if len(b.pending) == 0 && b.error == nil {
		b.pending, b.error = b.Retrieve()
	}

	n = copy(into, b.pending)
	b.pending = b.pending[n:]

	if len(b.pending) == 0 && b.error != nil {
		err = b.error
	}

	return n, err
}

// JSON reads the whole body and unmarshalls it into the model. Syntax and type errors are
// returned as they are, so their text can be shown to the client.
func (b *Body) JSON(model any) error {
	data, err := b.Bytes()
	if err != nil {
		return err
	}

	iterator := json.ConfigDefault.BorrowIterator(data)
	iterator.ReadVal(model)
	err = iterator.Error
	json.ConfigDefault.ReturnIterator(iterator)

	if err == io.EOF {
		// an empty body is a syntax error for us, not the end of a stream
		return io.ErrUnexpectedEOF
	}

	return err
}

// Discard reads the rest of the body (if any). If no error was encountered, nil is returned.
func (b *Body) Discard() error {
	b.pending = nil

	for b.error == nil {
		_, b.error = b.Retrieve()
	}

	if b.error == io.EOF {
		return nil
	}

	return b.error
}

type nopRetriever struct{}

func (nopRetriever) Retrieve() ([]byte, error) {
	return nil, io.EOF
}
