package exchange

import (
	"fmt"
	"io"

	"github.com/valyala/bytebufferpool"
)

// Body is the payload given to SetResponseBody: either a byte slice copied
// as is, or a stream drained until EOF.
type Body interface {
	fill(buf *bytebufferpool.ByteBuffer) error
}

type bytesBody []byte

type streamBody struct {
	r io.Reader
}

// Bytes returns a Body holding exactly b.
func Bytes(b []byte) Body {
	return bytesBody(b)
}

// Stream returns a Body that reads r to the end. The read happens
// synchronously inside SetResponseBody.
func Stream(r io.Reader) Body {
	return streamBody{r: r}
}

func (b bytesBody) fill(buf *bytebufferpool.ByteBuffer) error {
	_, err := buf.Write(b)
	return err
}

func (s streamBody) fill(buf *bytebufferpool.ByteBuffer) error {
	if s.r == nil {
		return fmt.Errorf("%w: nil stream", ErrIO)
	}

	chunk := make([]byte, DrainChunkSize)
	empty := 0
	for {
		n, err := s.r.Read(chunk)
		if n > 0 {
			empty = 0
			_, _ = buf.Write(chunk[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				return fmt.Errorf("%w: %v", ErrIO, io.ErrNoProgress)
			}
		}
	}
}

// SetResponseBody replaces the response body with body. When draining a
// stream fails the error wraps ErrIO and the previous body is kept.
// A nil body installs an empty one.
func (ex *Exchange) SetResponseBody(body Body) error {
	if body == nil {
		body = bytesBody(nil)
	}

	buf := bytebufferpool.Get()
	if err := body.fill(buf); err != nil {
		bytebufferpool.Put(buf)
		return err
	}

	ex.Release()
	ex.responseBody = buf
	return nil
}
