package stream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http/httputil"
	"strconv"
	"strings"

	"mars_aio/internal/http/header"
)

const maxTrailerLines = 32

var errTooManyTrailers = errors.New("too many trailer fields")

// ReadRequest parses the next request head and returns a reader positioned
// at the start of its body. The body reader must be drained before the next
// call.
func (hs *http) ReadRequest() (header.RequestHeader, io.Reader, error) {
	reqhf, err := header.NewRequest(hs.reader)
	if err != nil {
		return nil, nil, err
	}

	body, err := hs.bodyReader(reqhf)
	if err != nil {
		return reqhf, nil, err
	}
	return reqhf, body, nil
}

func (hs *http) bodyReader(reqhf header.RequestHeader) (io.Reader, error) {
	if isChunked(reqhf.Value("Transfer-Encoding")) {
		return &limitedReader{r: &chunkedReader{r: httputil.NewChunkedReader(hs.reader), br: hs.reader}, limit: hs.maxBodySize}, nil
	}

	raw := reqhf.Value("Content-Length")
	if raw == "" {
		return strings.NewReader(""), nil
	}

	length, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || length < 0 {
		return nil, fmt.Errorf("%w: content length %q", ErrInvalidBodyFrame, raw)
	}
	if hs.maxBodySize > 0 && length > hs.maxBodySize {
		return nil, fmt.Errorf("%w: %d bytes", ErrBodyTooLarge, length)
	}
	return io.LimitReader(hs.reader, length), nil
}

func isChunked(te string) bool {
	for _, part := range strings.Split(te, ",") {
		if strings.EqualFold(strings.TrimSpace(part), "chunked") {
			return true
		}
	}
	return false
}

// chunkedReader consumes the trailer section and its closing CRLF once the
// last chunk was read, leaving br at the start of the next request.
type chunkedReader struct {
	r    io.Reader
	br   *bufio.Reader
	done bool
}

func (cr *chunkedReader) Read(p []byte) (int, error) {
	if cr.done {
		return 0, io.EOF
	}
	n, err := cr.r.Read(p)
	if err != io.EOF {
		return n, err
	}
	cr.done = true
	if terr := skipTrailer(cr.br); terr != nil {
		return n, fmt.Errorf("%w: trailer: %v", ErrInvalidBodyFrame, terr)
	}
	return n, io.EOF
}

func skipTrailer(br *bufio.Reader) error {
	for i := 0; i <= maxTrailerLines; i++ {
		line, err := br.ReadSlice('\n')
		if err != nil {
			return err
		}
		if len(bytes.TrimRight(line, "\r\n")) == 0 {
			return nil
		}
	}
	return errTooManyTrailers
}

// limitedReader fails with ErrBodyTooLarge once more than limit bytes were
// read. A zero limit disables the check.
type limitedReader struct {
	r     io.Reader
	limit int64
	read  int64
}

func (lr *limitedReader) Read(p []byte) (int, error) {
	n, err := lr.r.Read(p)
	lr.read += int64(n)
	if lr.limit > 0 && lr.read > lr.limit {
		return n, ErrBodyTooLarge
	}
	return n, err
}
