package header

import (
	"errors"
	"strings"
)

// MaxFields bounds the number of header lines accepted in one request head.
const MaxFields = 100

var (
	ErrMalformedStartLine = errors.New("malformed request line")
	ErrMalformedField     = errors.New("malformed header field")
	ErrTooManyFields      = errors.New("too many header fields")
)

// RequestHeader is a parsed request head. It is read only.
type RequestHeader interface {
	Value(key string) string
	All() map[string]string
	Method() string
	Path() string
	Version() string
}

type requestHeader struct {
	method  string
	path    string
	version string
	headers map[string]string
}

type ResponseHeader interface {
	Set(key string, value string)
	Remove(key string)
	Status() int
	Finalize() []byte
}

type responseHeader struct {
	status    int
	startLine []byte
	headers   map[string]string
}

// Lookup returns the value stored under key, falling back to a
// case-insensitive match when the exact spelling is absent.
func Lookup(headers map[string]string, key string) (string, bool) {
	if val, ok := headers[key]; ok {
		return val, true
	}
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}
