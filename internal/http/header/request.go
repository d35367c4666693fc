package header

import (
	"bufio"
	"maps"
)

// NewRequest reads one request head from br, up to and including the empty
// line that ends it.
func NewRequest(br *bufio.Reader) (RequestHeader, error) {
	return parseHeadersFromReader(br)
}

func (req *requestHeader) Value(key string) string {
	val, _ := Lookup(req.headers, key)
	return val
}

// All returns a copy of the parsed header fields.
func (req *requestHeader) All() map[string]string {
	return maps.Clone(req.headers)
}

func (req *requestHeader) Method() string {
	return req.method
}

func (req *requestHeader) Path() string {
	return req.path
}

func (req *requestHeader) Version() string {
	return req.version
}
