package header

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// NewResponse starts a response head with the given protocol version and
// status code. Unknown status codes get an empty reason phrase.
func NewResponse(version string, status int) ResponseHeader {
	if version == "" {
		version = "HTTP/1.1"
	}

	startLine := make([]byte, 0, len(version)+32)
	startLine = append(startLine, version...)
	startLine = append(startLine, ' ')
	startLine = strconv.AppendInt(startLine, int64(status), 10)
	startLine = append(startLine, ' ')
	startLine = append(startLine, http.StatusText(status)...)

	return &responseHeader{
		status:    status,
		startLine: startLine,
		headers:   make(map[string]string, 16),
	}
}

func (resp *responseHeader) Set(key string, value string) {
	resp.headers[key] = value
}

// Remove deletes key under every spelling of its name.
func (resp *responseHeader) Remove(key string) {
	for k := range resp.headers {
		if strings.EqualFold(k, key) {
			delete(resp.headers, k)
		}
	}
}

func (resp *responseHeader) Status() int {
	return resp.status
}

// Finalize renders the head with keys in sorted order so the output is
// stable.
func (resp *responseHeader) Finalize() []byte {
	keys := make([]string, 0, len(resp.headers))
	size := len(resp.startLine) + 4
	for key, val := range resp.headers {
		keys = append(keys, key)
		size += len(key) + 2 + len(val) + 2
	}
	sort.Strings(keys)

	buf := make([]byte, 0, size)
	buf = append(buf, resp.startLine...)
	buf = append(buf, '\r', '\n')
	for _, key := range keys {
		buf = append(buf, key...)
		buf = append(buf, ':', ' ')
		buf = append(buf, resp.headers[key]...)
		buf = append(buf, '\r', '\n')
	}
	buf = append(buf, '\r', '\n')
	return buf
}
