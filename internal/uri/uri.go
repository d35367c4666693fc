// Package uri parses the request target of an HTTP request line.
package uri

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrMalformed = errors.New("malformed request uri")

// URI is an origin-form or absolute-form request target. It is immutable
// once parsed.
type URI struct {
	raw   string
	path  string
	query url.Values
}

// Parse builds a URI from the raw request target. Targets containing control
// characters, invalid escapes or an empty string are rejected.
func Parse(raw string) (*URI, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty target", ErrMalformed)
	}

	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	query, err := parseQuery(u.RawQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return &URI{
		raw:   raw,
		path:  u.Path,
		query: query,
	}, nil
}

// parseQuery decodes rawQuery the way net/http does: a pair containing ';'
// is dropped instead of failing the whole target. Bad escapes still fail.
func parseQuery(rawQuery string) (url.Values, error) {
	values := make(url.Values)
	for rawQuery != "" {
		var pair string
		pair, rawQuery, _ = strings.Cut(rawQuery, "&")
		if pair == "" {
			continue
		}

		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, err
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, err
		}

		if strings.Contains(pair, ";") {
			continue
		}
		values[key] = append(values[key], value)
	}
	return values, nil
}

// Raw returns the target exactly as received.
func (u *URI) Raw() string {
	return u.raw
}

// Path returns the unescaped path component.
func (u *URI) Path() string {
	return u.path
}

// Query returns a copy of the decoded query parameters.
func (u *URI) Query() url.Values {
	out := make(url.Values, len(u.query))
	for k, v := range u.query {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Param returns the first value of the named query parameter.
func (u *URI) Param(name string) string {
	return u.query.Get(name)
}

func (u *URI) String() string {
	return u.raw
}
