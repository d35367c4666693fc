package header

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

func parseHeadersFromReader(br *bufio.Reader) (RequestHeader, error) {
	header := &requestHeader{
		headers: make(map[string]string, 16),
	}

	startLine, err := readLine(br)
	if err != nil {
		return nil, err
	}

	header.method, header.path, header.version, err = parseStartLine(startLine)
	if err != nil {
		return nil, err
	}

	for fields := 0; ; fields++ {
		line, err := readLine(br)
		if err != nil {
			return nil, err
		}
		if len(line) == 0 {
			break
		}
		if fields == MaxFields {
			return nil, ErrTooManyFields
		}

		key, value, err := parseField(line)
		if err != nil {
			return nil, err
		}
		header.add(key, value)
	}

	return header, nil
}

// readLine returns the next line without its CRLF. The slice is only valid
// until the next read from br.
func readLine(br *bufio.Reader) ([]byte, error) {
	line, err := br.ReadSlice('\n')
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

func parseStartLine(startLine []byte) (method, path, version string, err error) {
	parts := bytes.Split(startLine, []byte(" "))
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("%w: %q", ErrMalformedStartLine, startLine)
	}
	if len(parts[0]) == 0 || len(parts[1]) == 0 {
		return "", "", "", fmt.Errorf("%w: %q", ErrMalformedStartLine, startLine)
	}
	if !bytes.HasPrefix(parts[2], []byte("HTTP/1.")) {
		return "", "", "", fmt.Errorf("%w: unsupported version %q", ErrMalformedStartLine, parts[2])
	}
	return string(parts[0]), string(parts[1]), string(parts[2]), nil
}

// parseField splits a "Name: value" line. Names may not be empty or contain
// whitespace, and folded continuation lines are rejected.
func parseField(line []byte) (string, string, error) {
	if line[0] == ' ' || line[0] == '\t' {
		return "", "", fmt.Errorf("%w: folded line", ErrMalformedField)
	}
	colonIdx := bytes.IndexByte(line, ':')
	if colonIdx <= 0 {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedField, line)
	}
	key := line[:colonIdx]
	if bytes.ContainsAny(key, " \t") {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedField, key)
	}
	value := bytes.TrimSpace(line[colonIdx+1:])
	return string(key), string(value), nil
}

// add stores a field. A repeated name is joined onto the first spelling seen
// with ", ".
func (req *requestHeader) add(key, value string) {
	for k, v := range req.headers {
		if strings.EqualFold(k, key) {
			req.headers[k] = v + ", " + value
			return
		}
	}
	req.headers[key] = value
}
