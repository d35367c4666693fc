package stream

import (
	"net"
	"strconv"

	"mars_aio/internal/exchange"
	"mars_aio/internal/http/header"
)

// WriteResponse serializes the exchange with Content-Length framing.
// Responses to HEAD requests and bodiless status codes carry no payload.
func (hs *http) WriteResponse(ex *exchange.Exchange) error {
	resphf := header.NewResponse(responseVersion(ex.HTTPVersion()), ex.StatusCode())
	for key, val := range ex.ResponseHeaders() {
		resphf.Set(key, val)
	}

	// Framing is owned by the writer; values set by the application are dropped.
	resphf.Remove("Content-Length")
	resphf.Remove("Transfer-Encoding")

	payload := ex.Payload()
	if bodyless(resphf.Status()) {
		payload = nil
	} else {
		resphf.Set("Content-Length", strconv.Itoa(len(payload)))
	}
	if ex.RequestMethod() == "HEAD" {
		payload = nil
	}

	bufs := net.Buffers{resphf.Finalize()}
	if len(payload) > 0 {
		bufs = append(bufs, payload)
	}
	_, err := bufs.WriteTo(hs.writer)
	return err
}

func responseVersion(requestVersion string) string {
	if requestVersion == "HTTP/1.0" {
		return requestVersion
	}
	return "HTTP/1.1"
}

func bodyless(status int) bool {
	return (status >= 100 && status < 200) || status == 204 || status == 304
}
