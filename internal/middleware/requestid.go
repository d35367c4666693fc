package middleware

import (
	"fmt"

	"mars_aio/internal/random"
)

const (
	RequestIDHeader = "X-Request-Id"
	requestIDBytes  = 16
)

// RequestID tags each exchange with an identifier. A client supplied id is
// kept; otherwise a random one is generated. The id is echoed on the response.
type RequestID struct {
	random random.Random
}

func NewRequestID(r random.Random) *RequestID {
	if r == nil {
		r = random.New()
	}
	return &RequestID{random: r}
}

func (h *RequestID) HandleRequest(req Request) error {
	if req.RequestHeader(RequestIDHeader) != "" {
		return nil
	}
	id, err := h.random.Hex(requestIDBytes)
	if err != nil {
		return fmt.Errorf("generate request id: %w", err)
	}
	req.SetRequestHeader(RequestIDHeader, id)
	return nil
}

func (h *RequestID) HandleResponse(resp Response) error {
	if id := resp.RequestHeader(RequestIDHeader); id != "" {
		resp.SetResponseHeader(RequestIDHeader, id)
	}
	return nil
}
