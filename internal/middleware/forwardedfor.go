package middleware

import (
	"net"
)

type ForwardedFor struct {
	addr net.Addr
}

func NewForwardedFor(addr net.Addr) *ForwardedFor {
	return &ForwardedFor{addr: addr}
}

// HandleRequest appends the peer address to any X-Forwarded-For chain the
// client already sent.
func (ff *ForwardedFor) HandleRequest(req Request) error {
	host, _, err := net.SplitHostPort(ff.addr.String())
	if err != nil {
		return err
	}
	if prior := req.RequestHeader("X-Forwarded-For"); prior != "" {
		host = prior + ", " + host
	}
	req.SetRequestHeader("X-Forwarded-For", host)
	return nil
}
