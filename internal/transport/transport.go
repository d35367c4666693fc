package transport

import (
	"net"

	"mars_aio/internal/exchange"
)

type Transport interface {
	Listen() (net.Listener, error)
	Serve(listener net.Listener) error
}

// Handler fills in the response side of an exchange. A returned error
// replaces the response with a 500.
type Handler interface {
	Serve(ex *exchange.Exchange) error
}

type HandlerFunc func(ex *exchange.Exchange) error

func (f HandlerFunc) Serve(ex *exchange.Exchange) error {
	return f(ex)
}
