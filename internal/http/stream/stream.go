package stream

import (
	"bufio"
	"errors"
	"io"
	"net"

	"mars_aio/internal/exchange"
	"mars_aio/internal/http/header"
	"mars_aio/internal/middleware"

	"go.uber.org/zap"
)

var (
	ErrBodyTooLarge     = errors.New("request body too large")
	ErrInvalidBodyFrame = errors.New("invalid request body framing")
)

// HTTP reads request heads and bodies from one connection and writes
// serialized exchanges back to it.
type HTTP interface {
	io.Closer
	RemoteAddr() net.Addr
	ReadRequest() (header.RequestHeader, io.Reader, error)
	WriteResponse(ex *exchange.Exchange) error
	UseResponseMiddleware(mw middleware.ResponseMiddleware)
	UseRequestMiddleware(mw middleware.RequestMiddleware)
	RequestMiddlewares() []middleware.RequestMiddleware
	ResponseMiddlewares() []middleware.ResponseMiddleware
	ApplyRequestMiddlewares(ex *exchange.Exchange) error
	ApplyResponseMiddlewares(ex *exchange.Exchange) error
}

type http struct {
	remoteAddr  net.Addr
	writer      io.Writer
	reader      *bufio.Reader
	maxBodySize int64
	log         *zap.Logger
	respMW      []middleware.ResponseMiddleware
	reqMW       []middleware.RequestMiddleware
}

func New(writer io.Writer, reader *bufio.Reader, remoteAddr net.Addr, maxBodySize int64, log *zap.Logger) HTTP {
	if log == nil {
		log = zap.NewNop()
	}
	return &http{
		remoteAddr:  remoteAddr,
		writer:      writer,
		reader:      reader,
		maxBodySize: maxBodySize,
		log:         log,
	}
}

func (hs *http) RemoteAddr() net.Addr {
	return hs.remoteAddr
}

func (hs *http) UseResponseMiddleware(mw middleware.ResponseMiddleware) {
	hs.respMW = append(hs.respMW, mw)
}

func (hs *http) UseRequestMiddleware(mw middleware.RequestMiddleware) {
	hs.reqMW = append(hs.reqMW, mw)
}

func (hs *http) RequestMiddlewares() []middleware.RequestMiddleware {
	return hs.reqMW
}

func (hs *http) ResponseMiddlewares() []middleware.ResponseMiddleware {
	return hs.respMW
}

func (hs *http) Close() error {
	if closer, ok := hs.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (hs *http) ApplyRequestMiddlewares(ex *exchange.Exchange) error {
	for _, m := range hs.RequestMiddlewares() {
		if err := m.HandleRequest(ex); err != nil {
			hs.log.Warn("request middleware failed", zap.Error(err))
			return err
		}
	}
	return nil
}

func (hs *http) ApplyResponseMiddlewares(ex *exchange.Exchange) error {
	for _, m := range hs.ResponseMiddlewares() {
		if err := m.HandleResponse(ex); err != nil {
			hs.log.Warn("response middleware failed", zap.Error(err))
			return err
		}
	}
	return nil
}
