package transport

import (
	"context"
	"errors"
	"net"

	"mars_aio/internal/config"
	"mars_aio/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type httpServer struct {
	handler *httpHandler
	port    string
	limiter *rate.Limiter
	log     *zap.Logger
}

func NewHTTPServer(conf config.Config, handler Handler, log *zap.Logger, recorder metrics.Recorder) Transport {
	if log == nil {
		log = zap.NewNop()
	}

	var limiter *rate.Limiter
	if conf.AcceptRate() > 0 {
		limiter = rate.NewLimiter(rate.Limit(conf.AcceptRate()), conf.AcceptBurst())
	}

	return &httpServer{
		handler: newHTTPHandler(conf, handler, log, recorder),
		port:    conf.HTTPPort(),
		limiter: limiter,
		log:     log,
	}
}

func (ht *httpServer) Listen() (net.Listener, error) {
	return net.Listen("tcp", ":"+ht.port)
}

func (ht *httpServer) Serve(listener net.Listener) error {
	ht.log.Info("HTTP server is starting", zap.String("addr", listener.Addr().String()))
	for {
		if ht.limiter != nil {
			if err := ht.limiter.Wait(context.Background()); err != nil {
				return err
			}
		}

		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			ht.log.Warn("Error accepting connection", zap.Error(err))
			continue
		}

		go ht.handler.handler(conn)
	}
}
