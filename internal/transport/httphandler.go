package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"mars_aio/internal/config"
	"mars_aio/internal/exchange"
	"mars_aio/internal/http/header"
	"mars_aio/internal/http/stream"
	"mars_aio/internal/logger"
	"mars_aio/internal/metrics"
	"mars_aio/internal/middleware"
	"mars_aio/internal/random"

	"go.uber.org/zap"
)

var badRequestResponse = []byte("HTTP/1.1 400 Bad Request\r\n" +
	"Content-Length: 0\r\n" +
	"Connection: close\r\n" +
	"\r\n")

type httpHandler struct {
	config    config.Config
	app       Handler
	log       *zap.Logger
	recorder  metrics.Recorder
	requestID *middleware.RequestID
}

func newHTTPHandler(conf config.Config, handler Handler, log *zap.Logger, recorder metrics.Recorder) *httpHandler {
	if log == nil {
		log = zap.NewNop()
	}
	if recorder == nil {
		recorder = metrics.Nop
	}
	return &httpHandler{
		config:    conf,
		app:       handler,
		log:       log,
		recorder:  recorder,
		requestID: middleware.NewRequestID(random.New()),
	}
}

func (hh *httpHandler) handler(conn net.Conn) {
	hh.recorder.ConnectionOpened()
	defer hh.recorder.ConnectionClosed()

	br := bufio.NewReaderSize(conn, hh.config.BufferSize())
	hw := stream.New(conn, br, conn.RemoteAddr(), hh.config.MaxBodySize(), hh.log)
	defer hh.closeConnection(hw)
	hw.UseRequestMiddleware(hh.requestID)
	hw.UseRequestMiddleware(middleware.NewForwardedFor(hw.RemoteAddr()))
	hw.UseResponseMiddleware(hh.requestID)
	hw.UseResponseMiddleware(middleware.NewServerFingerprint())

	for {
		if timeout := hh.config.ReadTimeout(); timeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(timeout))
		}

		keepAlive, err := hh.serveExchange(conn, hw)
		if err != nil {
			if !isClosedOrTimeout(err) {
				hh.log.Debug("Connection ended with error", zap.Error(err))
			}
			return
		}
		if !keepAlive {
			return
		}
	}
}

func (hh *httpHandler) closeConnection(c io.Closer) {
	err := c.Close()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		hh.log.Warn("Error closing connection", zap.Error(err))
	}
}

func (hh *httpHandler) badRequest(conn net.Conn) error {
	if _, err := conn.Write(badRequestResponse); err != nil {
		return err
	}
	return nil
}

// serveExchange reads one request, runs it through the handler and flushes
// the response. It reports whether the connection may serve another request.
func (hh *httpHandler) serveExchange(conn net.Conn, hw stream.HTTP) (bool, error) {
	reqhf, body, readErr := hw.ReadRequest()
	if reqhf == nil {
		if !isClosedOrTimeout(readErr) {
			_ = hh.badRequest(conn)
		}
		return false, readErr
	}
	start := time.Now()

	ex, err := exchange.NewDefault()
	if err != nil {
		hh.log.Error("Failed to create exchange", zap.Error(err))
		return false, err
	}
	defer ex.Release()

	ex.SetConnection(conn)
	ex.SetRequestMethod(reqhf.Method())
	ex.SetHTTPVersion(reqhf.Version())
	for key, val := range reqhf.All() {
		ex.SetRequestHeader(key, val)
	}

	keepAlive := wantsKeepAlive(reqhf)

	// Runs before any rejection so error responses carry the request id too.
	// A failing request middleware only loses its header.
	_ = hw.ApplyRequestMiddlewares(ex)

	switch {
	case readErr != nil:
		keepAlive = false
		hh.rejectBody(ex, readErr)
	default:
		ex.SetRequestBody(body)
		if err = ex.SetRequestPath(reqhf.Path()); err != nil {
			keepAlive = false
			ex.SendText(http.StatusBadRequest, errorBody("malformed request uri"))
			break
		}
		hh.dispatch(ex)
	}

	if body != nil {
		if _, err = io.Copy(io.Discard, body); err != nil {
			keepAlive = false
		}
	}

	if keepAlive {
		if reqhf.Version() == "HTTP/1.0" {
			ex.SetResponseHeader("Connection", "keep-alive")
		}
	} else {
		ex.SetResponseHeader("Connection", "close")
	}

	_ = hw.ApplyResponseMiddlewares(ex)

	if err = hw.WriteResponse(ex); err != nil {
		return false, fmt.Errorf("write response: %w", err)
	}

	elapsed := time.Since(start)
	hh.recorder.ObserveExchange(ex.RequestMethod(), ex.StatusCode(), len(ex.Payload()), elapsed)
	logger.LogExchange(hh.log, ex, hw.RemoteAddr().String(), elapsed)

	return keepAlive, nil
}

func (hh *httpHandler) rejectBody(ex *exchange.Exchange, err error) {
	if errors.Is(err, stream.ErrBodyTooLarge) {
		ex.SendText(http.StatusRequestEntityTooLarge, errorBody("request body too large"))
		return
	}
	ex.SendText(http.StatusBadRequest, errorBody("invalid request body"))
}

// dispatch runs the application handler. Errors and panics turn into a 500
// whose payload replaces anything the handler buffered.
func (hh *httpHandler) dispatch(ex *exchange.Exchange) {
	defer func() {
		if r := recover(); r != nil {
			hh.log.Error("Handler panicked", zap.Any("panic", r))
			hh.internalError(ex)
		}
	}()

	if hh.app == nil {
		ex.SendText(http.StatusNotFound, errorBody("not found"))
		return
	}

	if err := hh.app.Serve(ex); err != nil {
		if errors.Is(err, exchange.ErrIO) {
			hh.log.Warn("Failed to build response body", zap.Error(err))
		} else {
			hh.log.Error("Handler failed", zap.Error(err))
		}
		hh.internalError(ex)
	}
}

func (hh *httpHandler) internalError(ex *exchange.Exchange) {
	ex.SetStatusCode(http.StatusInternalServerError)
	_ = ex.SetResponseBody(exchange.Bytes([]byte(errorBody("internal server error"))))
}

func wantsKeepAlive(reqhf header.RequestHeader) bool {
	conn := strings.ToLower(strings.TrimSpace(reqhf.Value("Connection")))
	switch reqhf.Version() {
	case "HTTP/1.1":
		return conn != "close"
	case "HTTP/1.0":
		return conn == "keep-alive"
	default:
		return false
	}
}

func isClosedOrTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func errorBody(msg string) string {
	return `{"error":"` + msg + `"}`
}
