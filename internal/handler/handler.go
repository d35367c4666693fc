package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"mars_aio/internal/exchange"
	"mars_aio/internal/version"

	"go.uber.org/zap"
)

const versionPath = "/version"

// Default answers CORS preflights, reports the build version and echoes
// request bodies back to the caller.
type Default struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Default {
	if log == nil {
		log = zap.NewNop()
	}
	return &Default{log: log}
}

func (d *Default) Serve(ex *exchange.Exchange) error {
	if ex.RequestMethod() == http.MethodOptions {
		ex.SetStatusCode(http.StatusNoContent)
		return nil
	}

	if p := ex.RequestPath(); p != nil && p.Path() == versionPath {
		return d.serveVersion(ex)
	}

	if !hasBody(ex) {
		ex.SendText(http.StatusOK, `{"status":"ok"}`)
		return nil
	}

	if ct := ex.RequestHeader(exchange.HeaderContentType); ct != "" {
		ex.SetResponseHeader(exchange.HeaderContentType, ct)
	}
	return ex.SetResponseBody(exchange.Stream(ex.RequestBody()))
}

func (d *Default) serveVersion(ex *exchange.Exchange) error {
	out, err := json.Marshal(map[string]string{
		"version": version.GetShortVersion(),
		"commit":  version.Commit,
		"built":   version.BuildDate,
	})
	if err != nil {
		return err
	}
	d.log.Debug("Serving version", zap.ByteString("body", out))
	return ex.SetResponseBody(exchange.Bytes(out))
}

func hasBody(ex *exchange.Exchange) bool {
	if ex.RequestBody() == nil {
		return false
	}
	if te := ex.RequestHeader("Transfer-Encoding"); te != "" {
		return true
	}
	cl := strings.TrimSpace(ex.RequestHeader("Content-Length"))
	return cl != "" && cl != "0"
}
