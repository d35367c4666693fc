package logger

import (
	"sort"
	"strings"
	"time"

	"mars_aio/internal/exchange"

	"go.uber.org/zap"
)

var sensitive = map[string]struct{}{
	"authorization":       {},
	"proxy-authorization": {},
	"cookie":              {},
	"set-cookie":          {},
	"x-api-key":           {},
}

func redactHeaderValue(k, v string) string {
	if v == "" {
		return ""
	}
	if _, ok := sensitive[strings.ToLower(k)]; ok {
		return "<redacted>"
	}
	return v
}

// SafeHeaders returns a compact, key-sorted representation of headers
// suitable for logging with sensitive values redacted.
func SafeHeaders(headers map[string]string) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+redactHeaderValue(k, headers[k]))
	}
	return strings.Join(parts, "; ")
}

// LogExchange logs a one-line summary of a served exchange.
func LogExchange(log *zap.Logger, ex *exchange.Exchange, remote string, elapsed time.Duration) {
	if log == nil || ex == nil {
		return
	}

	path := ""
	if p := ex.RequestPath(); p != nil {
		path = p.Path()
	}

	log.Info("exchange",
		zap.String("method", ex.RequestMethod()),
		zap.String("path", path),
		zap.String("version", ex.HTTPVersion()),
		zap.Int("status", ex.StatusCode()),
		zap.Int("bytes", len(ex.Payload())),
		zap.String("remote", remote),
		zap.Duration("elapsed", elapsed),
	)

	if ce := log.Check(zap.DebugLevel, "exchange headers"); ce != nil {
		ce.Write(
			zap.String("request", SafeHeaders(ex.RequestHeaders())),
			zap.String("response", SafeHeaders(ex.ResponseHeaders())),
		)
	}
}
