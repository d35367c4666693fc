// Package exchange holds the state of a single HTTP request/response cycle.
//
// An Exchange is created by the transport once a request head has been
// parsed, handed to application code which fills in the response side, and
// read back by the transport to write the response. It carries no locks and
// must only be used by the goroutine serving the connection.
package exchange

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"net"
	"net/http"

	"mars_aio/internal/config"
	"mars_aio/internal/http/header"
	"mars_aio/internal/uri"

	"github.com/valyala/bytebufferpool"
)

const (
	HeaderContentType      = "Content-Type"
	HeaderVary             = "Vary"
	HeaderAllowOrigin      = "Access-Control-Allow-Origin"
	HeaderAllowMethods     = "Access-Control-Allow-Methods"
	HeaderMaxAge           = "Access-Control-Max-Age"
	HeaderAllowHeaders     = "Access-Control-Allow-Headers"
	HeaderAllowCredentials = "Access-Control-Allow-Credentials"

	DefaultContentType = "application/json;charset=UTF-8"
	DefaultVary        = "Origin"

	// DrainChunkSize is the read size used when draining a stream body.
	DrainChunkSize = 1024

	maxEmptyReads = 100
)

var (
	ErrConfiguration = errors.New("exchange configuration error")
	ErrMalformedURI  = uri.ErrMalformed
	ErrIO            = errors.New("exchange io error")
)

// CrossOriginSource supplies the cross-origin settings applied to every new
// exchange. config.Config satisfies it.
type CrossOriginSource interface {
	CrossOrigin() config.CrossOrigin
}

type Exchange struct {
	conn           net.Conn
	requestPath    *uri.URI
	requestBody    io.Reader
	requestHeaders map[string]string
	requestMethod  string
	httpVersion    string

	responseHeaders map[string]string
	statusCode      int
	sendText        string
	responseBody    *bytebufferpool.ByteBuffer
}

// New creates an exchange whose response headers already carry the
// cross-origin settings of source plus the content type and vary defaults.
func New(source CrossOriginSource) (*Exchange, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: no cross origin configuration", ErrConfiguration)
	}

	co := source.CrossOrigin()
	if err := co.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	ex := &Exchange{
		requestHeaders:  make(map[string]string, 16),
		responseHeaders: make(map[string]string, 16),
		statusCode:      http.StatusOK,
	}

	ex.responseHeaders[HeaderContentType] = DefaultContentType
	ex.responseHeaders[HeaderVary] = DefaultVary
	ex.responseHeaders[HeaderAllowOrigin] = co.Origin
	ex.responseHeaders[HeaderAllowMethods] = co.Methods
	ex.responseHeaders[HeaderMaxAge] = co.MaxAge
	ex.responseHeaders[HeaderAllowHeaders] = co.Headers
	ex.responseHeaders[HeaderAllowCredentials] = co.Credentials

	return ex, nil
}

// NewDefault creates an exchange from the process-wide configuration.
func NewDefault() (*Exchange, error) {
	cfg := config.Default()
	if cfg == nil {
		return nil, fmt.Errorf("%w: process configuration not loaded", ErrConfiguration)
	}
	return New(cfg)
}

func (ex *Exchange) SetConnection(conn net.Conn) {
	ex.conn = conn
}

// Connection returns the borrowed connection. The exchange never closes it.
func (ex *Exchange) Connection() net.Conn {
	return ex.conn
}

// SetRequestPath parses raw as the request target. On failure the previous
// path is kept and the error wraps ErrMalformedURI.
func (ex *Exchange) SetRequestPath(raw string) error {
	path, err := uri.Parse(raw)
	if err != nil {
		return err
	}
	ex.requestPath = path
	return nil
}

func (ex *Exchange) RequestPath() *uri.URI {
	return ex.requestPath
}

func (ex *Exchange) SetRequestBody(body io.Reader) {
	ex.requestBody = body
}

// RequestBody returns the request payload stream. It can be consumed once.
func (ex *Exchange) RequestBody() io.Reader {
	return ex.requestBody
}

func (ex *Exchange) SetRequestMethod(method string) {
	ex.requestMethod = method
}

func (ex *Exchange) RequestMethod() string {
	return ex.requestMethod
}

func (ex *Exchange) SetHTTPVersion(version string) {
	ex.httpVersion = version
}

func (ex *Exchange) HTTPVersion() string {
	return ex.httpVersion
}

func (ex *Exchange) SetRequestHeader(name, value string) {
	ex.requestHeaders[name] = value
}

func (ex *Exchange) SetResponseHeader(name, value string) {
	ex.responseHeaders[name] = value
}

// RequestHeader returns a single request header value. The exact name is
// tried first, then a case-insensitive match.
func (ex *Exchange) RequestHeader(name string) string {
	val, _ := header.Lookup(ex.requestHeaders, name)
	return val
}

func (ex *Exchange) ResponseHeader(name string) string {
	val, _ := header.Lookup(ex.responseHeaders, name)
	return val
}

// RequestHeaders returns a snapshot of the request headers. Changes to the
// returned map do not affect the exchange.
func (ex *Exchange) RequestHeaders() map[string]string {
	return maps.Clone(ex.requestHeaders)
}

// ResponseHeaders returns a snapshot of the response headers. Use
// SetResponseHeader to change them.
func (ex *Exchange) ResponseHeaders() map[string]string {
	return maps.Clone(ex.responseHeaders)
}

func (ex *Exchange) StatusCode() int {
	return ex.statusCode
}

func (ex *Exchange) SetStatusCode(code int) {
	ex.statusCode = code
}

// SendText sets the status code and a short textual payload in one step.
// A response body set through SetResponseBody is left untouched.
func (ex *Exchange) SendText(status int, text string) {
	ex.statusCode = status
	ex.sendText = text
}

func (ex *Exchange) Text() string {
	return ex.sendText
}

// ResponseBody returns the buffered response body, or nil when none was
// set. The slice is owned by the exchange and is invalid after Release.
func (ex *Exchange) ResponseBody() []byte {
	if ex.responseBody == nil {
		return nil
	}
	return ex.responseBody.B
}

func (ex *Exchange) HasResponseBody() bool {
	return ex.responseBody != nil
}

// Payload returns the bytes to write as the response payload. A body set
// with SetResponseBody takes precedence over the SendText text.
func (ex *Exchange) Payload() []byte {
	if ex.responseBody != nil {
		return ex.responseBody.B
	}
	return []byte(ex.sendText)
}

// Release hands the response buffer back to the pool. The exchange must not
// be used afterwards.
func (ex *Exchange) Release() {
	if ex.responseBody != nil {
		bytebufferpool.Put(ex.responseBody)
		ex.responseBody = nil
	}
}
