package exchange

import (
	"bytes"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"testing/iotest"

	"mars_aio/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCrossOriginSource struct {
	mock.Mock
}

func (m *mockCrossOriginSource) CrossOrigin() config.CrossOrigin {
	return m.Called().Get(0).(config.CrossOrigin)
}

var testCrossOrigin = config.CrossOrigin{
	Origin:      "https://app.example.com",
	Methods:     "GET,POST",
	MaxAge:      "600",
	Headers:     "Content-Type,Authorization",
	Credentials: "true",
}

func newTestExchange(t *testing.T) *Exchange {
	t.Helper()
	source := new(mockCrossOriginSource)
	source.On("CrossOrigin").Return(testCrossOrigin)
	ex, err := New(source)
	require.NoError(t, err)
	t.Cleanup(ex.Release)
	return ex
}

func TestNewAppliesDefaultHeaders(t *testing.T) {
	source := new(mockCrossOriginSource)
	source.On("CrossOrigin").Return(testCrossOrigin).Once()

	ex, err := New(source)
	require.NoError(t, err)
	source.AssertExpectations(t)

	assert.Equal(t, map[string]string{
		HeaderAllowOrigin:      "https://app.example.com",
		HeaderAllowMethods:     "GET,POST",
		HeaderMaxAge:           "600",
		HeaderAllowHeaders:     "Content-Type,Authorization",
		HeaderAllowCredentials: "true",
		HeaderContentType:      DefaultContentType,
		HeaderVary:             DefaultVary,
	}, ex.ResponseHeaders())
	assert.Empty(t, ex.RequestHeaders())
}

func TestNewDefaults(t *testing.T) {
	ex := newTestExchange(t)

	assert.Equal(t, 200, ex.StatusCode())
	assert.Equal(t, "", ex.Text())
	assert.Nil(t, ex.ResponseBody())
	assert.False(t, ex.HasResponseBody())
	assert.Nil(t, ex.RequestPath())
	assert.Nil(t, ex.RequestBody())
	assert.Nil(t, ex.Connection())
	assert.Equal(t, []byte(""), ex.Payload())
}

func TestNewConfigurationError(t *testing.T) {
	tests := []struct {
		name   string
		source CrossOriginSource
	}{
		{
			name:   "nil source",
			source: nil,
		},
		{
			name: "empty origin",
			source: func() CrossOriginSource {
				co := testCrossOrigin
				co.Origin = ""
				m := new(mockCrossOriginSource)
				m.On("CrossOrigin").Return(co)
				return m
			}(),
		},
		{
			name: "malformed max age",
			source: func() CrossOriginSource {
				co := testCrossOrigin
				co.MaxAge = "ten"
				m := new(mockCrossOriginSource)
				m.On("CrossOrigin").Return(co)
				return m
			}(),
		},
		{
			name: "malformed credentials",
			source: func() CrossOriginSource {
				co := testCrossOrigin
				co.Credentials = "TRUE!"
				m := new(mockCrossOriginSource)
				m.On("CrossOrigin").Return(co)
				return m
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, err := New(tt.source)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
			assert.Nil(t, ex)
		})
	}
}

func TestNewDefault(t *testing.T) {
	t.Run("without process configuration", func(t *testing.T) {
		config.SetDefault(nil)
		ex, err := NewDefault()
		assert.True(t, errors.Is(err, ErrConfiguration))
		assert.Nil(t, ex)
	})

	t.Run("with process configuration", func(t *testing.T) {
		cfg, err := config.MustLoad()
		require.NoError(t, err)
		config.SetDefault(cfg)
		t.Cleanup(func() { config.SetDefault(nil) })

		ex, err := NewDefault()
		require.NoError(t, err)
		assert.Equal(t, cfg.CrossOrigin().Origin, ex.ResponseHeader(HeaderAllowOrigin))
	})
}

func TestSetResponseHeaderOverwrites(t *testing.T) {
	ex := newTestExchange(t)

	ex.SetResponseHeader("X", "1")
	ex.SetResponseHeader("X", "2")

	headers := ex.ResponseHeaders()
	assert.Equal(t, "2", headers["X"])
	assert.Len(t, headers, 8)

	ex.SetResponseHeader(HeaderContentType, "text/plain")
	assert.Equal(t, "text/plain", ex.ResponseHeader(HeaderContentType))
	assert.Len(t, ex.ResponseHeaders(), 8)
}

func TestSetRequestHeaderOverwrites(t *testing.T) {
	ex := newTestExchange(t)

	ex.SetRequestHeader("Accept", "text/html")
	ex.SetRequestHeader("Accept", "application/json")
	ex.SetRequestHeader("accept", "*/*")

	assert.Equal(t, map[string]string{
		"Accept": "application/json",
		"accept": "*/*",
	}, ex.RequestHeaders())
	assert.Equal(t, "application/json", ex.RequestHeader("Accept"))
	assert.Equal(t, "", ex.RequestHeader("Missing"))
}

func TestHeaderSnapshotsAreDetached(t *testing.T) {
	ex := newTestExchange(t)
	ex.SetRequestHeader("Host", "example.com")

	req := ex.RequestHeaders()
	req["Host"] = "evil.example.com"
	resp := ex.ResponseHeaders()
	delete(resp, HeaderAllowOrigin)

	assert.Equal(t, "example.com", ex.RequestHeader("Host"))
	assert.Equal(t, "https://app.example.com", ex.ResponseHeader(HeaderAllowOrigin))
}

func TestSendTextLeavesBodyUntouched(t *testing.T) {
	ex := newTestExchange(t)
	require.NoError(t, ex.SetResponseBody(Bytes([]byte(`{"id":1}`))))

	ex.SendText(404, "not found")

	assert.Equal(t, 404, ex.StatusCode())
	assert.Equal(t, "not found", ex.Text())
	assert.Equal(t, []byte(`{"id":1}`), ex.ResponseBody())
}

func TestStatusCodeLastWriteWins(t *testing.T) {
	ex := newTestExchange(t)
	ex.SetStatusCode(201)
	ex.SetStatusCode(418)
	assert.Equal(t, 418, ex.StatusCode())
	assert.Equal(t, "", ex.Text())
}

func TestPayloadPrecedence(t *testing.T) {
	ex := newTestExchange(t)

	ex.SendText(200, "text only")
	assert.Equal(t, []byte("text only"), ex.Payload())

	require.NoError(t, ex.SetResponseBody(Bytes([]byte("body wins"))))
	assert.Equal(t, []byte("body wins"), ex.Payload())

	ex.Release()
	assert.False(t, ex.HasResponseBody())
	assert.Equal(t, []byte("text only"), ex.Payload())
}

func TestSetResponseBodyBytes(t *testing.T) {
	ex := newTestExchange(t)

	src := []byte("first")
	require.NoError(t, ex.SetResponseBody(Bytes(src)))
	src[0] = 'F'
	assert.Equal(t, []byte("first"), ex.ResponseBody())

	require.NoError(t, ex.SetResponseBody(Bytes([]byte("second"))))
	assert.Equal(t, []byte("second"), ex.ResponseBody())

	require.NoError(t, ex.SetResponseBody(Bytes(nil)))
	assert.True(t, ex.HasResponseBody())
	assert.Empty(t, ex.ResponseBody())

	require.NoError(t, ex.SetResponseBody(nil))
	assert.True(t, ex.HasResponseBody())
	assert.Empty(t, ex.ResponseBody())
}

func TestSetResponseBodyStreamSizes(t *testing.T) {
	sizes := []int{0, 1, DrainChunkSize - 1, DrainChunkSize, DrainChunkSize + 1, 3*DrainChunkSize + 17}

	for _, n := range sizes {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i % 251)
		}

		readers := map[string]io.Reader{
			"plain":    bytes.NewReader(data),
			"one byte": iotest.OneByteReader(bytes.NewReader(data)),
			"half":     iotest.HalfReader(bytes.NewReader(data)),
			"data eof": iotest.DataErrReader(bytes.NewReader(data)),
		}

		for name, r := range readers {
			t.Run(name, func(t *testing.T) {
				ex := newTestExchange(t)
				require.NoError(t, ex.SetResponseBody(Stream(r)))
				assert.Equal(t, n, len(ex.ResponseBody()))
				assert.True(t, bytes.Equal(data, ex.ResponseBody()))
			})
		}
	}
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) { return 0, nil }

func TestSetResponseBodyStreamErrors(t *testing.T) {
	readErr := errors.New("connection reset")

	tests := []struct {
		name   string
		reader io.Reader
	}{
		{"immediate error", iotest.ErrReader(readErr)},
		{"error after data", io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(readErr))},
		{"timeout", iotest.TimeoutReader(strings.NewReader(strings.Repeat("x", 2*DrainChunkSize)))},
		{"nil reader", nil},
		{"no progress", zeroReader{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := newTestExchange(t)
			require.NoError(t, ex.SetResponseBody(Bytes([]byte("previous"))))

			err := ex.SetResponseBody(Stream(tt.reader))
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrIO))
			assert.Equal(t, []byte("previous"), ex.ResponseBody())
		})
	}
}

func TestSetRequestPath(t *testing.T) {
	ex := newTestExchange(t)

	require.NoError(t, ex.SetRequestPath("/a/b?x=1"))
	require.NotNil(t, ex.RequestPath())
	assert.Equal(t, "/a/b?x=1", ex.RequestPath().Raw())
	assert.Equal(t, "/a/b", ex.RequestPath().Path())
	assert.Equal(t, "1", ex.RequestPath().Param("x"))

	err := ex.SetRequestPath("/a\x7fb")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedURI))
	assert.Equal(t, "/a/b?x=1", ex.RequestPath().Raw())
}

func TestSetRequestPathMalformedOnFreshExchange(t *testing.T) {
	ex := newTestExchange(t)

	err := ex.SetRequestPath("/bad\x00path")
	assert.True(t, errors.Is(err, ErrMalformedURI))
	assert.Nil(t, ex.RequestPath())
}

func TestRequestFields(t *testing.T) {
	ex := newTestExchange(t)
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	body := strings.NewReader("payload")
	ex.SetConnection(server)
	ex.SetRequestBody(body)
	ex.SetRequestMethod("post")
	ex.SetHTTPVersion("HTTP/1.0")

	assert.Same(t, server, ex.Connection())
	assert.Equal(t, "post", ex.RequestMethod())
	assert.Equal(t, "HTTP/1.0", ex.HTTPVersion())

	got, err := io.ReadAll(ex.RequestBody())
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	got, err = io.ReadAll(ex.RequestBody())
	require.NoError(t, err)
	assert.Empty(t, got)
}
