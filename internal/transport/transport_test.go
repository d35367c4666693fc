package transport

import (
	"time"

	"mars_aio/internal/config"

	"github.com/stretchr/testify/mock"
)

type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) HTTPPort() string                { return m.Called().String(0) }
func (m *MockConfig) BufferSize() int                 { return m.Called().Int(0) }
func (m *MockConfig) ReadTimeout() time.Duration      { return m.Called().Get(0).(time.Duration) }
func (m *MockConfig) MaxBodySize() int64              { return m.Called().Get(0).(int64) }
func (m *MockConfig) AcceptRate() float64             { return m.Called().Get(0).(float64) }
func (m *MockConfig) AcceptBurst() int                { return m.Called().Int(0) }
func (m *MockConfig) CrossOrigin() config.CrossOrigin { return m.Called().Get(0).(config.CrossOrigin) }
func (m *MockConfig) LogLevel() string                { return m.Called().String(0) }
func (m *MockConfig) LogFormat() string               { return m.Called().String(0) }
func (m *MockConfig) MetricsEnabled() bool            { return m.Called().Bool(0) }
func (m *MockConfig) MetricsPort() string             { return m.Called().String(0) }
func (m *MockConfig) PprofEnabled() bool              { return m.Called().Bool(0) }
func (m *MockConfig) PprofPort() string               { return m.Called().String(0) }

var testCrossOrigin = config.CrossOrigin{
	Origin:      "https://app.example.com",
	Methods:     "GET,POST",
	MaxAge:      "600",
	Headers:     "*",
	Credentials: "true",
}

// newMockConfig returns a config whose values can be overridden by
// registering expectations before calling it.
func newMockConfig(overrides func(m *MockConfig)) *MockConfig {
	m := &MockConfig{}
	if overrides != nil {
		overrides(m)
	}
	m.On("HTTPPort").Return("0").Maybe()
	m.On("BufferSize").Return(4096).Maybe()
	m.On("ReadTimeout").Return(2 * time.Second).Maybe()
	m.On("MaxBodySize").Return(int64(1 << 20)).Maybe()
	m.On("AcceptRate").Return(float64(0)).Maybe()
	m.On("AcceptBurst").Return(1).Maybe()
	m.On("CrossOrigin").Return(testCrossOrigin).Maybe()
	return m
}
