package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type config struct {
	httpPort string

	bufferSize  int
	readTimeout time.Duration
	maxBodySize int64

	acceptRate  float64
	acceptBurst int

	crossOrigin CrossOrigin

	logLevel  string
	logFormat string

	metricsEnabled bool
	metricsPort    string

	pprofEnabled bool
	pprofPort    string
}

// fileConfig is the optional YAML document named by CONFIG_FILE. Values found
// there replace the built-in defaults; environment variables still win.
type fileConfig struct {
	HTTPPort    string      `yaml:"http_port"`
	CrossOrigin CrossOrigin `yaml:"cross_origin"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

var defaultCrossOrigin = CrossOrigin{
	Origin:      "*",
	Methods:     "GET,POST,PUT,DELETE,OPTIONS",
	MaxAge:      "3600",
	Headers:     "*",
	Credentials: "true",
}

func parse() (*config, error) {
	fc, err := loadConfigFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}

	httpPort := getenv("HTTP_PORT", orDefault(fc.HTTPPort, "8080"))

	bufferSize, err := parseBufferSize()
	if err != nil {
		return nil, err
	}

	readTimeout, err := getenvInt("READ_TIMEOUT", 30)
	if err != nil {
		return nil, err
	}

	maxBodySize, err := getenvInt("MAX_BODY_SIZE", 10<<20)
	if err != nil {
		return nil, err
	}

	acceptRate, acceptBurst, err := parseAcceptRate()
	if err != nil {
		return nil, err
	}

	crossOrigin := parseCrossOrigin(fc.CrossOrigin)
	if err = crossOrigin.Validate(); err != nil {
		return nil, err
	}

	logLevel := strings.ToLower(getenv("LOG_LEVEL", orDefault(fc.Log.Level, "info")))
	logFormat := strings.ToLower(getenv("LOG_FORMAT", orDefault(fc.Log.Format, "json")))
	if logFormat != "json" && logFormat != "console" {
		return nil, fmt.Errorf("invalid LOG_FORMAT value")
	}

	metricsEnabled := getenvBool("METRICS_ENABLED", false)
	metricsPort := getenv("METRICS_PORT", "9090")

	pprofEnabled := getenvBool("PPROF_ENABLED", false)
	pprofPort := getenv("PPROF_PORT", "6060")

	return &config{
		httpPort:       httpPort,
		bufferSize:     bufferSize,
		readTimeout:    time.Duration(readTimeout) * time.Second,
		maxBodySize:    int64(maxBodySize),
		acceptRate:     acceptRate,
		acceptBurst:    acceptBurst,
		crossOrigin:    crossOrigin,
		logLevel:       logLevel,
		logFormat:      logFormat,
		metricsEnabled: metricsEnabled,
		metricsPort:    metricsPort,
		pprofEnabled:   pprofEnabled,
		pprofPort:      pprofPort,
	}, nil
}

// Validate reports whether every cross-origin value is present and well formed.
func (co CrossOrigin) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"origin", co.Origin},
		{"methods", co.Methods},
		{"max age", co.MaxAge},
		{"headers", co.Headers},
		{"credentials", co.Credentials},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("cross origin %s is empty", f.name)
		}
	}

	if age, err := strconv.Atoi(co.MaxAge); err != nil || age < 0 {
		return fmt.Errorf("invalid cross origin max age %q", co.MaxAge)
	}

	if co.Credentials != "true" && co.Credentials != "false" {
		return fmt.Errorf("invalid cross origin credentials %q", co.Credentials)
	}

	return nil
}

func loadEnvFile() error {
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load(".env")
	}
	return nil
}

func loadConfigFile(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config file: %w", err)
	}
	return fc, nil
}

func parseCrossOrigin(file CrossOrigin) CrossOrigin {
	return CrossOrigin{
		Origin:      getenv("CROSS_ORIGIN", orDefault(file.Origin, defaultCrossOrigin.Origin)),
		Methods:     getenv("CROSS_METHODS", orDefault(file.Methods, defaultCrossOrigin.Methods)),
		MaxAge:      getenv("CROSS_MAX_AGE", orDefault(file.MaxAge, defaultCrossOrigin.MaxAge)),
		Headers:     getenv("CROSS_HEADERS", orDefault(file.Headers, defaultCrossOrigin.Headers)),
		Credentials: getenv("CROSS_CREDENTIALS", orDefault(file.Credentials, defaultCrossOrigin.Credentials)),
	}
}

func parseAcceptRate() (float64, int, error) {
	raw := getenv("ACCEPT_RATE", "0")
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil || rate < 0 {
		return 0, 0, fmt.Errorf("invalid ACCEPT_RATE value")
	}

	burst, err := getenvInt("ACCEPT_BURST", 1)
	if err != nil {
		return 0, 0, err
	}
	if burst < 1 {
		return 0, 0, fmt.Errorf("invalid ACCEPT_BURST value")
	}

	return rate, burst, nil
}

func parseBufferSize() (int, error) {
	size, err := getenvInt("BUFFER_SIZE", 4096)
	if err != nil || size < 4096 || size > 1048576 {
		return 0, fmt.Errorf("invalid BUFFER_SIZE value")
	}
	return size, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val == "true"
}

func getenvInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s value", key)
	}
	return v, nil
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
