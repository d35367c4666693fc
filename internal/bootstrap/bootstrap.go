package bootstrap

import (
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"mars_aio/internal/config"
	"mars_aio/internal/logger"
	"mars_aio/internal/metrics"
	"mars_aio/internal/transport"
	"mars_aio/internal/version"

	"go.uber.org/zap"
)

type Bootstrap struct {
	Config     config.Config
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	Handler    transport.Handler
	ErrChan    chan error
	SignalChan chan os.Signal
}

func New(conf config.Config, handler transport.Handler) (*Bootstrap, error) {
	log, err := logger.New(conf.LogLevel(), conf.LogFormat())
	if err != nil {
		return nil, err
	}

	config.SetDefault(conf)

	return &Bootstrap{
		Config:     conf,
		Logger:     log,
		Metrics:    metrics.New(),
		Handler:    handler,
		ErrChan:    make(chan error, 5),
		SignalChan: make(chan os.Signal, 1),
	}, nil
}

func startHTTPServer(conf config.Config, handler transport.Handler, log *zap.Logger, recorder metrics.Recorder, errChan chan<- error) {
	httpserver := transport.NewHTTPServer(conf, handler, log, recorder)
	ln, err := httpserver.Listen()
	if err != nil {
		errChan <- fmt.Errorf("failed to start http server: %w", err)
		return
	}
	if err = httpserver.Serve(ln); err != nil {
		errChan <- fmt.Errorf("error when serving http server: %w", err)
	}
}

func startMetrics(metricsPort string, m *metrics.Metrics, log *zap.Logger, errChan chan<- error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	addr := fmt.Sprintf(":%s", metricsPort)
	log.Info("Starting metrics server", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errChan <- fmt.Errorf("metrics server error: %w", err)
	}
}

func startPprof(pprofPort string, log *zap.Logger, errChan chan<- error) {
	pprofAddr := fmt.Sprintf("localhost:%s", pprofPort)
	log.Info("Starting pprof server", zap.String("url", fmt.Sprintf("http://%s/debug/pprof/", pprofAddr)))
	if err := http.ListenAndServe(pprofAddr, nil); err != nil {
		errChan <- fmt.Errorf("pprof server error: %v", err)
	}
}

func (b *Bootstrap) Run() error {
	defer func() {
		_ = b.Logger.Sync()
	}()

	// Exchanges read cross-origin settings from the process-wide configuration.
	config.SetDefault(b.Config)

	signal.Notify(b.SignalChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(b.SignalChan)

	var recorder metrics.Recorder = metrics.Nop
	if b.Config.MetricsEnabled() {
		recorder = b.Metrics
		go startMetrics(b.Config.MetricsPort(), b.Metrics, b.Logger, b.ErrChan)
	}

	go startHTTPServer(b.Config, b.Handler, b.Logger, recorder, b.ErrChan)

	if b.Config.PprofEnabled() {
		go startPprof(b.Config.PprofPort(), b.Logger, b.ErrChan)
	}

	b.Logger.Info("All services started successfully", zap.String("version", version.GetVersion()))

	select {
	case err := <-b.ErrChan:
		return fmt.Errorf("service error: %w", err)
	case sig := <-b.SignalChan:
		b.Logger.Info("Received signal, initiating graceful shutdown", zap.Stringer("signal", sig))
		return nil
	}
}
