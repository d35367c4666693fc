package main

import (
	"fmt"
	"os"

	"mars_aio/internal/bootstrap"
	"mars_aio/internal/config"
	"mars_aio/internal/handler"

	"go.uber.org/zap"
)

func main() {
	conf, err := config.MustLoad()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %s\n", err)
		os.Exit(1)
	}

	app, err := bootstrap.New(conf, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %s\n", err)
		os.Exit(1)
	}
	app.Handler = handler.New(app.Logger)

	if err = app.Run(); err != nil {
		app.Logger.Fatal("Application error", zap.Error(err))
	}
}
