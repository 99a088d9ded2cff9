package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alovak/cardflow-checkout/receiver"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using process environment")
	}

	config, err := receiver.ConfigFromEnv()
	if err != nil {
		logger.Error("loading config", "err", err)
		os.Exit(1)
	}

	app := receiver.NewApp(logger, config)
	if err := app.Start(); err != nil {
		logger.Error("starting app", "err", err)
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	app.Shutdown()
}
