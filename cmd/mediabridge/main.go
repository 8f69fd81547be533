package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"mediabridge/internal/bridge"
	"mediabridge/internal/config"
	"mediabridge/internal/htmlpage"
	"mediabridge/internal/port"
)

func main() {
	configPath := "./config.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	// Initialize basic logger for startup
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stderr) // stdout carries the outbound channel

	if err := godotenv.Load(".env"); err != nil {
		logger.Debug("No .env file found")
	}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Error loading configuration")
	}
	configureLogger(logger, cfg.Logging)

	// Open the document host
	pg, err := htmlpage.LoadFile(cfg.Page.DocumentPath)
	if err != nil {
		logger.WithError(err).WithField("document_path", cfg.Page.DocumentPath).Fatal("Error loading document")
	}

	loop := bridge.NewLoop()
	out := port.NewStdio(cfg.Source.Name, os.Stdout, logger)
	br := bridge.New(cfg, pg, out, loop, logger)

	loop.Do(br.Start)

	// Document rewrites become page navigations
	if cfg.Page.WatchForChanges {
		watcher, err := htmlpage.NewWatcher(pg, cfg.Page.DocumentPath, loop.Do, logger)
		if err != nil {
			logger.WithError(err).Fatal("Error creating document watcher")
		}
		if err := watcher.Start(); err != nil {
			logger.WithError(err).Fatal("Error starting document watcher")
		}
		defer watcher.Close()
	}

	loopDone := make(chan struct{})
	go func() {
		loop.Run()
		close(loopDone)
	}()

	// Inbound remote commands on stdin, one JSON object per line
	go func() {
		err := port.ReadCommands(os.Stdin, func(cmd port.Command) {
			loop.Do(func() { br.HandleCommand(cmd) })
		})
		if err != nil {
			logger.WithError(err).Error("Command channel closed with error")
		}
	}()

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("Received shutdown signal")
	loop.Do(br.Dispose)
	loop.Close()

	// Dispose emits the final quit message; wait for the loop to drain it
	// before the process exits.
	<-loopDone
}

// configureLogger applies the configured level and format.
func configureLogger(logger *logrus.Logger, cfg config.LoggingConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
}
