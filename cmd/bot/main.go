package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"device_monitor/internal/bot"
	"device_monitor/internal/config"
	"device_monitor/internal/device"
	"device_monitor/internal/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level, "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Bot.Token == "" {
		log.Fatalw("bot.token is not configured")
	}

	checker := bot.NewChecker(device.Config{
		Interface:  cfg.Device.Interface,
		Host:       cfg.Device.Host,
		Port:       cfg.Device.Port,
		SerialPort: cfg.Device.SerialPort,
		Baudrate:   cfg.Device.Baudrate,
		Timeout:    cfg.Device.Timeout(),
	}, log)

	b, err := bot.New(cfg.Bot.Token, checker, log)
	if err != nil {
		log.Fatalw("bot init failed", "err", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		log.Infow("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if err := b.Run(ctx); err != nil {
		log.Fatalw("bot stopped", "err", err)
	}
}
