package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"device_monitor/internal/emulator"
	"device_monitor/internal/logger"
)

func main() {
	var (
		host  string
		port  int
		level string
	)
	flag.StringVar(&host, "host", "127.0.0.1", "address to bind")
	flag.IntVar(&port, "port", 10000, "port to listen on")
	flag.StringVar(&level, "log", logger.InfoLevel, "log level")
	flag.Parse()

	log, err := logger.New(level, "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	srv := emulator.New(emulator.DefaultResponses, log)
	if err := srv.Listen(net.JoinHostPort(host, strconv.Itoa(port))); err != nil {
		log.Fatalw("bind failed", "err", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		log.Infow("signal received, stopping", "signal", sig.String())
		cancel()
	}()

	log.Infow("commands supported", "commands", "GET_V, GET_A, GET_S")
	if err := srv.Serve(ctx); err != nil {
		log.Fatalw("emulator stopped", "err", err)
	}
}
