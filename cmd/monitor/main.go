package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"device_monitor/internal/config"
	"device_monitor/internal/device"
	"device_monitor/internal/handlers"
	"device_monitor/internal/logger"
	"device_monitor/internal/logstore"
	"device_monitor/internal/monitor"
	"device_monitor/internal/server"
)

const shutdownGrace = 10 * time.Second

func main() {
	var (
		configPath string
		testMode   bool
	)
	flag.StringVar(&configPath, "config", "", "path to configuration file")
	flag.BoolVar(&testMode, "test", false, "fetch a single reading, print it and exit")
	flag.Parse()

	// load configuration before the logger exists
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	client, err := device.NewClient(deviceConfig(cfg), log)
	if err != nil {
		log.Fatalw("device client init failed", "err", err)
	}

	if testMode {
		os.Exit(runTest(client, log))
	}

	store := logstore.New(
		cfg.Monitoring.LogFile,
		cfg.Monitoring.MaxLogSizeBytes(),
		cfg.Monitoring.MaxLogFiles,
	)
	mon := monitor.New(client, store, log, monitor.Config{
		Period: cfg.Monitoring.Period(),
	})

	// context for the loop and the HTTP server
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &server.Server{}
	if cfg.HTTP.Enabled {
		runHTTPServer(srv, cfg.HTTP.Port, mon, store, log)
	}

	go waitForShutdown(cancel, log)

	runErr := mon.Run(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("http server shutdown failed", "err", err)
	}

	if runErr != nil {
		// Confirmed lost connection: exit non-zero so the supervisor restarts us.
		os.Exit(1)
	}
}

// deviceConfig maps the configuration surface onto the transport selector.
func deviceConfig(cfg *config.Config) device.Config {
	return device.Config{
		Interface:  cfg.Device.Interface,
		Host:       cfg.Device.Host,
		Port:       cfg.Device.Port,
		SerialPort: cfg.Device.SerialPort,
		Baudrate:   cfg.Device.Baudrate,
		Timeout:    cfg.Device.Timeout(),
	}
}

// runTest performs a single connect/fetch/disconnect and prints the reading.
func runTest(client *device.Client, log *logger.Logger) int {
	if err := client.Connect(); err != nil {
		log.Errorw("connect failed", "err", err)
		return 1
	}
	defer client.Disconnect()

	reading, err := client.FetchReading()
	if err != nil {
		log.Errorw("fetch failed", "err", err)
		return 1
	}

	data, err := json.MarshalIndent(reading, "", "  ")
	if err != nil {
		log.Errorw("encode failed", "err", err)
		return 1
	}
	fmt.Println(string(data))
	return 0
}

// runHTTPServer starts the status API in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, mon *monitor.Monitor, store *logstore.Store, log *logger.Logger) {
	apiHandler := handlers.NewHandler(mon, store, log)
	go func() {
		log.Infow("status api listening", "port", port)
		if err := srv.Run(port, apiHandler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("status api stopped", "err", err)
		}
	}()
}

// waitForShutdown cancels the run context on SIGINT/SIGTERM; the monitor
// finishes its in-flight cycle before exiting.
func waitForShutdown(cancel context.CancelFunc, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Infow("signal received, shutting down", "signal", sig.String())
	cancel()
}
