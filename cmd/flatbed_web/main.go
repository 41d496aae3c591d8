package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/KyleBrandon/flatbed/pkg/raster"
	"github.com/KyleBrandon/flatbed/pkg/webui"
	"github.com/joho/godotenv"
)

func main() {
	// Define command line flags
	addr := flag.String("addr", "", "Address to listen on (host:port)")
	maxUploadMB := flag.Int64("max-upload-mb", 0, "Maximum upload size in megabytes")
	logLevel := flag.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	logFile := flag.String("log-file", "", "Log file path (optional, logs to stderr if not specified)")

	flag.Parse()

	// Load environment variables if available
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables and command line args")
	}

	// Get values from environment if not provided via flags
	if *addr == "" {
		*addr = os.Getenv("FLATBED_ADDR")
	}
	if *addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			*addr = ":" + port
		}
	}
	if *addr == "" {
		*addr = "127.0.0.1:8080"
	}

	if *maxUploadMB == 0 {
		if v := os.Getenv("FLATBED_MAX_UPLOAD_MB"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: invalid FLATBED_MAX_UPLOAD_MB value %q: %v\n", v, err)
				os.Exit(1)
			}
			*maxUploadMB = n
		}
	}

	// Configure logging
	var logHandler slog.Handler
	if *logFile != "" {
		file, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		logHandler = slog.NewJSONHandler(file, &slog.HandlerOptions{
			Level: parseLogLevel(*logLevel),
		})
	} else {
		logHandler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: parseLogLevel(*logLevel),
		})
	}

	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	webServer := webui.NewServer(raster.NewDefaultManager(), *maxUploadMB)

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           webServer.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Starting Flatbed web server",
		"addr", *addr,
		"max_upload_mb", *maxUploadMB,
		"log_level", *logLevel)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Web server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("Shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("Web server shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
