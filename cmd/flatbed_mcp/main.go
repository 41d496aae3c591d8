package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/KyleBrandon/flatbed/pkg/rastermcp"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	// Define command line flags
	workDir := flag.String("workdir", "", "Directory the server may read PDFs from and write PDFs to")
	logLevel := flag.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	logFile := flag.String("log-file", "", "Log file path (optional, logs to stderr if not specified)")

	flag.Parse()

	// Load environment variables if available
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables and command line args")
	}

	// Get values from environment if not provided via flags
	if *workDir == "" {
		*workDir = os.Getenv("FLATBED_WORKDIR")
	}

	// Validate required parameters
	if *workDir == "" {
		fmt.Fprintf(os.Stderr, "Error: working directory is required\n")
		fmt.Fprintf(os.Stderr, "Use --workdir flag or set FLATBED_WORKDIR environment variable\n")
		os.Exit(1)
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

	// Create context
	ctx := context.Background()

	slog.Info("Starting Flatbed MCP Server",
		"workdir", *workDir,
		"log_level", *logLevel)

	rasterServer, err := rastermcp.NewRasterServer(ctx, *workDir)
	if err != nil {
		slog.Error("Failed to create raster server", "error", err)
		os.Exit(1)
	}

	slog.Info("Flatbed MCP Server initialized successfully")

	// Run the MCP server
	if err := server.ServeStdio(rasterServer.McpServer); err != nil {
		slog.Error("Flatbed MCP Server failed", "error", err)
		os.Exit(1)
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
