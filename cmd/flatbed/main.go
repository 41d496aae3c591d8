package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KyleBrandon/flatbed/pkg/raster"
	"github.com/joho/godotenv"
)

type cliConfig struct {
	inputPath  string
	outputPath string
	dpi        int
	quality    int
	format     string
	engine     string
	workers    int
	logLevel   string
	logFile    string
}

func parseArgs(args []string, output io.Writer) (cliConfig, error) {
	cfg := cliConfig{}

	fs := flag.NewFlagSet("flatbed", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&cfg.dpi, "dpi", raster.DefaultDPI, "Raster resolution in dots per inch")
	fs.IntVar(&cfg.quality, "quality", raster.DefaultJPEGQuality, "JPEG quality (1-100)")
	fs.StringVar(&cfg.format, "format", "jpeg", "Page image format (jpeg or lossless)")
	fs.StringVar(&cfg.engine, "engine", "", "Render engine (default mupdf)")
	fs.IntVar(&cfg.workers, "workers", 0, "Render workers (default: number of CPUs)")
	fs.StringVar(&cfg.logLevel, "log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	fs.StringVar(&cfg.logFile, "log-file", "", "Log file path (optional, logs to stderr if not specified)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: flatbed [options] <input.pdf> <output.pdf>\n\n")
		fmt.Fprintf(fs.Output(), "Rasterize every page of a PDF and reassemble the images into a new\nPDF with identical page geometry.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	rest := fs.Args()
	if len(rest) != 2 {
		fmt.Fprintf(fs.Output(), "Error: expected <input.pdf> and <output.pdf> arguments\n\n")
		fs.Usage()
		return cfg, fmt.Errorf("expected 2 arguments, got %d", len(rest))
	}
	cfg.inputPath = rest[0]
	cfg.outputPath = rest[1]

	return cfg, nil
}

func run(ctx context.Context, cfg cliConfig) error {
	spec := raster.Spec{DPI: cfg.dpi}
	if err := spec.Validate(); err != nil {
		return err
	}

	encoder, err := raster.EncoderFor(cfg.format, cfg.quality)
	if err != nil {
		return err
	}

	engine, err := raster.NewDefaultManager().GetEngine(cfg.engine)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(cfg.inputPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", cfg.inputPath, err)
	}

	doc, err := raster.Load(data)
	if err != nil {
		return err
	}

	slog.Info("Rasterizing document",
		"input", cfg.inputPath,
		"pages", doc.PageCount(),
		"dpi", spec.DPI,
		"format", encoder.Format())

	out, err := raster.ConvertDocument(ctx, doc, spec, raster.Options{
		Engine:  engine,
		Encoder: encoder,
		Workers: cfg.workers,
		OnProgress: func(done, total int) {
			slog.Debug("Page rasterized", "done", done, "total", total)
		},
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(cfg.outputPath, out, 0644); err != nil {
		return &raster.WriteError{Err: err}
	}

	fmt.Printf("Rasterized %d pages at %d DPI into %s (%d bytes)\n",
		doc.PageCount(), spec.DPI, cfg.outputPath, len(out))
	return nil
}

func main() {
	cfg, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	// Load environment variables if available
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables and command line args")
	}

	// Configure logging
	var logHandler slog.Handler
	if cfg.logFile != "" {
		file, err := os.OpenFile(cfg.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		logHandler = slog.NewJSONHandler(file, &slog.HandlerOptions{
			Level: parseLogLevel(cfg.logLevel),
		})
	} else {
		logHandler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: parseLogLevel(cfg.logLevel),
		})
	}
	slog.SetDefault(slog.New(logHandler))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
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
