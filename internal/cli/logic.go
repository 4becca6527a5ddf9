package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/crlfstat/internal/config"
	"github.com/idelchi/crlfstat/internal/crlfstat"
)

func newLogger(debug bool, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func logic(ctx context.Context, cfg *config.Config, path string, stdout, stderr io.Writer) error {
	output := strings.ToLower(cfg.Output)

	enableProgress := output != "json" &&
		!cfg.Debug &&
		!cfg.Verbose &&
		isatty.IsTerminal(os.Stderr.Fd())

	opt, err := cfg.Options(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	opt.Logger = newLogger(cfg.Debug, stderr)

	// Verbose lines and error lines come from several walker goroutines.
	var mu sync.Mutex

	mixedColor := color.New(color.FgYellow)
	errorColor := color.New(color.FgRed)

	hooks := crlfstat.Hooks{
		FileError: func(file string, err error) {
			mu.Lock()
			defer mu.Unlock()

			errorColor.Fprintf(stderr, "Error! '%s' cannot be opened: %v\n", file, err) //nolint:errcheck // Best-effort diagnostic
		},
	}

	if cfg.Verbose {
		hooks.MixedEOL = func(file string) {
			mu.Lock()
			defer mu.Unlock()

			mixedColor.Fprintf(stdout, "Mixed line endings: %s\n", file) //nolint:errcheck // Best-effort diagnostic
		}
	}

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(os.Stderr, "\033[?25l")
		defer fmt.Fprint(os.Stderr, "\033[?25h")

		hooks.Progress = func(files, bytes int64) {
			msg := fmt.Sprintf("Scanning… %s files, %s", humanize.Comma(files), ibytes(bytes))
			fmt.Fprintf(os.Stderr, "\r\033[2K%s\r", msg)
		}
	}

	stats, err := crlfstat.Run(ctx, opt, hooks)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(os.Stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	switch output {
	case "json":
		err = PrintJSON(stats, stdout)
	case "table":
		err = PrintTable(stats, stdout)
	default:
		err = PrintText(stats, stdout)
	}

	if err != nil {
		return err
	}

	if cfg.Strict && stats.HasMixed() {
		return fmt.Errorf("%w: %d file(s) with mixed line endings, %d with mixed indentation",
			ErrMixedFound, stats.MixedEOLFiles, stats.MixedIndentFiles)
	}

	return nil
}
