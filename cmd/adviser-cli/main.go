// Command adviser-cli queries the humidity adviser services from the shell
// and prints indented JSON on stdout.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/humidity-adviser/internal/app"
	"github.com/couchcryptid/humidity-adviser/internal/config"
	"github.com/couchcryptid/humidity-adviser/internal/domain"
	"github.com/couchcryptid/humidity-adviser/internal/observability"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

type Options struct {
	Verbose bool `long:"verbose" short:"v" description:"log provider calls on stderr"`
}

var opts = &Options{}

var parser = flags.NewParser(opts, flags.Default)

var stdout io.Writer = os.Stdout

// services loads the configuration and wires the service stack.
func services() (*app.Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := slog.LevelError
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return app.NewServices(cfg, observability.NewMetrics(), logger), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseDate reads a YYYY-MM-DD date, defaulting to today.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return domain.Today(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

func Execute() error {
	_ = godotenv.Load()
	if _, err := parser.Parse(); err != nil {
		return err
	}
	return nil
}

func main() {
	if err := Execute(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
