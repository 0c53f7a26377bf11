// Command lens searches the public characters API interactively.
//
// Usage:
//
//	lens [--config lens.yaml] [--term spider] [--limit 25] [--log-level debug] [--watch-config]
//
// Commands are read from stdin, one per line:
//
//	s <term>   search for names starting with term
//	n          next page
//	p          previous page
//	l <limit>  change the page size
//	q          quit
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/zoobzio/lens"
	"github.com/zoobzio/lens/client"
	"github.com/zoobzio/lens/config"
	"github.com/zoobzio/lens/hero"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.LookupEnv, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath  string
	term        string
	limit       int
	logLevel    string
	watchConfig bool
}

func parseFlags(args []string, errOut io.Writer) (options, error) {
	var opts options
	flags := flag.NewFlagSet("lens", flag.ContinueOnError)
	flags.SetOutput(errOut)
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	flags.StringVarP(&opts.term, "term", "t", "", "initial search term")
	flags.IntVarP(&opts.limit, "limit", "l", 0, "initial page size (one of the configured limits)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error, disabled")
	flags.BoolVarP(&opts.watchConfig, "watch-config", "w", false, "reload the config file on change and rotate the API key")

	if err := flags.Parse(args); err != nil {
		return options{}, err
	}
	if flags.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(flags.Args(), " "))
	}
	if opts.watchConfig && opts.configPath == "" {
		return options{}, errors.New("--watch-config requires --config")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, lookup config.LookupFunc, in io.Reader, out, errOut io.Writer) int {
	opts, err := parseFlags(args, errOut)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(errOut, "error:", err)
		return 2
	}

	cfg, err := config.LoadWith(opts.configPath, lookup)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: errOut, TimeFormat: time.RFC3339}).
		Level(cfg.Level()).
		With().Timestamp().Logger()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	coord, closeStore, err := build(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to start.")
		return 1
	}
	defer closeStore()

	if opts.limit != 0 {
		if err := coord.SetLimit(opts.limit); err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return 2
		}
	}
	if opts.term != "" {
		coord.Search(opts.term)
	}

	view := newView(out, coord)
	defer view.close()

	if err := coord.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to start coordinator.")
		return 1
	}

	if opts.watchConfig {
		if err := followConfig(ctx, opts.configPath, lookup, coord, logger); err != nil {
			logger.Error().Err(err).Msg("Failed to watch config.")
			return 1
		}
	}

	if err := readCommands(ctx, in, coord, view); err != nil {
		logger.Error().Err(err).Msg("Failed to read commands.")
		return 1
	}
	return 0
}

// newSource builds the HTTP source. It asks for the format codec decodes.
func newSource(cfg *config.Config, codec lens.Codec, logger zerolog.Logger) (*client.Client, error) {
	opts := []client.Option{
		client.WithLogger(logger),
		client.WithAccept(codec.ContentType()),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, client.WithTimeout(cfg.Timeout))
	}
	return client.New(cfg.BaseURL, opts...)
}

// build wires a coordinator from cfg. The returned func releases the cache.
func build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*lens.Coordinator[hero.Hero], func(), error) {
	store, err := cfg.NewCache(ctx, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cache: %w", err)
	}

	codec := lens.JSONCodec{}
	src, err := newSource(cfg, codec, logger)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	coord := lens.New[hero.Hero](src, cfg.APIKey).
		Codec(codec).
		Debounce(cfg.Debounce).
		PageSizes(cfg.Limits...).
		Cache(store).
		Logger(logger).
		ErrorHistorySize(10)
	if cfg.ClampPages {
		coord.ClampPages()
	}
	if err := coord.SetLimit(cfg.DefaultLimit); err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close cache.")
		}
	}
	return coord, closeStore, nil
}

// followConfig rotates the API key whenever the config file changes.
func followConfig(ctx context.Context, path string, lookup config.LookupFunc, coord *lens.Coordinator[hero.Hero], logger zerolog.Logger) error {
	updates, err := config.Watch(ctx, path, lookup)
	if err != nil {
		return err
	}
	// The first value is the config already in use.
	<-updates

	go func() {
		for cfg := range updates {
			coord.SetAPIKey(cfg.APIKey)
			logger.Info().Str("path", path).Msg("Config reloaded, API key applied.")
		}
	}()
	return nil
}
