package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pagesnap/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: extract-page-css [flags] <page-name>...\n\n")
		flag.PrintDefaults()
	}
	flags := app.BindFlags(flag.CommandLine, false)
	flag.Parse()

	cfg, err := flags.Resolve()
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(2)
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := run(cfg, flag.Args()); err != nil {
		log.Error().Err(err).Msg("css extraction failed")
		os.Exit(1)
	}
}

func run(cfg app.Config, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pages, err := app.Pages(cfg, args)
	if err != nil {
		return err
	}
	a, err := app.New(cfg, os.Stdout)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	return app.RunPages(ctx, pages, a.ExtractCSS)
}
