package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pagesnap/internal/app"
	"github.com/hyperifyio/pagesnap/internal/capture"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: capture-page -url URL [flags] <page-name>\n\n")
		flag.PrintDefaults()
	}
	flags := app.BindFlags(flag.CommandLine, true)
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
	if strings.TrimSpace(cfg.CaptureURL) == "" || flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := app.CheckPageName(flag.Arg(0)); err != nil {
		log.Error().Err(err).Msg("invalid page name")
		os.Exit(2)
	}

	if err := run(cfg, flag.Arg(0)); err != nil {
		log.Error().Err(err).Msg("capture failed")
		os.Exit(1)
	}
}

func run(cfg app.Config, page string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Spinner only on an interactive terminal.
	var sp *spinner.Spinner
	if isatty.IsTerminal(os.Stderr.Fd()) {
		sp = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		sp.Suffix = " capturing " + cfg.CaptureURL
		sp.Start()
	}
	outer, err := capture.OuterHTML(ctx, capture.Options{
		URL:     cfg.CaptureURL,
		Wait:    cfg.CaptureWait,
		Timeout: cfg.CaptureTimeout,
		Scroll:  cfg.CaptureScroll,
	})
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		return err
	}
	store := &capture.Store{Dir: cfg.RawDir}
	meta, err := store.Save(ctx, page, cfg.CaptureURL, outer, cfg.CaptureJSON)
	if err != nil {
		return err
	}
	log.Info().Str("page", meta.Page).Str("path", store.RawPath(page)).Int("bytes", meta.Bytes).Str("sha256", meta.SHA256).Msg("capture saved")
	return nil
}
