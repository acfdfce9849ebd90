package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"geitems/internal/config"
	"geitems/internal/logging"
	"geitems/internal/store"
	"geitems/internal/syncer"
	"geitems/internal/wiki"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

const usage = `usage: geitems <command> [flags]

commands:
  sync             create missing item JSON files and download missing images
  upgrade-images   replace every image with the largest variant the wiki offers
  config           print the effective configuration
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(stderr, usage)
		return 2
	}
	command := args[0]
	switch command {
	case "sync", "upgrade-images", "config":
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", command, usage)
		return 2
	}

	flags := pflag.NewFlagSet(command, pflag.ContinueOnError)
	flags.SetOutput(stderr)
	config.RegisterFlags(flags)
	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	configPath, _ := flags.GetString("config")
	cfg, err := config.LoadConfig(configPath, flags)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	if command == "config" {
		if err := cfg.WriteYAML(stdout); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	logger := logging.New(cfg.Logging, stderr)

	fs := afero.NewOsFs()
	records, err := store.NewMetadataStore(fs, cfg.Storage.ItemsDir)
	if err != nil {
		logger.Error("failed to open items store", "error", err)
		return 1
	}
	images, err := store.NewImageStore(fs, cfg.Storage.ImagesDir)
	if err != nil {
		logger.Error("failed to open images store", "error", err)
		return 1
	}

	client := wiki.NewClient(cfg, &http.Client{}, logger)
	s := syncer.New(records, images, client, logger, syncer.Options{
		Pacer:           syncer.NewPacer(cfg.Images.Delay),
		DefaultBuyLimit: cfg.DefaultBuyLimit,
	})

	var report syncer.Report
	if command == "sync" {
		logger.Info("starting sync", "items_dir", cfg.Storage.ItemsDir, "images_dir", cfg.Storage.ImagesDir)
		report, err = s.RunSync(ctx, client, cfg.Images.MinBytes)
	} else {
		logger.Info("starting image upgrade", "images_dir", cfg.Storage.ImagesDir)
		report, err = s.RunUpgrade(ctx, client, cfg.Images.MinBytes)
	}

	logger.Info("run finished",
		"command", command,
		"items", report.Entries,
		"buy_limits", report.Limits,
		"records_created", report.Metadata.Created,
		"records_failed", report.Metadata.Failed,
		"images_saved", report.Images.Created,
		"images_skipped", report.Images.Skipped,
		"images_failed", report.Images.Failed)

	if err != nil {
		logger.Error("run aborted", "command", command, "error", err)
		return 1
	}
	return 0
}
