package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/joho/godotenv"

	"atlas/argosync"
	"atlas/blob"
	"atlas/config"
	"atlas/convert"
	"atlas/db"
	"atlas/extract"
	"atlas/pipeline"
)

const timeUnit = 10 * time.Millisecond

type SyncCmd struct {
	ID           string `arg:"positional,required" help:"WMO float identifier to sync and process"`
	SkipDownload bool   `arg:"--skip-download" help:"Process already staged files without downloading"`
}

type SyncAllCmd struct {
	SkipDownload bool `arg:"--skip-download" help:"Process already staged files without downloading"`
}

type UpdateCmd struct{}

type CmdArgs struct {
	Sync    *SyncCmd    `arg:"subcommand:sync" help:"Sync and process a single float"`
	SyncAll *SyncAllCmd `arg:"subcommand:sync-all" help:"Full DAC sync followed by processing"`
	Update  *UpdateCmd  `arg:"subcommand:update" help:"Weekly incremental update"`
}

func main() {
	// A missing .env file is fine, the environment may be set directly.
	_ = godotenv.Load()

	var args CmdArgs
	parser := arg.MustParse(&args)
	if parser.Subcommand() == nil {
		parser.Fail("a subcommand is required: sync, sync-all or update")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	setupLogger(cfg)

	ctx := context.Background()

	store, err := db.Connect(ctx, cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer store.Close(ctx)

	var uploader pipeline.Uploader
	if cfg.BlobConfigured() {
		up, err := blob.New(ctx, cfg)
		if err != nil {
			slog.Error("blob store setup failed", "error", err)
			os.Exit(1)
		}
		uploader = up
	} else {
		slog.Warn("blob store not configured, parquet uploads disabled")
	}

	runner := pipeline.NewRunner(
		argosync.New(cfg),
		extract.New(cfg),
		convert.New(cfg),
		store,
		uploader,
	)

	var result *pipeline.RunResult
	switch {
	case args.Sync != nil:
		runner.SkipDownload = args.Sync.SkipDownload
		result = runner.RunSync(ctx, args.Sync.ID)
	case args.SyncAll != nil:
		runner.SkipDownload = args.SyncAll.SkipDownload
		result = runner.RunSyncAll(ctx)
	case args.Update != nil:
		result = runner.RunWeeklyUpdate(ctx)
	}

	printSummary(result)
	if !result.Success {
		os.Exit(1)
	}
}

func setupLogger(cfg *config.Config) {
	if cfg.LogFormat == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}
}

func printSummary(r *pipeline.RunResult) {
	if r.FloatID != "" {
		if r.Success {
			fmt.Printf("Float %s processed in %s (download %s, parse %s, upload %s)\n",
				r.FloatID,
				r.Timing.Total.Round(timeUnit),
				r.Timing.Download.Round(timeUnit),
				r.Timing.Parse.Round(timeUnit),
				r.Timing.Upload.Round(timeUnit))
		} else {
			fmt.Printf("Float %s failed: %s\n", r.FloatID, r.Err)
		}
		return
	}

	if r.Err != "" {
		fmt.Printf("Run failed: %s\n", r.Err)
		return
	}
	fmt.Printf("Processed %d/%d floats (%d download failures, %d processing failures) in %s\n",
		r.Processed, r.Downloaded, r.DownloadFailed, r.ProcessFailed,
		r.Timing.Total.Round(timeUnit))
}
