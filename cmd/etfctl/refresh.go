package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/config"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/dataset"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/logging"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/service"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/yahoo"
)

// refreshCmd runs the pipeline for every configured symbol and writes the dataset file.
type refreshCmd struct {
	paths       paths
	concurrency int
	logLevel    string
	out         io.Writer
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "fetch every configured ETF and write the dataset file" }
func (*refreshCmd) Usage() string {
	return `etfctl refresh [-etfs <file>] [-dataset <file>] [-concurrency n]

  Fetches the monthly and daily history of every configured symbol, repairs
  split artifacts, and writes the merged snapshot to the dataset file.
  Symbols that fail are listed in the snapshot's errors.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	c.paths.setFlags(f)
	f.IntVar(&c.concurrency, "concurrency", 0, "symbols fetched in parallel; defaults to FETCH_CONCURRENCY")
	f.StringVar(&c.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

func (c *refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	c.paths.resolve(cfg)
	if c.concurrency < 1 {
		c.concurrency = cfg.Pipeline.Concurrency
	}

	etfs, err := config.LoadETFs(c.paths.etfs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	logger := logging.NewWithWriter(os.Stderr, c.logLevel)
	client := yahoo.NewFinanceClient(
		yahoo.WithChartEndpoint(cfg.Yahoo.ChartEndpoint),
		yahoo.WithRelay(cfg.Yahoo.RelayURL),
		yahoo.WithTimeout(cfg.Yahoo.Timeout),
		yahoo.WithLogger(logger),
	)
	series := service.NewSeriesService(client, service.SeriesOptions{
		SplitThreshold: cfg.Pipeline.SplitThreshold,
		Logger:         logger,
	})
	orchestrator := service.NewDatasetService(config.Symbols(etfs), series, service.NewDashboardState(), service.DatasetOptions{
		Concurrency: c.concurrency,
		Logger:      logger,
	})

	snap, _, err := orchestrator.BuildSnapshot(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: refresh cancelled: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := dataset.WriteFile(c.paths.dataset, snap); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	writeReport(output(c.out), c.paths.dataset, snap, len(etfs))
	return subcommands.ExitSuccess
}

// writeReport summarizes a written snapshot: coverage, freshness and the
// error recorded for every symbol that failed.
func writeReport(w io.Writer, path string, snap model.DatasetSnapshot, configured int) {
	fmt.Fprintf(w, "Wrote %s: %d of %d symbols\n", path, len(snap.Data), configured)
	if t, err := model.ParseDate(snap.LastUpdated); err == nil {
		fmt.Fprintf(w, "Data as at %s (%s)\n", snap.LastUpdated, humanize.Time(t))
	}

	failed := make([]string, 0, len(snap.Errors))
	for symbol := range snap.Errors {
		failed = append(failed, symbol)
	}
	slices.Sort(failed)
	for _, symbol := range failed {
		fmt.Fprintf(w, "  %s: %s\n", symbol, snap.Errors[symbol])
	}
	fmt.Fprintf(w, "Generated %s\n", snap.GeneratedAt.Local().Format(time.RFC1123))
}
