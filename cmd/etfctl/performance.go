package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/config"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/dataset"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/service"
)

// performanceCmd prints the performance table computed from the dataset file.
type performanceCmd struct {
	paths paths
	sort  string
	asc   bool
	out   io.Writer
}

func (*performanceCmd) Name() string     { return "performance" }
func (*performanceCmd) Synopsis() string { return "print 1, 3, 5 and 10 year returns from the dataset file" }
func (*performanceCmd) Usage() string {
	return `etfctl performance [-sort etf|y1|y3|y5|y10] [-asc]

  Prints the 1-year simple return and the 3, 5 and 10-year annualized returns
  of every configured ETF. Returns that cannot be computed print as "—".
`
}

func (c *performanceCmd) SetFlags(f *flag.FlagSet) {
	c.paths.setFlags(f)
	f.StringVar(&c.sort, "sort", "", "column to sort by; configuration order when empty")
	f.BoolVar(&c.asc, "asc", false, "sort ascending")
}

func (c *performanceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	c.paths.resolve(cfg)

	etfs, err := config.LoadETFs(c.paths.etfs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	snap, err := dataset.ReadFile(c.paths.dataset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	rows := performanceRows(etfs, snap)
	switch c.sort {
	case "":
	case service.SortByETF, service.SortByY1, service.SortByY3, service.SortByY5, service.SortByY10:
		service.SortRows(rows, c.sort, !c.asc)
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid sort key %q\n", c.sort)
		return subcommands.ExitUsageError
	}

	if err := writePerformance(output(c.out), rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// performanceRows computes one row per configured ETF, in configuration order.
func performanceRows(etfs []model.ETF, snap model.DatasetSnapshot) []model.PerformanceRow {
	rows := make([]model.PerformanceRow, 0, len(etfs))
	for _, etf := range etfs {
		series, ok := snap.Data[etf.Symbol]
		rows = append(rows, service.ComputePerformanceRow(etf, series, ok))
	}
	return rows
}

func writePerformance(w io.Writer, rows []model.PerformanceRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ETF\t1Y\t3Y\t5Y\t10Y\t")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			row.ETF, formatPercent(row.Y1), formatPercent(row.Y3), formatPercent(row.Y5), formatPercent(row.Y10))
	}
	return tw.Flush()
}
