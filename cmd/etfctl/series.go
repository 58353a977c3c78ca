package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/config"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/dataset"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/service"
)

// seriesCmd prints one symbol's series within a window.
type seriesCmd struct {
	paths  paths
	symbol string
	window string
	points bool
	out    io.Writer
}

func (*seriesCmd) Name() string     { return "series" }
func (*seriesCmd) Synopsis() string { return "print a symbol's prices within a time window" }
func (*seriesCmd) Usage() string {
	return `etfctl series -symbol <SYM> [-window YTD|1Y|2Y|5Y|10Y|ALL] [-points]

  Prints the first, last, high and low close and the cumulative return of the
  symbol over the window, measured back from its own last date.
`
}

func (c *seriesCmd) SetFlags(f *flag.FlagSet) {
	c.paths.setFlags(f)
	f.StringVar(&c.symbol, "symbol", "", "ticker symbol")
	f.StringVar(&c.window, "window", string(model.WindowYTD), "time window")
	f.BoolVar(&c.points, "points", false, "print every point in the window")
}

func (c *seriesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		fmt.Fprintln(os.Stderr, "Error: -symbol is required")
		return subcommands.ExitUsageError
	}
	window, err := model.ParseWindow(c.window)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	c.paths.resolve(cfg)

	snap, err := dataset.ReadFile(c.paths.dataset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	symbol := c.symbol
	series, ok := snap.Data[symbol]
	if !ok {
		symbol = strings.ToUpper(symbol)
		series, ok = snap.Data[symbol]
	}
	if !ok {
		if msg, failed := snap.Errors[symbol]; failed {
			fmt.Fprintf(os.Stderr, "Error: %s: %s\n", symbol, msg)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s: no data in %s\n", symbol, c.paths.dataset)
		}
		return subcommands.ExitFailure
	}

	writeSeries(output(c.out), service.SummarizeWindow(series, window), c.points)
	return subcommands.ExitSuccess
}

// writeSeries prints the window header lines and, with points set, every close.
func writeSeries(w io.Writer, summary model.WindowSummary, points bool) {
	fmt.Fprintf(w, "%s %s (%s)\n", summary.Symbol, summary.Window, summary.Currency)
	if summary.First == nil {
		fmt.Fprintln(w, "no prices in window")
		return
	}
	line := func(label string, p *model.PricePoint) {
		fmt.Fprintf(w, "%-6s %s %s\n", label, p.Date, formatPrice(p.Close, summary.Currency))
	}
	line("first", summary.First)
	line("last", summary.Last)
	line("high", summary.High)
	line("low", summary.Low)
	fmt.Fprintf(w, "%-6s %s\n", "change", formatPercent(summary.CumulativeReturn))

	if points {
		for _, p := range summary.Prices {
			fmt.Fprintf(w, "%s %s\n", p.Date, formatPrice(p.Close, summary.Currency))
		}
	}
}
