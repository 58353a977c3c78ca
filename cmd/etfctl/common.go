package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/Rhymond/go-money"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/config"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
)

// paths holds the file flags shared by every subcommand. Empty values fall
// back to the environment configuration.
type paths struct {
	etfs    string
	dataset string
}

func (p *paths) setFlags(f *flag.FlagSet) {
	f.StringVar(&p.etfs, "etfs", "", "ETF list (YAML or JSON); defaults to ETF_CONFIG_PATH")
	f.StringVar(&p.dataset, "dataset", "", "dataset file; defaults to DATASET_PATH")
}

// resolve applies the configuration defaults.
func (p *paths) resolve(cfg *config.Config) {
	if p.etfs == "" {
		p.etfs = cfg.Data.ETFConfigPath
	}
	if p.dataset == "" {
		p.dataset = cfg.Data.DatasetPath
	}
}

// output returns w, or standard output when w is nil.
func output(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

// formatPrice renders a close in its currency, e.g. "A$123.45".
func formatPrice(v float64, currency string) string {
	if currency == "" {
		currency = model.DefaultCurrency
	}
	return money.NewFromFloat(v, currency).Display()
}

// formatPercent renders a return, or "—" when it cannot be computed.
func formatPercent(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return "—"
	}
	return fmt.Sprintf("%.1f%%", *v)
}
