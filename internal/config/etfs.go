package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
)

// LoadETFs reads the ordered ETF list from path. The file is YAML; a JSON array
// (the format of the original etfs.json) is accepted as well since JSON is valid YAML.
func LoadETFs(path string) ([]model.ETF, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ETF config: %w", err)
	}
	return ParseETFs(data)
}

// ParseETFs decodes and validates an ETF list. Symbols must be non-empty and
// unique; a missing group defaults to growth.
func ParseETFs(data []byte) ([]model.ETF, error) {
	var etfs []model.ETF
	if err := yaml.Unmarshal(data, &etfs); err != nil {
		return nil, fmt.Errorf("failed to parse ETF config: %w", err)
	}
	if len(etfs) == 0 {
		return nil, fmt.Errorf("ETF config contains no symbols")
	}

	seen := make(map[string]bool, len(etfs))
	for i := range etfs {
		etfs[i].Symbol = strings.TrimSpace(etfs[i].Symbol)
		if etfs[i].Symbol == "" {
			return nil, fmt.Errorf("ETF config entry %d has no symbol", i)
		}
		if seen[etfs[i].Symbol] {
			return nil, fmt.Errorf("ETF config lists %s more than once", etfs[i].Symbol)
		}
		seen[etfs[i].Symbol] = true

		switch etfs[i].Group {
		case "":
			etfs[i].Group = model.GroupGrowth
		case model.GroupGrowth, model.GroupDefensive:
		default:
			return nil, fmt.Errorf("ETF %s has unknown group %q", etfs[i].Symbol, etfs[i].Group)
		}
	}
	return etfs, nil
}

// Symbols returns the ticker of every ETF, preserving configuration order.
func Symbols(etfs []model.ETF) []string {
	out := make([]string, len(etfs))
	for i, e := range etfs {
		out[i] = e.Symbol
	}
	return out
}
