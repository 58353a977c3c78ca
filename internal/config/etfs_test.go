package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
)

func TestParseETFs(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		etfs, err := ParseETFs([]byte(`
- symbol: IVV.AX
  name: iShares S&P 500 ETF
  group: growth
- symbol: " VAF.AX "
  name: Vanguard Australian Fixed Interest ETF
  group: defensive
- symbol: NDQ.AX
`))
		if err != nil {
			t.Fatalf("ParseETFs() returned unexpected error: %v", err)
		}

		if got := Symbols(etfs); !slices.Equal(got, []string{"IVV.AX", "VAF.AX", "NDQ.AX"}) {
			t.Errorf("Unexpected symbols %v", got)
		}
		if etfs[1].Group != model.GroupDefensive {
			t.Errorf("Expected defensive, got %s", etfs[1].Group)
		}
		if etfs[2].Group != model.GroupGrowth {
			t.Errorf("Expected missing group to default to growth, got %s", etfs[2].Group)
		}
	})

	t.Run("json array", func(t *testing.T) {
		etfs, err := ParseETFs([]byte(`[{"symbol":"STRF","name":"Strategy","group":"defensive"}]`))
		if err != nil {
			t.Fatalf("ParseETFs() returned unexpected error: %v", err)
		}
		if len(etfs) != 1 || etfs[0].Name != "Strategy" {
			t.Errorf("Unexpected result %+v", etfs)
		}
	})

	invalid := map[string]string{
		"empty list":     `[]`,
		"missing symbol": `- name: Nameless`,
		"duplicate":      "- symbol: IVV\n- symbol: IVV",
		"unknown group":  "- symbol: IVV\n  group: income",
		"not a list":     `symbol: IVV`,
	}
	for name, doc := range invalid {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseETFs([]byte(doc)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestLoadETFs(t *testing.T) {
	t.Run("reads the bundled configuration", func(t *testing.T) {
		etfs, err := LoadETFs(filepath.Join("..", "..", "data", "etfs.yaml"))
		if err != nil {
			t.Fatalf("LoadETFs() returned unexpected error: %v", err)
		}
		if len(etfs) != 8 || etfs[0].Symbol != "IVV.AX" {
			t.Errorf("Unexpected configuration %+v", etfs)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadETFs(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("Expected error")
		}
	})

	t.Run("temp file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "etfs.yaml")
		if err := os.WriteFile(path, []byte("- symbol: VHY.AX\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		etfs, err := LoadETFs(path)
		if err != nil {
			t.Fatalf("LoadETFs() returned unexpected error: %v", err)
		}
		if etfs[0].Symbol != "VHY.AX" {
			t.Errorf("Unexpected symbol %s", etfs[0].Symbol)
		}
	})
}
