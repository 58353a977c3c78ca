package model

// Group is the dashboard section an ETF is displayed in.
type Group string

const (
	GroupGrowth    Group = "growth"
	GroupDefensive Group = "defensive"
)

// ETF is one tracked symbol from the static configuration file.
type ETF struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Name   string `json:"name" yaml:"name"`
	Group  Group  `json:"group" yaml:"group"`
}

// Label is the display label used in the performance table, e.g. "IVV – iShares S&P 500 ETF".
func (e ETF) Label() string {
	if e.Name == "" {
		return e.Symbol
	}
	return e.Symbol + " – " + e.Name
}

// ETFSummary is an ETF card: configuration plus its latest close and daily move.
type ETFSummary struct {
	ETF
	Currency    string   `json:"currency,omitempty"`
	LatestDate  string   `json:"latestDate,omitempty"`
	LatestClose *float64 `json:"latestClose"`
	DailyChange *float64 `json:"dailyChange"`
	Error       string   `json:"error,omitempty"`
}

// ETFGroups is the grouped card listing returned by the API.
type ETFGroups struct {
	Growth    []ETFSummary `json:"growth"`
	Defensive []ETFSummary `json:"defensive"`
}
