package model

import (
	"fmt"
	"strings"
	"time"
)

// Window is a look-back period measured from a series' own last date.
type Window string

const (
	WindowYTD Window = "YTD"
	Window1Y  Window = "1Y"
	Window2Y  Window = "2Y"
	Window5Y  Window = "5Y"
	Window10Y Window = "10Y"
	WindowAll Window = "ALL"
)

// Windows lists every window in display order.
var Windows = []Window{WindowYTD, Window1Y, Window2Y, Window5Y, Window10Y, WindowAll}

var windowYears = map[Window]int{
	Window1Y:  1,
	Window2Y:  2,
	Window5Y:  5,
	Window10Y: 10,
}

// ParseWindow parses a window name case-insensitively. An empty string is YTD,
// the dashboard default.
func ParseWindow(s string) (Window, error) {
	if s == "" {
		return WindowYTD, nil
	}
	w := Window(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Windows {
		if w == known {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown window %q", s)
}

// Start returns the inclusive lower bound of the window ending at last.
// The boolean is false for ALL, which has no lower bound.
func (w Window) Start(last time.Time) (time.Time, bool) {
	last = last.UTC()
	switch w {
	case WindowYTD:
		return time.Date(last.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), true
	case WindowAll:
		return time.Time{}, false
	}
	if years, ok := windowYears[w]; ok {
		return last.AddDate(-years, 0, 0), true
	}
	return time.Time{}, false
}

// WindowSummary describes a series restricted to one window.
type WindowSummary struct {
	Symbol           string       `json:"symbol"`
	Window           Window       `json:"window"`
	Currency         string       `json:"currency"`
	ExchangeName     string       `json:"exchangeName,omitempty"`
	First            *PricePoint  `json:"first"`
	Last             *PricePoint  `json:"last"`
	High             *PricePoint  `json:"high"`
	Low              *PricePoint  `json:"low"`
	CumulativeReturn *float64     `json:"cumulativeReturn"`
	Prices           []PricePoint `json:"prices"`
}
