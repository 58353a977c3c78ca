package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/api/request"
)

// MaxSymbolLength bounds a ticker symbol.
const MaxSymbolLength = 20

// Common validation errors
var (
	ErrInvalidSymbolFormat = fmt.Errorf("invalid symbol format")
	ErrEmptySlice          = fmt.Errorf("slice cannot be empty")
)

// symbolPattern accepts exchange-suffixed tickers (IVV.AX), index symbols (^GSPC),
// currency pairs (AUDUSD=X) and class shares (BRK-B).
var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9^][A-Za-z0-9.=\-]*$`)

// ValidateSymbol checks that a string looks like a ticker symbol
func ValidateSymbol(symbol string) error {
	if len(symbol) == 0 || len(symbol) > MaxSymbolLength || !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("%w: %q", ErrInvalidSymbolFormat, symbol)
	}
	return nil
}

// ValidateSymbols validates a slice of symbols
func ValidateSymbols(symbols []string) error {
	if len(symbols) == 0 {
		return ErrEmptySlice
	}
	for _, s := range symbols {
		if err := ValidateSymbol(s); err != nil {
			return err
		}
	}
	return nil
}

// ValidateUpdateOrder checks the shape of an order update. Whether the symbols
// are configured is left to the service.
func ValidateUpdateOrder(req request.UpdateOrderRequest) error {
	errors := make(map[string]string)

	if len(req.Symbols) == 0 {
		errors["symbols"] = "symbols is required"
	}
	for i, s := range req.Symbols {
		if err := ValidateSymbol(strings.TrimSpace(s)); err != nil {
			errors[fmt.Sprintf("symbols[%d]", i)] = err.Error()
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
