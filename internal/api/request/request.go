// Package request holds API request bodies and query-parameter parsing.
package request

import (
	"fmt"
	"strconv"
	"strings"
)

// UpdateOrderRequest is the body of PUT /api/performance/order.
type UpdateOrderRequest struct {
	Symbols []string `json:"symbols"`
}

// MaxRefreshRunLimit bounds the limit query parameter of the refresh run listing.
const MaxRefreshRunLimit = 200

// ParseLimit parses an optional positive limit, capped at max.
// An empty value returns def.
func ParseLimit(param string, def, max int) (int, error) {
	param = strings.TrimSpace(param)
	if param == "" {
		return def, nil
	}
	n, err := strconv.Atoi(param)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid limit: %s", param)
	}
	if n > max {
		n = max
	}
	return n, nil
}

// ParseSort normalizes the sort and order query parameters of the performance table.
func ParseSort(sortParam, orderParam string) (string, string) {
	return strings.ToLower(strings.TrimSpace(sortParam)), strings.ToLower(strings.TrimSpace(orderParam))
}
