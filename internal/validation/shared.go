package validation

import (
	"fmt"
	"slices"
	"strings"
)

// Error reports one message per invalid field.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	slices.Sort(msgs)
	return strings.Join(msgs, "; ")
}
