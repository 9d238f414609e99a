package enums

import "fmt"

// Priority is the handling urgency assigned to an order.
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityNormal Priority = 2
	PriorityHigh   Priority = 3
)

// IsValid reports whether the value is a known Priority.
func (p Priority) IsValid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// ParsePriority converts a raw level into a Priority.
func ParsePriority(value int) (Priority, error) {
	p := Priority(value)
	if !p.IsValid() {
		return 0, fmt.Errorf("invalid priority level %d", value)
	}
	return p, nil
}
