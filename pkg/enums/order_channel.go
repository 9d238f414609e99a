package enums

import "fmt"

// OrderChannel distinguishes retail checkouts from business purchase orders.
type OrderChannel string

const (
	OrderChannelB2C OrderChannel = "b2c"
	OrderChannelB2B OrderChannel = "b2b"
)

var validOrderChannels = []OrderChannel{
	OrderChannelB2C,
	OrderChannelB2B,
}

// String implements fmt.Stringer.
func (o OrderChannel) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderChannel.
func (o OrderChannel) IsValid() bool {
	for _, candidate := range validOrderChannels {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderChannel converts raw input into an OrderChannel.
func ParseOrderChannel(value string) (OrderChannel, error) {
	for _, candidate := range validOrderChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order channel %q", value)
}
