package enums

import "fmt"

// ClientStatus maps to the client_status enum in Postgres.
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusPaused   ClientStatus = "paused"
	ClientStatusArchived ClientStatus = "archived"
)

var validClientStatuses = []ClientStatus{
	ClientStatusActive,
	ClientStatusPaused,
	ClientStatusArchived,
}

// String implements fmt.Stringer.
func (c ClientStatus) String() string {
	return string(c)
}

// IsValid reports whether the value matches the canonical client_status enum.
func (c ClientStatus) IsValid() bool {
	for _, candidate := range validClientStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseClientStatus converts raw input into ClientStatus.
func ParseClientStatus(value string) (ClientStatus, error) {
	for _, candidate := range validClientStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid client status %q", value)
}
