// Package filter builds the movement-cost profiles used by navigation queries.
package filter

import (
	"fmt"
	"strings"
)

// Format identifies the layout family of a mesh dataset.
// Area ids and polygon flags mean different things per format.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatTC335A
	FormatSF548
	FormatANP
)

// String returns the configuration name of the format.
func (f Format) String() string {
	switch f {
	case FormatTC335A:
		return "335a"
	case FormatSF548:
		return "548"
	case FormatANP:
		return "anp"
	default:
		return "unknown"
	}
}

// ParseFormat parses a configuration name. "auto" and "" yield FormatUnknown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatUnknown, nil
	case "335a", "tc335a":
		return FormatTC335A, nil
	case "548", "sf548":
		return FormatSF548, nil
	case "anp":
		return FormatANP, nil
	default:
		return FormatUnknown, fmt.Errorf("unknown mesh format %q", s)
	}
}

// ClientState selects the cost profile of a client.
type ClientState uint8

const (
	StateNormal ClientState = iota
	// StateNormalAlliance avoids territory of the opposite faction.
	StateNormalAlliance
	// StateNormalHorde avoids territory of the opposite faction.
	StateNormalHorde
	// StateDead ignores terrain costs.
	StateDead

	stateCount
)

// Valid reports whether s is a known state.
func (s ClientState) Valid() bool {
	return s < stateCount
}

// String returns a human-readable state name.
func (s ClientState) String() string {
	switch s {
	case StateNormal:
		return "NORMAL"
	case StateNormalAlliance:
		return "NORMAL_ALLIANCE"
	case StateNormalHorde:
		return "NORMAL_HORDE"
	case StateDead:
		return "DEAD"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(s))
	}
}
