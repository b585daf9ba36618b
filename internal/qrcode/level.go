package qrcode

import (
	"fmt"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"
)

// Level is the error correction level of the symbol.
type Level int

const (
	LevelLow      Level = iota // ~7% recovery
	LevelMedium                // ~15%
	LevelQuartile              // ~25%
	LevelHigh                  // ~30%, needed for a logo overlay
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = LevelHigh

var levelNames = map[Level]string{
	LevelLow:      "low",
	LevelMedium:   "medium",
	LevelQuartile: "quartile",
	LevelHigh:     "high",
}

// ParseLevel accepts low, medium, quartile, high or the single letters
// L, M, Q, H. Empty means DefaultLevel.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultLevel, nil
	case "low", "l":
		return LevelLow, nil
	case "medium", "m":
		return LevelMedium, nil
	case "quartile", "q":
		return LevelQuartile, nil
	case "high", "h":
		return LevelHigh, nil
	}
	return 0, fmt.Errorf("%w: %q (expected low, medium, quartile or high)", ErrInvalidLevel, s)
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// recovery maps to the go-qrcode constants, whose top level is "Highest".
func (l Level) recovery() goqrcode.RecoveryLevel {
	switch l {
	case LevelLow:
		return goqrcode.Low
	case LevelMedium:
		return goqrcode.Medium
	case LevelQuartile:
		return goqrcode.High
	default:
		return goqrcode.Highest
	}
}
