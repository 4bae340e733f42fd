// Package numerator provides domain contracts for order auto-numbering.
package numerator

import (
	"fmt"
	"strings"
	"time"
)

// Strategy defines how the per-seller counter is advanced.
type Strategy int

const (
	// StrategyAtomic uses a single increment-and-return statement
	// (INSERT ... ON CONFLICT DO UPDATE ... RETURNING). The row lock is held
	// until the surrounding transaction ends, so a rolled back order leaves no gap.
	StrategyAtomic Strategy = iota

	// StrategyCompareAndSwap reads the counter and writes it back only if it
	// still holds the value read, retrying with backoff on conflict.
	// Suitable for stores without a native increment primitive.
	StrategyCompareAndSwap
)

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyCompareAndSwap:
		return "cas"
	default:
		return "atomic"
	}
}

// ParseStrategy maps a configuration value to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "atomic":
		return StrategyAtomic, nil
	case "cas", "compare_and_swap":
		return StrategyCompareAndSwap, nil
	default:
		return StrategyAtomic, fmt.Errorf("unknown numbering strategy %q (use atomic or cas)", s)
	}
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers, joined with "-" (e.g. "INV")
	Prefix string

	// PadWidth is the minimum digit count. Wider values keep their natural width.
	PadWidth int

	// Strategy to use for counter updates
	Strategy Strategy

	// MaxRetries bounds conflict retries for StrategyCompareAndSwap
	MaxRetries uint64

	// InitialBackoff and MaxBackoff shape the exponential retry delay
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultConfig returns the INV-0001 numbering scheme.
func DefaultConfig() Config {
	return Config{
		Prefix:         "INV",
		PadWidth:       4,
		Strategy:       StrategyAtomic,
		MaxRetries:     5,
		InitialBackoff: 5 * time.Millisecond,
		MaxBackoff:     100 * time.Millisecond,
	}
}

// Format creates the final number string: INV-0007, INV-10234.
func (c Config) Format(value int64) string {
	padWidth := c.PadWidth
	if padWidth <= 0 {
		padWidth = 4
	}
	return fmt.Sprintf("%s-%0*d", c.Prefix, padWidth, value)
}

// ParseNumber extracts the counter value from a formatted number.
// Returns -1 if parsing fails.
func (c Config) ParseNumber(formatted string) int64 {
	digits, ok := strings.CutPrefix(formatted, c.Prefix+"-")
	if !ok || digits == "" {
		return -1
	}
	var num int64
	for _, r := range digits {
		if r < '0' || r > '9' {
			return -1
		}
		num = num*10 + int64(r-'0')
	}
	return num
}
