// Package timeframe parses the interval:count:count2 specification
// the graph command takes, e.g. "15m:60:60".
package timeframe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMalformedSpec marks input that does not split into the three
	// colon-separated segments <interval>:<count>:<count2>.
	ErrMalformedSpec = errors.New("malformed timeframe spec")
	// ErrInvalidInterval marks an unknown unit suffix or a
	// non-positive numeric prefix in the interval segment.
	ErrInvalidInterval = errors.New("invalid interval")
	// ErrInvalidCount marks a count segment that is missing,
	// non-numeric or below 1.
	ErrInvalidCount = errors.New("invalid count")
)

var unitDurations = map[string]time.Duration{
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// Spec is the parsed form of one timeframe argument. Interval governs
// the primary bucket width, PrimaryCount the primary series length and
// SecondaryCount the size of the coarser overlay series.
type Spec struct {
	Interval       time.Duration
	Unit           string // canonical unit suffix: m, h or d
	N              int    // interval prefix, Interval == N * unit
	PrimaryCount   int
	SecondaryCount int
}

// String reformats the spec canonically; Parse(s.String()) == s for
// any spec produced by Parse.
func (s Spec) String() string {
	return fmt.Sprintf("%d%s:%d:%d", s.N, s.Unit, s.PrimaryCount, s.SecondaryCount)
}

// Minutes returns the interval width in whole minutes.
func (s Spec) Minutes() int {
	return int(s.Interval / time.Minute)
}

// CoarseFactor is how many primary buckets fold into one secondary
// bucket so that the coarser series fits in SecondaryCount entries.
func (s Spec) CoarseFactor() int {
	if s.SecondaryCount <= 0 {
		return 1
	}
	factor := (s.PrimaryCount + s.SecondaryCount - 1) / s.SecondaryCount
	if factor < 1 {
		factor = 1
	}
	return factor
}

// Parse validates and decodes a spec string. It is a pure function of
// its input: no defaults are injected, no state is touched.
func Parse(input string) (Spec, error) {
	raw := strings.TrimSpace(input)
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return Spec{}, fmt.Errorf("%w: %q (want interval:count:count2)", ErrMalformedSpec, input)
	}
	n, unit, err := parseInterval(parts[0])
	if err != nil {
		return Spec{}, err
	}
	primary, err := parseCount(parts[1], "primary")
	if err != nil {
		return Spec{}, err
	}
	secondary, err := parseCount(parts[2], "secondary")
	if err != nil {
		return Spec{}, err
	}
	return Spec{
		Interval:       time.Duration(n) * unitDurations[unit],
		Unit:           unit,
		N:              n,
		PrimaryCount:   primary,
		SecondaryCount: secondary,
	}, nil
}

func parseInterval(segment string) (int, string, error) {
	seg := strings.TrimSpace(segment)
	if len(seg) < 2 {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidInterval, segment)
	}
	unit := strings.ToLower(seg[len(seg)-1:])
	if _, ok := unitDurations[unit]; !ok {
		return 0, "", fmt.Errorf("%w: unknown unit in %q", ErrInvalidInterval, segment)
	}
	n, err := strconv.Atoi(seg[:len(seg)-1])
	if err != nil || n <= 0 {
		return 0, "", fmt.Errorf("%w: bad prefix in %q", ErrInvalidInterval, segment)
	}
	return n, unit, nil
}

func parseCount(segment, which string) (int, error) {
	seg := strings.TrimSpace(segment)
	n, err := strconv.Atoi(seg)
	if err != nil {
		return 0, fmt.Errorf("%w: %s count %q", ErrInvalidCount, which, segment)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: %s count %d < 1", ErrInvalidCount, which, n)
	}
	return n, nil
}
