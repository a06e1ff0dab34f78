package domain

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DefaultThresholds are the balance levels that trigger a low-balance alert.
var DefaultThresholds = Thresholds{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 15, 20, 25, 50, 100}

var ErrInvalidThresholds = errors.New("thresholds must be positive and strictly ascending")

// Thresholds is an ascending list of alert levels.
type Thresholds []int64

// ParseThresholds parses a comma separated list such as "1,5,10".
func ParseThresholds(s string) (Thresholds, error) {
	var out Thresholds
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidThresholds, part)
		}
		out = append(out, v)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// UnmarshalText implements encoding.TextUnmarshaler for configuration.
func (t *Thresholds) UnmarshalText(text []byte) error {
	parsed, err := ParseThresholds(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Validate checks ordering and positivity.
func (t Thresholds) Validate() error {
	if len(t) == 0 {
		return ErrInvalidThresholds
	}
	for i, v := range t {
		if v <= 0 || (i > 0 && v <= t[i-1]) {
			return ErrInvalidThresholds
		}
	}
	return nil
}

// Target returns the smallest threshold at or above balance. ok is false
// when balance is above every threshold.
func (t Thresholds) Target(balance int64) (int64, bool) {
	i, _ := slices.BinarySearch(t, balance)
	if i == len(t) {
		return 0, false
	}
	return t[i], true
}

// AlertState tracks the lowest threshold already alerted during the current
// low-balance episode of an account.
type AlertState struct {
	UpdatedAt            time.Time
	LastAlertedThreshold *int64
	AccountID            int64
}

// AlertDecision is the outcome of observing a new balance.
type AlertDecision struct {
	Threshold int64
	Notify    bool
	Changed   bool
}

// Observe advances the state machine for a new balance. It fires on descent
// into a lower band, resets silently once the balance is above every
// threshold, and ignores partial recovery.
func (s *AlertState) Observe(thresholds Thresholds, balance int64, now time.Time) AlertDecision {
	if balance < 0 {
		return AlertDecision{}
	}

	target, ok := thresholds.Target(balance)
	if !ok {
		if s.LastAlertedThreshold == nil {
			return AlertDecision{}
		}
		s.LastAlertedThreshold = nil
		s.UpdatedAt = now
		return AlertDecision{Changed: true}
	}

	if s.LastAlertedThreshold != nil && target >= *s.LastAlertedThreshold {
		return AlertDecision{Threshold: target}
	}

	s.LastAlertedThreshold = &target
	s.UpdatedAt = now
	return AlertDecision{Threshold: target, Notify: true, Changed: true}
}
