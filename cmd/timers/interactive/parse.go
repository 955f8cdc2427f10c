package interactive

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/modzero/timers-go/pkg/timer"
)

// Presets resolves named durations.
type Presets interface {
	Preset(name string) (time.Duration, error)
}

var (
	errNoMatch   = errors.New("no timer matches")
	errAmbiguous = errors.New("ambiguous timer id")
)

// parseDuration accepts a Go duration ("1m30s"), a number of seconds ("90")
// or a preset name.
func parseDuration(s string, presets Presets) (time.Duration, error) {
	var (
		d   time.Duration
		err error
	)
	if secs, convErr := strconv.ParseFloat(s, 64); convErr == nil {
		nanos := secs * float64(time.Second)
		if math.IsNaN(nanos) || math.Abs(nanos) >= math.MaxInt64 {
			return 0, fmt.Errorf("duration out of range: %s", s)
		}
		d = time.Duration(nanos)
	} else if d, err = time.ParseDuration(s); err != nil {
		if presets == nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		if d, err = presets.Preset(s); err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", s)
	}
	return d, nil
}

// resolveID finds the timer whose id equals or starts with prefix.
func resolveID(prefix string, timers []timer.Timer) (uuid.UUID, error) {
	prefix = strings.ToLower(prefix)
	if id, err := uuid.Parse(prefix); err == nil {
		return id, nil
	}

	var (
		match uuid.UUID
		found int
	)
	for _, t := range timers {
		if strings.HasPrefix(t.ID().String(), prefix) {
			match = t.ID()
			found++
		}
	}
	switch found {
	case 0:
		return uuid.Nil, fmt.Errorf("%w %q", errNoMatch, prefix)
	case 1:
		return match, nil
	default:
		return uuid.Nil, fmt.Errorf("%w %q (%d matches)", errAmbiguous, prefix, found)
	}
}

// formatClock renders d as m:ss, or h:mm:ss above an hour.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// state describes a timer in one word.
func state(t timer.Timer) string {
	switch {
	case t.IsComplete():
		return "done"
	case t.Running():
		return "running"
	default:
		return "idle"
	}
}
