package game

import "time"

// The countdown never crosses the wire as a live ticking value. Only two
// control points are shared: an absolute deadline (EndTime) while running and
// a frozen remainder (PausedTime) while paused. Every subscriber derives the
// displayed seconds from those plus its own clock, so clock skew shifts the
// momentary reading but all clients still hit zero at the same wall-clock
// instant.

// DisplayedSeconds returns the countdown a subscriber should show at the
// given local clock reading. Frozen states are clock-independent.
func DisplayedSeconds(s GameState, now time.Time) int {
	if s.IsFrozen {
		return s.PausedTime
	}
	remaining := s.EndTime - now.UnixMilli()
	if remaining <= 0 {
		return 0
	}
	return int((remaining + 999) / 1000)
}

// Resume converts the frozen remainder into an absolute deadline and starts
// the clock. Resuming with zero seconds left is valid: the timer simply reads
// zero on the next reconciliation. Invoking Resume while already running
// leaves the state unchanged.
func Resume(s GameState, now time.Time) GameState {
	if !s.IsFrozen {
		return s
	}
	s.EndTime = now.UnixMilli() + int64(s.PausedTime)*1000
	s.IsFrozen = false
	// PausedTime goes stale here; it is ignored until the next freeze.
	return s
}

// Freeze captures the remaining seconds and stops the clock. A second Freeze
// while already frozen is a no-op so re-delivered commands cannot corrupt the
// remainder.
func Freeze(s GameState, now time.Time) GameState {
	if s.IsFrozen {
		return s
	}
	s.PausedTime = DisplayedSeconds(s, now)
	s.IsFrozen = true
	// EndTime goes stale here; it is ignored until the next resume.
	return s
}

// ResetToDuration unconditionally rearms the timer frozen at d seconds. Every
// round or phase change routes through this.
func ResetToDuration(s GameState, d int) GameState {
	s.IsFrozen = true
	s.PausedTime = d
	s.EndTime = 0
	return s
}
