package game

import (
	"testing"
	"time"
)

func runningState(endTime int64) GameState {
	return GameState{IsFrozen: false, EndTime: endTime, PausedTime: 99}
}

func frozenState(pausedTime int) GameState {
	return GameState{IsFrozen: true, PausedTime: pausedTime, EndTime: 123456}
}

func TestDisplayedSecondsFrozenIgnoresClock(t *testing.T) {
	s := frozenState(42)
	clocks := []time.Time{
		time.UnixMilli(0),
		time.UnixMilli(1_000_000),
		time.UnixMilli(9_999_999_999),
	}
	for _, now := range clocks {
		if got := DisplayedSeconds(s, now); got != 42 {
			t.Fatalf("frozen state at now=%v: got %d, want 42", now, got)
		}
	}
}

func TestDisplayedSecondsRunning(t *testing.T) {
	end := int64(100_000)
	cases := []struct {
		name string
		now  int64
		want int
	}{
		{"ten seconds out", 90_000, 10},
		{"partial second rounds up", 90_001, 10},
		{"just under a second left", 99_999, 1},
		{"exactly at deadline", 100_000, 0},
		{"past deadline stays zero", 150_000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DisplayedSeconds(runningState(end), time.UnixMilli(tc.now))
			if got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestDisplayedSecondsMonotonicNonIncreasing(t *testing.T) {
	s := runningState(60_000)
	prev := DisplayedSeconds(s, time.UnixMilli(0))
	for ms := int64(0); ms <= 70_000; ms += 137 {
		got := DisplayedSeconds(s, time.UnixMilli(ms))
		if got > prev {
			t.Fatalf("countdown increased from %d to %d at now=%dms", prev, got, ms)
		}
		prev = got
	}
	if prev != 0 {
		t.Fatalf("countdown ended at %d, want 0", prev)
	}
}

func TestResumeFreezesRoundTrip(t *testing.T) {
	t0 := time.UnixMilli(1_000_000)
	s := frozenState(90)

	running := Resume(s, t0)
	if running.IsFrozen {
		t.Fatal("resume left state frozen")
	}
	if running.EndTime != t0.UnixMilli()+90_000 {
		t.Fatalf("endTime = %d, want %d", running.EndTime, t0.UnixMilli()+90_000)
	}

	// Freeze exactly at expiry: no time lost or gained over the cycle.
	frozen := Freeze(running, t0.Add(90*time.Second))
	if !frozen.IsFrozen {
		t.Fatal("freeze left state running")
	}
	if frozen.PausedTime != 0 {
		t.Fatalf("pausedTime = %d, want 0", frozen.PausedTime)
	}
}

func TestResumePartialThenFreeze(t *testing.T) {
	t0 := time.UnixMilli(500_000)
	s := Resume(frozenState(120), t0)
	frozen := Freeze(s, t0.Add(45*time.Second))
	if frozen.PausedTime != 75 {
		t.Fatalf("pausedTime = %d, want 75", frozen.PausedTime)
	}
}

func TestResumeWithZeroRemaining(t *testing.T) {
	t0 := time.UnixMilli(42_000)
	s := Resume(frozenState(0), t0)
	if s.IsFrozen {
		t.Fatal("resume at zero should still start the timer")
	}
	if got := DisplayedSeconds(s, t0); got != 0 {
		t.Fatalf("displayed = %d, want 0 on first reconciliation", got)
	}
}

func TestFreezeWhileFrozenIsNoOp(t *testing.T) {
	s := frozenState(33)
	got := Freeze(s, time.UnixMilli(999_999_999))
	if !got.IsFrozen || got.PausedTime != s.PausedTime || got.EndTime != s.EndTime {
		t.Fatalf("re-freeze changed state: %+v", got)
	}
}

func TestResumeWhileRunningIsNoOp(t *testing.T) {
	s := runningState(60_000)
	got := Resume(s, time.UnixMilli(10_000))
	if got.IsFrozen || got.EndTime != s.EndTime || got.PausedTime != s.PausedTime {
		t.Fatalf("re-resume changed state: %+v", got)
	}
}

func TestResetToDuration(t *testing.T) {
	s := runningState(60_000)
	got := ResetToDuration(s, 240)
	if !got.IsFrozen || got.PausedTime != 240 || got.EndTime != 0 {
		t.Fatalf("reset produced %+v", got)
	}
}
