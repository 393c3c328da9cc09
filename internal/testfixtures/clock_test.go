package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)
	clock := NewClock(start)

	if updated := clock.Advance(90 * time.Minute); !updated.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}

	clock.Set(start.Add(2 * time.Hour))
	if got := clock.Now(); !got.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("expected %v, got %v", start.Add(2*time.Hour), got)
	}
}

func TestClockNowFuncFollowsAdvance(t *testing.T) {
	clock := NewClock(time.Time{})
	nowFn := clock.NowFunc()

	clock.Advance(time.Minute)
	if got := nowFn(); !got.Equal(ReferenceTime().Add(time.Minute)) {
		t.Fatalf("expected NowFunc to observe advance, got %v", got)
	}

	var nilClock *Clock
	if nilClock.NowFunc() == nil {
		t.Fatal("expected wall clock fallback for nil clock")
	}
}

func TestClockSessionWindow(t *testing.T) {
	clock := NewClock(time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC))

	start, end := clock.SessionWindow(24*time.Hour, 90*time.Minute)
	if start != "2024-03-02T08:00:00Z" || end != "2024-03-02T09:30:00Z" {
		t.Fatalf("unexpected window %s - %s", start, end)
	}
}
