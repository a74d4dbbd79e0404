package model

import "testing"

func TestCanTransitionPhase_AllowsExpectedPaths(t *testing.T) {
	cases := []struct {
		from RunPhase
		to   RunPhase
	}{
		{PhaseIdle, PhaseCapturing},
		{PhaseCapturing, PhaseRunning},
		{PhaseCapturing, PhaseAborted},
		{PhaseRunning, PhaseRestoring},
		{PhaseRestoring, PhaseReverting},
		{PhaseReverting, PhaseDone},
	}

	for _, tc := range cases {
		if !CanTransitionPhase(tc.from, tc.to) {
			t.Fatalf("expected transition %q -> %q to be allowed", tc.from, tc.to)
		}
	}
}

func TestCanTransitionPhase_RejectsInvalidPaths(t *testing.T) {
	cases := []struct {
		from RunPhase
		to   RunPhase
	}{
		{PhaseIdle, PhaseRunning},
		{PhaseRunning, PhaseAborted},
		{PhaseRunning, PhaseDone},
		{PhaseDone, PhaseIdle},
		{PhaseAborted, PhaseRunning},
		{"not_a_phase", PhaseCapturing},
	}

	for _, tc := range cases {
		if CanTransitionPhase(tc.from, tc.to) {
			t.Fatalf("expected transition %q -> %q to be rejected", tc.from, tc.to)
		}
	}
}

func TestTransitionPhase_BlocksIllegalTransition(t *testing.T) {
	phase := PhaseIdle
	if err := TransitionPhase(&phase, PhaseDone); err == nil {
		t.Fatalf("expected illegal transition error")
	}
	if phase != PhaseIdle {
		t.Fatalf("phase changed on rejected transition: %q", phase)
	}
	if err := TransitionPhase(&phase, PhaseCapturing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if phase != PhaseCapturing {
		t.Fatalf("expected capturing, got %q", phase)
	}
}

func TestFormatFileNumbers(t *testing.T) {
	if got := FormatFileNumbers([]int{1, 20, 3}); got != "[1, 20, 3]" {
		t.Fatalf("unexpected rendering %q", got)
	}
	if got := FormatFileNumbers(nil); got != "[]" {
		t.Fatalf("unexpected empty rendering %q", got)
	}
}
