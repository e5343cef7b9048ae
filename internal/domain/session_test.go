package domain_test

import (
	"testing"
	"time"

	"vidaleve/coaching-app/internal/domain"
)

func TestSessionStatusCanTransition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to domain.SessionStatus
		want     bool
	}{
		{domain.SessionSent, domain.SessionViewed, true},
		{domain.SessionSent, domain.SessionInProgress, true},
		{domain.SessionSent, domain.SessionCompleted, true},
		{domain.SessionViewed, domain.SessionInProgress, true},
		{domain.SessionViewed, domain.SessionCompleted, true},
		{domain.SessionInProgress, domain.SessionCompleted, true},

		// No backwards moves, no self moves.
		{domain.SessionViewed, domain.SessionSent, false},
		{domain.SessionInProgress, domain.SessionViewed, false},
		{domain.SessionCompleted, domain.SessionInProgress, false},
		{domain.SessionCompleted, domain.SessionSent, false},
		{domain.SessionSent, domain.SessionSent, false},
		{domain.SessionCompleted, domain.SessionCompleted, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestSessionAdvanceRecordsTimestamps(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	s := &domain.Session{Status: domain.SessionSent}

	if !s.Advance(domain.SessionInProgress, at) {
		t.Fatalf("advance sent -> in_progress refused")
	}
	if s.ViewedAt == nil || !s.ViewedAt.Equal(at) {
		t.Fatalf("ViewedAt = %v, want %v (starting implies viewing)", s.ViewedAt, at)
	}
	if s.StartedAt == nil || !s.StartedAt.Equal(at) {
		t.Fatalf("StartedAt = %v, want %v", s.StartedAt, at)
	}

	later := at.Add(time.Hour)
	if !s.Advance(domain.SessionCompleted, later) {
		t.Fatalf("advance in_progress -> completed refused")
	}
	if s.CompletedAt == nil || !s.CompletedAt.Equal(later) {
		t.Fatalf("CompletedAt = %v, want %v", s.CompletedAt, later)
	}

	// Terminal state: nothing moves and nothing is overwritten.
	if s.Advance(domain.SessionViewed, later.Add(time.Hour)) {
		t.Fatalf("advance out of completed accepted")
	}
	if !s.StartedAt.Equal(at) {
		t.Fatalf("StartedAt overwritten: %v", s.StartedAt)
	}
}

func TestSessionAdvanceViewedDoesNotSetStarted(t *testing.T) {
	t.Parallel()

	s := &domain.Session{Status: domain.SessionSent}
	if !s.Advance(domain.SessionViewed, time.Now()) {
		t.Fatalf("advance sent -> viewed refused")
	}
	if s.StartedAt != nil {
		t.Fatalf("StartedAt set by a view")
	}
}
