package services

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestCanonicalPair(t *testing.T) {
	tests := []struct {
		name     string
		a, b     int64
		wantLow  int64
		wantHigh int64
	}{
		{"already ordered", 3, 42, 3, 42},
		{"reversed", 42, 3, 3, 42},
		{"equal", 7, 7, 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			low, high := canonicalPair(tt.a, tt.b)
			if low != tt.wantLow || high != tt.wantHigh {
				t.Fatalf("canonicalPair(%d, %d) = (%d, %d), want (%d, %d)",
					tt.a, tt.b, low, high, tt.wantLow, tt.wantHigh)
			}
		})
	}
}

func TestCanonicalPairIsSymmetric(t *testing.T) {
	aLow, aHigh := canonicalPair(12, 99)
	bLow, bHigh := canonicalPair(99, 12)
	if aLow != bLow || aHigh != bHigh {
		t.Fatalf("pair order should not matter: (%d,%d) vs (%d,%d)", aLow, aHigh, bLow, bHigh)
	}
}

func TestEditWindowOpen(t *testing.T) {
	createdAt := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"just sent", createdAt.Add(time.Second), true},
		{"at the boundary", createdAt.Add(editWindow), true},
		{"one second past", createdAt.Add(editWindow + time.Second), false},
		{"an hour later", createdAt.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := editWindowOpen(createdAt, tt.now); got != tt.want {
				t.Fatalf("editWindowOpen at %v = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("expected 23505 to be a unique violation")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("foreign key violation should not count")
	}
	if isUniqueViolation(nil) {
		t.Fatal("nil error should not count")
	}
}

func TestFormatMessageTimestamp(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	ts := time.Date(2026, 5, 2, 12, 30, 0, 0, loc)
	if got := FormatMessageTimestamp(ts); got != "2026-05-02T10:30:00Z" {
		t.Fatalf("FormatMessageTimestamp = %q", got)
	}
}
