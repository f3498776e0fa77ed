package utils

import (
	"testing"
	"time"
)

func TestFromUnixSecondsRoundTrip(t *testing.T) {
	ts := FromUnixSeconds(1_700_000_000.5)
	if got := ToUnixSeconds(ts); got < 1_700_000_000.49 || got > 1_700_000_000.51 {
		t.Fatalf("round trip drifted: %f", got)
	}
	if !FromUnixSeconds(0).IsZero() {
		t.Fatalf("expected zero time for zero seconds")
	}
	if !FromUnixSeconds(-5).IsZero() {
		t.Fatalf("expected zero time for negative seconds")
	}
}

func TestHourBucket(t *testing.T) {
	base := time.Unix(7200, 0)
	if got := HourBucket(base); got != 2 {
		t.Fatalf("expected bucket 2, got %d", got)
	}
	if got := HourBucket(base.Add(59 * time.Minute)); got != 2 {
		t.Fatalf("expected same bucket before the boundary, got %d", got)
	}
	if got := HourBucket(base.Add(time.Hour)); got != 3 {
		t.Fatalf("expected next bucket at the boundary, got %d", got)
	}
	start := BucketStart(2, time.Hour)
	if !start.Equal(base) {
		t.Fatalf("expected bucket start %v, got %v", base, start)
	}
}

func TestSpanHours(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	if got := SpanHours(start, start.Add(90*time.Minute)); got != 1.5 {
		t.Fatalf("expected 1.5 hours, got %f", got)
	}
	if got := SpanHours(start.Add(time.Hour), start); got != 1 {
		t.Fatalf("expected order-insensitive span, got %f", got)
	}
}
