package utils

import (
	"math"
	"time"
)

// FromUnixSeconds converts float64 epoch seconds into a time.Time. Zero and
// negative inputs yield the zero time.
func FromUnixSeconds(seconds float64) time.Time {
	if seconds <= 0 {
		return time.Time{}
	}
	sec, frac := math.Modf(seconds)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

// ToUnixSeconds converts a time.Time into float64 epoch seconds. The zero
// time yields 0.
func ToUnixSeconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / float64(time.Second)
}

// HourBucket returns the hourly bucket index for a timestamp, i.e.
// floor(epoch seconds / 3600).
func HourBucket(t time.Time) int64 {
	return t.Unix() / 3600
}

// BucketStart returns the wall-clock start of a fixed-width bucket.
func BucketStart(bucket int64, width time.Duration) time.Time {
	return time.Unix(bucket*int64(width/time.Second), 0).UTC()
}

// SpanHours returns the span between two timestamps in hours, never negative.
func SpanHours(first, last time.Time) float64 {
	if last.Before(first) {
		first, last = last, first
	}
	return last.Sub(first).Hours()
}
