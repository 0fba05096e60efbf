package util

import (
	"testing"
	"time"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		want string
	}{
		{"zero", 0, "0"},
		{"small", 500, "500"},
		{"thousands", 1500, "1.5K"},
		{"exact thousand", 1000, "1.0K"},
		{"millions", 1500000, "1.5M"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatNumber(tt.in); got != tt.want {
				t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatDateTime(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"valid", time.Date(2026, 8, 30, 12, 34, 56, 0, time.UTC), "2026-08-30 12:34"},
		{"zero", time.Time{}, "never"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDateTime(tt.in); got != tt.want {
				t.Errorf("FormatDateTime(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTimeRFC3339(t *testing.T) {
	parsed := ParseTimeRFC3339("2026-08-30T12:00:00Z")
	want := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if !parsed.Equal(want) {
		t.Errorf("ParseTimeRFC3339 = %v, want %v", parsed, want)
	}
	if !ParseTimeRFC3339("garbage").IsZero() {
		t.Error("invalid input should yield zero time")
	}
}

func TestBoolToInt64(t *testing.T) {
	if BoolToInt64(true) != 1 || BoolToInt64(false) != 0 {
		t.Error("BoolToInt64 mapping wrong")
	}
}
