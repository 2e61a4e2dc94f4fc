package hours

import (
	"testing"
	"time"
)

func TestDateHourString(t *testing.T) {
	dh := DateHour{Date: "2025-01-01", Hour: 5}
	expected := "2025-01-01 05"
	if s := dh.String(); s != expected {
		t.Errorf("String() expected %q, got %q", expected, s)
	}
}

func TestDateHourIsoString(t *testing.T) {
	dh := DateHour{Date: "2025-01-01", Hour: 15}
	expected := "2025-01-01T15:00:00Z"
	if s := dh.IsoString(); s != expected {
		t.Errorf("IsoString() expected %q, got %q", expected, s)
	}
}

func TestDateHourAdd(t *testing.T) {
	tests := []struct {
		name     string
		input    DateHour
		addHours int
		expected DateHour
	}{
		{
			name:     "add within same day",
			input:    DateHour{Date: "2025-01-01", Hour: 10},
			addHours: 2,
			expected: DateHour{Date: "2025-01-01", Hour: 12},
		},
		{
			name:     "add crossing midnight",
			input:    DateHour{Date: "2025-01-01", Hour: 23},
			addHours: 2,
			expected: DateHour{Date: "2025-01-02", Hour: 1},
		},
		{
			name:     "add negative hours (subtract)",
			input:    DateHour{Date: "2025-01-01", Hour: 1},
			addHours: -2,
			expected: DateHour{Date: "2024-12-31", Hour: 23},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.input.Add(tt.addHours)
			if result != tt.expected {
				t.Errorf("Add(%d) expected %+v, got %+v", tt.addHours, tt.expected, result)
			}
		})
	}
}

func TestDateHourCompare(t *testing.T) {
	tests := []struct {
		name     string
		a, b     DateHour
		expected int
	}{
		{"equal", DateHour{"2025-01-01", 5}, DateHour{"2025-01-01", 5}, 0},
		{"earlier date", DateHour{"2024-12-31", 23}, DateHour{"2025-01-01", 0}, -1},
		{"later date", DateHour{"2025-01-02", 0}, DateHour{"2025-01-01", 23}, 1},
		{"earlier hour", DateHour{"2025-01-01", 4}, DateHour{"2025-01-01", 5}, -1},
		{"later hour", DateHour{"2025-01-01", 6}, DateHour{"2025-01-01", 5}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.expected {
				t.Errorf("Compare() expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestFromTime(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Stockholm")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	// 00:30 local on Jan 2nd is 23:30 UTC on Jan 1st
	local := time.Date(2025, 1, 2, 0, 30, 0, 0, loc)
	dh := FromTime(local)
	expected := DateHour{Date: "2025-01-01", Hour: 23}
	if dh != expected {
		t.Errorf("FromTime() expected %+v, got %+v", expected, dh)
	}

	if !FromTime(time.Time{}).IsZero() {
		t.Error("FromTime(zero) should be zero")
	}
}

func TestDateHourTimeRoundTrip(t *testing.T) {
	dh := DateHour{Date: "2025-06-15", Hour: 13}
	if got := FromTime(dh.Time()); got != dh {
		t.Errorf("round trip expected %+v, got %+v", dh, got)
	}
}
