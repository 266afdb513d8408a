package extract

import (
	"testing"
	"time"

	"atlas/models"
)

func TestDetermineStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	daysAgo := func(d int) *time.Time {
		ts := now.AddDate(0, 0, -d)
		return &ts
	}

	testCases := []struct {
		name          string
		endMissionSet bool
		recentProfile *time.Time
		expected      models.Status
	}{
		{"recent profile", false, daysAgo(10), models.StatusActive},
		{"just inside active window", false, daysAgo(44), models.StatusActive},
		{"silent for months", false, daysAgo(45), models.StatusInactive},
		{"silent for a year", false, daysAgo(400), models.StatusInactive},
		{"silent past dead threshold", false, daysAgo(540), models.StatusDead},
		{"silent for years", false, daysAgo(2000), models.StatusDead},
		{"no profile evidence", false, nil, models.StatusUnknown},
		{"end mission wins over recent profile", true, daysAgo(1), models.StatusInactive},
		{"end mission without profiles", true, nil, models.StatusInactive},
	}

	for _, c := range testCases {
		got := DetermineStatus(c.endMissionSet, c.recentProfile, now)
		if got != c.expected {
			t.Errorf("%s: got %q, expected %q", c.name, got, c.expected)
		}
	}
}
