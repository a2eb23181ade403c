package models

import (
	"testing"
	"time"
)

// ==================== Tier Tests ====================

func TestTierFromNotes(t *testing.T) {
	tests := []struct {
		name     string
		notes    string
		keyword  string
		expected Tier
	}{
		{"exact keyword", "SVD", "SVD", TierPremium},
		{"lower case with spaces", "  svd ", "SVD", TierPremium},
		{"keyword inside text", "SVD call", "SVD", TierStandard},
		{"empty notes", "", "SVD", TierStandard},
		{"empty keyword", "", "", TierStandard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TierFromNotes(tt.notes, tt.keyword); got != tt.expected {
				t.Errorf("TierFromNotes(%q, %q) = %s, want %s", tt.notes, tt.keyword, got, tt.expected)
			}
		})
	}
}

func TestTier_Valid(t *testing.T) {
	if !TierStandard.Valid() || !TierPremium.Valid() {
		t.Error("known tiers should be valid")
	}
	if Tier("gold").Valid() {
		t.Error("unknown tier should be invalid")
	}
}

// ==================== Date Tests ====================

func TestSameDay_IgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2024, 3, 5, 8, 15, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 5, 22, 45, 0, 0, time.UTC)
	nextDay := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)

	if !SameDay(morning, evening) {
		t.Error("expected same day")
	}
	if SameDay(evening, nextDay) {
		t.Error("expected different days")
	}
}

func TestCalendarDay(t *testing.T) {
	in := time.Date(2024, 3, 5, 13, 30, 10, 5, time.UTC)
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	if got := CalendarDay(in); !got.Equal(want) {
		t.Errorf("CalendarDay = %v, want %v", got, want)
	}
}

func TestDayPlan_Len(t *testing.T) {
	var nilPlan *DayPlan
	if nilPlan.Len() != 0 {
		t.Error("nil plan should have length 0")
	}
	plan := &DayPlan{Jobs: []Job{{ID: "1"}, {ID: "2"}}}
	if plan.Len() != 2 {
		t.Errorf("Len = %d, want 2", plan.Len())
	}
}
