package models

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyPlan is returned when a technician has no jobs on the requested day.
var ErrEmptyPlan = errors.New("no jobs for technician on date")

// Tier represents the pricing category of a visit
type Tier string

const (
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// Valid reports whether the tier is one of the known tiers
func (t Tier) Valid() bool {
	return t == TierStandard || t == TierPremium
}

// TierFromNotes maps the free-text notes of a visit to a tier. The notes
// select the premium tier only when they equal the keyword after trimming
// and upper-casing.
func TierFromNotes(notes, premiumKeyword string) Tier {
	keyword := strings.ToUpper(strings.TrimSpace(premiumKeyword))
	if keyword != "" && strings.ToUpper(strings.TrimSpace(notes)) == keyword {
		return TierPremium
	}
	return TierStandard
}

// Job is a single service call assigned to a technician
type Job struct {
	ID         string    `json:"id"`
	Location   string    `json:"location"`
	Tier       Tier      `json:"tier"`
	Technician string    `json:"technician"`
	Date       time.Time `json:"date"`
}

// DayPlan holds the jobs of one technician on one calendar day, in input order
type DayPlan struct {
	Technician string    `json:"technician"`
	Date       time.Time `json:"date"`
	Jobs       []Job     `json:"jobs"`
}

// Len returns the number of jobs in the plan
func (p *DayPlan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Jobs)
}

// CalendarDay truncates t to midnight in its own location.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day, ignoring time of day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
