package dayplan

import (
	"fmt"
	"time"

	"github.com/richxcame/visit-pricing/pkg/models"
)

// Build selects the jobs of one technician on one calendar day, keeping
// input order. Technician identity must match exactly.
func Build(jobs []models.Job, technician string, date time.Time) (*models.DayPlan, error) {
	plan := &models.DayPlan{
		Technician: technician,
		Date:       models.CalendarDay(date),
	}

	for _, job := range jobs {
		if job.Technician == technician && models.SameDay(job.Date, date) {
			plan.Jobs = append(plan.Jobs, job)
		}
	}

	if len(plan.Jobs) == 0 {
		return nil, fmt.Errorf("%w: %s on %s", models.ErrEmptyPlan, technician, date.Format("2006-01-02"))
	}

	return plan, nil
}

type groupKey struct {
	technician string
	year       int
	month      time.Month
	day        int
}

// GroupAll splits jobs into one plan per (technician, calendar day), ordered
// by the first appearance of each group in the input.
func GroupAll(jobs []models.Job) []*models.DayPlan {
	index := make(map[groupKey]*models.DayPlan)
	var plans []*models.DayPlan

	for _, job := range jobs {
		y, m, d := job.Date.Date()
		key := groupKey{technician: job.Technician, year: y, month: m, day: d}

		plan, ok := index[key]
		if !ok {
			plan = &models.DayPlan{
				Technician: job.Technician,
				Date:       models.CalendarDay(job.Date),
			}
			index[key] = plan
			plans = append(plans, plan)
		}
		plan.Jobs = append(plan.Jobs, job)
	}

	return plans
}
