package sheet

import (
	"fmt"

	"github.com/richxcame/visit-pricing/pkg/config"
)

// Layout locates the job fields in a sheet export. Rows and columns are 1-based.
type Layout struct {
	HeaderRows       int
	CityColumn       int
	DateColumn       int
	ValueColumn      int
	NotesColumn      int
	TechnicianColumn int
}

// DefaultLayout skips three header rows and reads C city, D date, E value,
// F notes and G technician
func DefaultLayout() Layout {
	return Layout{
		HeaderRows:       3,
		CityColumn:       3,
		DateColumn:       4,
		ValueColumn:      5,
		NotesColumn:      6,
		TechnicianColumn: 7,
	}
}

// LayoutFromConfig builds a layout from the environment settings
func LayoutFromConfig(cfg config.SheetConfig) Layout {
	return Layout{
		HeaderRows:       cfg.HeaderRows,
		CityColumn:       cfg.CityColumn,
		DateColumn:       cfg.DateColumn,
		ValueColumn:      cfg.ValueColumn,
		NotesColumn:      cfg.NotesColumn,
		TechnicianColumn: cfg.TechnicianColumn,
	}
}

// Validate checks that every column is set and no two fields share a column
func (l Layout) Validate() error {
	if l.HeaderRows < 0 {
		return fmt.Errorf("header rows must not be negative, got %d", l.HeaderRows)
	}

	columns := map[string]int{
		"city":       l.CityColumn,
		"date":       l.DateColumn,
		"value":      l.ValueColumn,
		"notes":      l.NotesColumn,
		"technician": l.TechnicianColumn,
	}
	seen := make(map[int]string, len(columns))
	for name, col := range columns {
		if col < 1 {
			return fmt.Errorf("%s column must be 1 or greater, got %d", name, col)
		}
		if other, dup := seen[col]; dup {
			return fmt.Errorf("%s and %s columns both use column %d", name, other, col)
		}
		seen[col] = name
	}
	return nil
}

// IsTrigger reports whether an edit at (row, col) should re-price the row's day.
// Only data rows and the city, date, notes and technician columns trigger.
func (l Layout) IsTrigger(row, col int) bool {
	if row <= l.HeaderRows {
		return false
	}
	switch col {
	case l.CityColumn, l.DateColumn, l.NotesColumn, l.TechnicianColumn:
		return true
	}
	return false
}
