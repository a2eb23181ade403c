package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/richxcame/visit-pricing/pkg/models"
)

// ErrRowNotFound means the row number is a header row or past the end of the sheet
var ErrRowNotFound = errors.New("row not found")

// dateLayouts are the date renderings accepted in the date column
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
	"1/2/2006 15:04:05",
	"2006/01/02",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseDate parses a date cell and truncates it to the calendar day
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return models.CalendarDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}

// Row is one data row of the sheet. Valid is false when the technician is
// empty or the date does not parse; such rows are not priced.
type Row struct {
	Number int
	Job    models.Job
	Valid  bool
}

// Sheet is an in-memory sheet export
type Sheet struct {
	layout  Layout
	records [][]string
	rows    []Row
}

// Read parses a CSV export. The job ID of each row is its 1-based row number.
func Read(r io.Reader, layout Layout, premiumKeyword string) (*Sheet, error) {
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sheet layout: %w", err)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}

	s := &Sheet{layout: layout, records: records}
	for i := layout.HeaderRows; i < len(records); i++ {
		s.rows = append(s.rows, s.parseRow(i+1, records[i], premiumKeyword))
	}
	return s, nil
}

func (s *Sheet) parseRow(number int, record []string, premiumKeyword string) Row {
	job := models.Job{
		ID:         strconv.Itoa(number),
		Location:   strings.TrimSpace(cell(record, s.layout.CityColumn)),
		Tier:       models.TierFromNotes(cell(record, s.layout.NotesColumn), premiumKeyword),
		Technician: strings.TrimSpace(cell(record, s.layout.TechnicianColumn)),
	}

	valid := job.Technician != ""
	if date, err := ParseDate(cell(record, s.layout.DateColumn)); err == nil {
		job.Date = date
	} else {
		valid = false
	}

	return Row{Number: number, Job: job, Valid: valid}
}

// Layout returns the sheet layout
func (s *Sheet) Layout() Layout {
	return s.layout
}

// Rows returns every data row, valid or not
func (s *Sheet) Rows() []Row {
	return s.rows
}

// Jobs returns the jobs of the valid rows in sheet order
func (s *Sheet) Jobs() []models.Job {
	jobs := make([]models.Job, 0, len(s.rows))
	for _, row := range s.rows {
		if row.Valid {
			jobs = append(jobs, row.Job)
		}
	}
	return jobs
}

// Row returns the data row with the given 1-based number
func (s *Sheet) Row(number int) (Row, error) {
	i := number - s.layout.HeaderRows - 1
	if i < 0 || i >= len(s.rows) {
		return Row{}, fmt.Errorf("%w: %d", ErrRowNotFound, number)
	}
	return s.rows[i], nil
}

// EditJobs returns the jobs to hand to edit processing for the given row:
// every valid job, plus the edited row itself when it is not valid.
func (s *Sheet) EditJobs(number int) ([]models.Job, error) {
	row, err := s.Row(number)
	if err != nil {
		return nil, err
	}
	jobs := s.Jobs()
	if !row.Valid {
		jobs = append(jobs, row.Job)
	}
	return jobs, nil
}

// SetValue writes the value cell of the row whose job ID is jobID
func (s *Sheet) SetValue(jobID, value string) error {
	number, err := strconv.Atoi(jobID)
	if err != nil {
		return fmt.Errorf("%w: job id %q", ErrRowNotFound, jobID)
	}
	if _, err := s.Row(number); err != nil {
		return err
	}

	record := s.records[number-1]
	for len(record) < s.layout.ValueColumn {
		record = append(record, "")
	}
	record[s.layout.ValueColumn-1] = value
	s.records[number-1] = record
	return nil
}

// Value returns the value cell of a row
func (s *Sheet) Value(number int) string {
	if number < 1 || number > len(s.records) {
		return ""
	}
	return cell(s.records[number-1], s.layout.ValueColumn)
}

// Write emits the sheet, header rows included, as CSV
func (s *Sheet) Write(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(s.records); err != nil {
		return fmt.Errorf("write sheet: %w", err)
	}
	return nil
}

func cell(record []string, col int) string {
	if col < 1 || col > len(record) {
		return ""
	}
	return record[col-1]
}
