package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Subjects, also used as event types
const (
	SubjectDayQuoted  = "pricing.day.quoted"
	SubjectEditPriced = "pricing.edit.priced"

	subjectWildcard = "pricing.>"
)

// Event is the envelope published for every quote
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent wraps data in an envelope with a fresh ID and a UTC timestamp
func NewEvent(eventType, source string, data interface{}) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s data: %w", eventType, err)
	}
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

// QuotedJob is one write-back value of a priced day. Price is nil when the
// value is a text tag.
type QuotedJob struct {
	JobID    string   `json:"job_id"`
	Location string   `json:"location"`
	Tier     string   `json:"tier"`
	Role     string   `json:"role"`
	Price    *float64 `json:"price,omitempty"`
	Tag      string   `json:"tag,omitempty"`
}

// DayQuotedData is emitted after a technician's day has been priced
type DayQuotedData struct {
	Technician string      `json:"technician"`
	Date       string      `json:"date"`
	Anchor     string      `json:"anchor_job_id,omitempty"`
	Jobs       []QuotedJob `json:"jobs"`
	QuotedAt   time.Time   `json:"quoted_at"`
}

// EditPricedData is emitted after an edit event has been processed
type EditPricedData struct {
	EditedJobID string      `json:"edited_job_id"`
	Technician  string      `json:"technician"`
	Date        string      `json:"date"`
	Jobs        []QuotedJob `json:"jobs"`
	PricedAt    time.Time   `json:"priced_at"`
}
