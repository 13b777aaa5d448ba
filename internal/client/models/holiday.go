package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/giftkeeper/internal/common"
)

// Local field names. The remote adapter owns the mapping to column names.
const (
	FieldName        = "name"
	FieldDate        = "date"
	FieldBudget      = "budget"
	FieldNotes       = "notes"
	FieldHolidayID   = "holidayId"
	FieldRecipientID = "recipientId"
	FieldTitle       = "title"
	FieldPrice       = "price"
	FieldStatus      = "status"
	FieldURL         = "url"
)

// Holiday is an occasion gifts are planned for.
type Holiday struct {
	ID        string
	UserID    *string
	Name      string
	Date      string // YYYY-MM-DD
	Budget    float64
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (h Holiday) Fields() map[string]any {
	return map[string]any{
		FieldName:   h.Name,
		FieldDate:   h.Date,
		FieldBudget: h.Budget,
		FieldNotes:  h.Notes,
	}
}

func (h Holiday) Record() *Record {
	return &Record{ID: h.ID, UserID: h.UserID, CreatedAt: h.CreatedAt, UpdatedAt: h.UpdatedAt, Fields: h.Fields()}
}

func HolidayFromRecord(r *Record) Holiday {
	return Holiday{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.String(FieldName),
		Date:      r.String(FieldDate),
		Budget:    r.Number(FieldBudget),
		Notes:     r.String(FieldNotes),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (h Holiday) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("%w: holiday name is required", common.ErrorValidation)
	}
	if _, err := time.Parse(common.DateLayout, h.Date); err != nil {
		return fmt.Errorf("%w: holiday date must be YYYY-MM-DD", common.ErrorValidation)
	}
	if h.Budget < 0 {
		return fmt.Errorf("%w: budget cannot be negative", common.ErrorValidation)
	}
	return nil
}

func (h Holiday) String() string {
	return fmt.Sprintf("%s  %s  %s  budget %.2f", h.ID, h.Date, h.Name, h.Budget)
}

// HolidaySummary aggregates the planned and spent amounts of a holiday.
type HolidaySummary struct {
	Holiday    Holiday
	Recipients int
	Gifts      int
	Planned    float64
	Spent      float64
}

// Remaining is the budget left after gifts already paid for.
func (s HolidaySummary) Remaining() float64 {
	return s.Holiday.Budget - s.Spent
}
