package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/giftkeeper/internal/common"
)

// Recipient is a person receiving gifts for a holiday.
type Recipient struct {
	ID        string
	UserID    *string
	HolidayID string
	Name      string
	Budget    float64
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r Recipient) Fields() map[string]any {
	return map[string]any{
		FieldHolidayID: r.HolidayID,
		FieldName:      r.Name,
		FieldBudget:    r.Budget,
		FieldNotes:     r.Notes,
	}
}

func (r Recipient) Record() *Record {
	return &Record{ID: r.ID, UserID: r.UserID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Fields: r.Fields()}
}

func RecipientFromRecord(r *Record) Recipient {
	return Recipient{
		ID:        r.ID,
		UserID:    r.UserID,
		HolidayID: r.String(FieldHolidayID),
		Name:      r.String(FieldName),
		Budget:    r.Number(FieldBudget),
		Notes:     r.String(FieldNotes),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (r Recipient) Validate() error {
	if r.HolidayID == "" {
		return fmt.Errorf("%w: recipient must belong to a holiday", common.ErrorValidation)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: recipient name is required", common.ErrorValidation)
	}
	if r.Budget < 0 {
		return fmt.Errorf("%w: budget cannot be negative", common.ErrorValidation)
	}
	return nil
}

func (r Recipient) String() string {
	return fmt.Sprintf("%s  %s  budget %.2f", r.ID, r.Name, r.Budget)
}
