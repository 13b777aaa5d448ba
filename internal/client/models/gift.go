package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/giftkeeper/internal/common"
)

// GiftStatus tracks a gift from idea to handover.
type GiftStatus string

const (
	GiftIdea      GiftStatus = "idea"
	GiftNotBought GiftStatus = "not_bought"
	GiftBought    GiftStatus = "bought"
	GiftWrapped   GiftStatus = "wrapped"
	GiftGiven     GiftStatus = "given"
)

func ParseGiftStatus(s string) (GiftStatus, error) {
	switch st := GiftStatus(s); st {
	case GiftIdea, GiftNotBought, GiftBought, GiftWrapped, GiftGiven:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown gift status %q", common.ErrorValidation, s)
}

// Paid reports whether the gift's price already counts as spent.
func (s GiftStatus) Paid() bool {
	return s == GiftBought || s == GiftWrapped || s == GiftGiven
}

// Gift is a present planned for a recipient. HolidayID duplicates the
// recipient's holiday so gifts can be queried per holiday directly.
type Gift struct {
	ID          string
	UserID      *string
	RecipientID string
	HolidayID   string
	Title       string
	Price       float64
	Status      GiftStatus
	URL         string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (g Gift) Fields() map[string]any {
	return map[string]any{
		FieldRecipientID: g.RecipientID,
		FieldHolidayID:   g.HolidayID,
		FieldTitle:       g.Title,
		FieldPrice:       g.Price,
		FieldStatus:      string(g.Status),
		FieldURL:         g.URL,
		FieldNotes:       g.Notes,
	}
}

func (g Gift) Record() *Record {
	return &Record{ID: g.ID, UserID: g.UserID, CreatedAt: g.CreatedAt, UpdatedAt: g.UpdatedAt, Fields: g.Fields()}
}

func GiftFromRecord(r *Record) Gift {
	return Gift{
		ID:          r.ID,
		UserID:      r.UserID,
		RecipientID: r.String(FieldRecipientID),
		HolidayID:   r.String(FieldHolidayID),
		Title:       r.String(FieldTitle),
		Price:       r.Number(FieldPrice),
		Status:      GiftStatus(r.String(FieldStatus)),
		URL:         r.String(FieldURL),
		Notes:       r.String(FieldNotes),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (g Gift) Validate() error {
	if g.RecipientID == "" {
		return fmt.Errorf("%w: gift must belong to a recipient", common.ErrorValidation)
	}
	if strings.TrimSpace(g.Title) == "" {
		return fmt.Errorf("%w: gift title is required", common.ErrorValidation)
	}
	if g.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", common.ErrorValidation)
	}
	if _, err := ParseGiftStatus(string(g.Status)); err != nil {
		return err
	}
	return nil
}

func (g Gift) String() string {
	return fmt.Sprintf("%s  %-10s  %8.2f  %s", g.ID, g.Status, g.Price, g.Title)
}
