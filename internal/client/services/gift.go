package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
	"github.com/dmitrijs2005/giftkeeper/internal/client/repositories/entities"
	"github.com/dmitrijs2005/giftkeeper/internal/client/repositories/syncqueue"
	"github.com/dmitrijs2005/giftkeeper/internal/common"
)

type GiftService interface {
	// Create fills HolidayID from the recipient.
	Create(ctx context.Context, g models.Gift) (models.Gift, error)
	Update(ctx context.Context, g models.Gift) (models.Gift, error)
	SetStatus(ctx context.Context, id string, status models.GiftStatus) (models.Gift, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (models.Gift, error)
	ListByRecipient(ctx context.Context, recipientID string) ([]models.Gift, error)
	ListByHoliday(ctx context.Context, holidayID string) ([]models.Gift, error)

	// DeleteByRecipient and DeleteByHoliday are cascade steps. They enqueue
	// the deletes but leave notifying to the caller.
	DeleteByRecipient(ctx context.Context, recipientID string) (int, error)
	DeleteByHoliday(ctx context.Context, holidayID string) (int, error)
}

type giftService struct {
	m          mutator
	recipients entities.Repository
	notifier   Notifier
}

func NewGiftService(store, recipients entities.Repository, queue syncqueue.Repository, owner Owner, notifier Notifier) GiftService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &giftService{
		m:          newMutator(models.EntityGifts, store, queue, owner),
		recipients: recipients,
		notifier:   notifier,
	}
}

func (s *giftService) recipientHoliday(ctx context.Context, recipientID string) (string, error) {
	rec, err := s.recipients.Get(ctx, recipientID)
	if errors.Is(err, common.ErrorNotFound) {
		return "", fmt.Errorf("%w: recipient %s does not exist", common.ErrorValidation, recipientID)
	}
	if err != nil {
		return "", err
	}
	return rec.String(models.FieldHolidayID), nil
}

func (s *giftService) Create(ctx context.Context, g models.Gift) (models.Gift, error) {
	if g.Status == "" {
		g.Status = models.GiftIdea
	}
	if err := g.Validate(); err != nil {
		return models.Gift{}, err
	}
	holidayID, err := s.recipientHoliday(ctx, g.RecipientID)
	if err != nil {
		return models.Gift{}, err
	}
	g.HolidayID = holidayID

	rec, err := s.m.create(ctx, g.Fields())
	if err != nil {
		return models.Gift{}, fmt.Errorf("create gift: %w", err)
	}
	s.notifier.Notify(ctx)
	return models.GiftFromRecord(rec), nil
}

func (s *giftService) Update(ctx context.Context, g models.Gift) (models.Gift, error) {
	if err := g.Validate(); err != nil {
		return models.Gift{}, err
	}
	holidayID, err := s.recipientHoliday(ctx, g.RecipientID)
	if err != nil {
		return models.Gift{}, err
	}
	g.HolidayID = holidayID

	rec, err := s.m.update(ctx, g.ID, g.Fields())
	if err != nil {
		return models.Gift{}, fmt.Errorf("update gift: %w", err)
	}
	s.notifier.Notify(ctx)
	return models.GiftFromRecord(rec), nil
}

func (s *giftService) SetStatus(ctx context.Context, id string, status models.GiftStatus) (models.Gift, error) {
	if _, err := models.ParseGiftStatus(string(status)); err != nil {
		return models.Gift{}, err
	}
	rec, err := s.m.update(ctx, id, map[string]any{models.FieldStatus: string(status)})
	if err != nil {
		return models.Gift{}, fmt.Errorf("set gift status: %w", err)
	}
	s.notifier.Notify(ctx)
	return models.GiftFromRecord(rec), nil
}

func (s *giftService) Delete(ctx context.Context, id string) error {
	ok, err := s.m.remove(ctx, id)
	if err != nil {
		return fmt.Errorf("delete gift: %w", err)
	}
	if !ok {
		return fmt.Errorf("gift %s: %w", id, common.ErrorNotFound)
	}
	s.notifier.Notify(ctx)
	return nil
}

func (s *giftService) Get(ctx context.Context, id string) (models.Gift, error) {
	rec, err := s.m.store.Get(ctx, id)
	if err != nil {
		return models.Gift{}, err
	}
	return models.GiftFromRecord(rec), nil
}

func (s *giftService) ListByRecipient(ctx context.Context, recipientID string) ([]models.Gift, error) {
	return s.listBy(ctx, models.FieldRecipientID, recipientID)
}

func (s *giftService) ListByHoliday(ctx context.Context, holidayID string) ([]models.Gift, error) {
	return s.listBy(ctx, models.FieldHolidayID, holidayID)
}

func (s *giftService) listBy(ctx context.Context, field, value string) ([]models.Gift, error) {
	recs, err := s.m.store.ListBy(ctx, field, value)
	if err != nil {
		return nil, err
	}
	out := make([]models.Gift, 0, len(recs))
	for _, r := range recs {
		out = append(out, models.GiftFromRecord(r))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *giftService) DeleteByRecipient(ctx context.Context, recipientID string) (int, error) {
	return s.m.removeBy(ctx, models.FieldRecipientID, recipientID)
}

func (s *giftService) DeleteByHoliday(ctx context.Context, holidayID string) (int, error) {
	return s.m.removeBy(ctx, models.FieldHolidayID, holidayID)
}
