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

type RecipientService interface {
	Create(ctx context.Context, r models.Recipient) (models.Recipient, error)
	Update(ctx context.Context, r models.Recipient) (models.Recipient, error)
	// Delete removes the recipient together with its gifts.
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (models.Recipient, error)
	ListByHoliday(ctx context.Context, holidayID string) ([]models.Recipient, error)

	// DeleteByHoliday cascades to gifts and returns the number of recipients
	// and gifts removed. Notifying is left to the caller.
	DeleteByHoliday(ctx context.Context, holidayID string) (recipients int, gifts int, err error)
}

type recipientService struct {
	m        mutator
	holidays entities.Repository
	gifts    GiftService
	notifier Notifier
}

func NewRecipientService(store, holidays entities.Repository, queue syncqueue.Repository, gifts GiftService, owner Owner, notifier Notifier) RecipientService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &recipientService{
		m:        newMutator(models.EntityRecipients, store, queue, owner),
		holidays: holidays,
		gifts:    gifts,
		notifier: notifier,
	}
}

func (s *recipientService) checkHoliday(ctx context.Context, id string) error {
	_, err := s.holidays.Get(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%w: holiday %s does not exist", common.ErrorValidation, id)
	}
	return err
}

func (s *recipientService) Create(ctx context.Context, r models.Recipient) (models.Recipient, error) {
	if err := r.Validate(); err != nil {
		return models.Recipient{}, err
	}
	if err := s.checkHoliday(ctx, r.HolidayID); err != nil {
		return models.Recipient{}, err
	}

	rec, err := s.m.create(ctx, r.Fields())
	if err != nil {
		return models.Recipient{}, fmt.Errorf("create recipient: %w", err)
	}
	s.notifier.Notify(ctx)
	return models.RecipientFromRecord(rec), nil
}

func (s *recipientService) Update(ctx context.Context, r models.Recipient) (models.Recipient, error) {
	if err := r.Validate(); err != nil {
		return models.Recipient{}, err
	}
	if err := s.checkHoliday(ctx, r.HolidayID); err != nil {
		return models.Recipient{}, err
	}

	rec, err := s.m.update(ctx, r.ID, r.Fields())
	if err != nil {
		return models.Recipient{}, fmt.Errorf("update recipient: %w", err)
	}
	s.notifier.Notify(ctx)
	return models.RecipientFromRecord(rec), nil
}

func (s *recipientService) Delete(ctx context.Context, id string) error {
	if _, err := s.gifts.DeleteByRecipient(ctx, id); err != nil {
		return fmt.Errorf("delete gifts of recipient %s: %w", id, err)
	}
	ok, err := s.m.remove(ctx, id)
	if err != nil {
		return fmt.Errorf("delete recipient: %w", err)
	}
	s.notifier.Notify(ctx)
	if !ok {
		return fmt.Errorf("recipient %s: %w", id, common.ErrorNotFound)
	}
	return nil
}

func (s *recipientService) Get(ctx context.Context, id string) (models.Recipient, error) {
	rec, err := s.m.store.Get(ctx, id)
	if err != nil {
		return models.Recipient{}, err
	}
	return models.RecipientFromRecord(rec), nil
}

func (s *recipientService) ListByHoliday(ctx context.Context, holidayID string) ([]models.Recipient, error) {
	recs, err := s.m.store.ListBy(ctx, models.FieldHolidayID, holidayID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Recipient, 0, len(recs))
	for _, r := range recs {
		out = append(out, models.RecipientFromRecord(r))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *recipientService) DeleteByHoliday(ctx context.Context, holidayID string) (int, int, error) {
	recs, err := s.m.store.ListBy(ctx, models.FieldHolidayID, holidayID)
	if err != nil {
		return 0, 0, err
	}

	var recipients, gifts int
	for _, r := range recs {
		n, err := s.gifts.DeleteByRecipient(ctx, r.ID)
		gifts += n
		if err != nil {
			return recipients, gifts, err
		}
		ok, err := s.m.remove(ctx, r.ID)
		if err != nil {
			return recipients, gifts, err
		}
		if ok {
			recipients++
		}
	}
	return recipients, gifts, nil
}
