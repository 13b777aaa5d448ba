package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
	"github.com/dmitrijs2005/giftkeeper/internal/client/repositories/entities"
	"github.com/dmitrijs2005/giftkeeper/internal/client/repositories/syncqueue"
	"github.com/dmitrijs2005/giftkeeper/internal/common"
)

type HolidayService interface {
	Create(ctx context.Context, h models.Holiday) (models.Holiday, error)
	Update(ctx context.Context, h models.Holiday) (models.Holiday, error)
	// Delete removes the holiday, its recipients and every gift that
	// references it.
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (models.Holiday, error)
	// List returns holidays ordered by date, then name.
	List(ctx context.Context) ([]models.Holiday, error)
	Summary(ctx context.Context, id string) (models.HolidaySummary, error)
}

type holidayService struct {
	m          mutator
	recipients RecipientService
	gifts      GiftService
	notifier   Notifier
}

func NewHolidayService(store entities.Repository, queue syncqueue.Repository, recipients RecipientService, gifts GiftService, owner Owner, notifier Notifier) HolidayService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &holidayService{
		m:          newMutator(models.EntityHolidays, store, queue, owner),
		recipients: recipients,
		gifts:      gifts,
		notifier:   notifier,
	}
}

func (s *holidayService) Create(ctx context.Context, h models.Holiday) (models.Holiday, error) {
	if err := h.Validate(); err != nil {
		return models.Holiday{}, err
	}
	rec, err := s.m.create(ctx, h.Fields())
	if err != nil {
		return models.Holiday{}, fmt.Errorf("create holiday: %w", err)
	}
	s.notifier.Notify(ctx)
	return models.HolidayFromRecord(rec), nil
}

func (s *holidayService) Update(ctx context.Context, h models.Holiday) (models.Holiday, error) {
	if err := h.Validate(); err != nil {
		return models.Holiday{}, err
	}
	rec, err := s.m.update(ctx, h.ID, h.Fields())
	if err != nil {
		return models.Holiday{}, fmt.Errorf("update holiday: %w", err)
	}
	s.notifier.Notify(ctx)
	return models.HolidayFromRecord(rec), nil
}

func (s *holidayService) Delete(ctx context.Context, id string) error {
	defer s.notifier.Notify(ctx)

	if _, _, err := s.recipients.DeleteByHoliday(ctx, id); err != nil {
		return fmt.Errorf("delete recipients of holiday %s: %w", id, err)
	}
	// gifts pointing at the holiday through a recipient that no longer
	// exists locally
	if _, err := s.gifts.DeleteByHoliday(ctx, id); err != nil {
		return fmt.Errorf("delete gifts of holiday %s: %w", id, err)
	}

	ok, err := s.m.remove(ctx, id)
	if err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}
	if !ok {
		return fmt.Errorf("holiday %s: %w", id, common.ErrorNotFound)
	}
	return nil
}

func (s *holidayService) Get(ctx context.Context, id string) (models.Holiday, error) {
	rec, err := s.m.store.Get(ctx, id)
	if err != nil {
		return models.Holiday{}, err
	}
	return models.HolidayFromRecord(rec), nil
}

func (s *holidayService) List(ctx context.Context) ([]models.Holiday, error) {
	recs, err := s.m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Holiday, 0, len(recs))
	for _, r := range recs {
		out = append(out, models.HolidayFromRecord(r))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *holidayService) Summary(ctx context.Context, id string) (models.HolidaySummary, error) {
	h, err := s.Get(ctx, id)
	if err != nil {
		return models.HolidaySummary{}, err
	}
	recipients, err := s.recipients.ListByHoliday(ctx, id)
	if err != nil {
		return models.HolidaySummary{}, err
	}
	gifts, err := s.gifts.ListByHoliday(ctx, id)
	if err != nil {
		return models.HolidaySummary{}, err
	}

	sum := models.HolidaySummary{Holiday: h, Recipients: len(recipients), Gifts: len(gifts)}
	for _, g := range gifts {
		sum.Planned += g.Price
		if g.Status.Paid() {
			sum.Spent += g.Price
		}
	}
	return sum, nil
}
