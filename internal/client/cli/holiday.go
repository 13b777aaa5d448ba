package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
)

var errUsage = errors.New("usage")

// requireArg returns args[0] or prints usage and errUsage.
func (a *App) requireArg(args []string, usage string) (string, error) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage:", usage)
		return "", errUsage
	}
	return args[0], nil
}

// report prints err for the user and returns it unchanged.
func (a *App) report(err error) error {
	if err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", err)
	}
	return err
}

// promptHoliday fills h interactively, keeping current values on empty input.
func (a *App) promptHoliday(h *models.Holiday) error {
	var err error
	if h.Name, err = GetOptionalText(a.reader, "Holiday name", h.Name, a.out); err != nil {
		return err
	}
	if h.Date, err = GetOptionalText(a.reader, "Date (YYYY-MM-DD)", h.Date, a.out); err != nil {
		return err
	}
	if h.Budget, err = GetAmount(a.reader, "Budget", h.Budget, a.out); err != nil {
		return err
	}
	if h.Notes, err = GetOptionalText(a.reader, "Notes", h.Notes, a.out); err != nil {
		return err
	}
	return nil
}

func (a *App) AddHoliday(ctx context.Context) error {
	var h models.Holiday
	if err := a.promptHoliday(&h); err != nil {
		return a.report(err)
	}
	created, err := a.holidayService.Create(ctx, h)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Holiday %s created\n", created.ID)
	return nil
}

func (a *App) EditHoliday(ctx context.Context, args []string) error {
	id, err := a.requireArg(args, "editholiday <id>")
	if err != nil {
		return err
	}
	h, err := a.holidayService.Get(ctx, id)
	if err != nil {
		return a.report(err)
	}
	if err := a.promptHoliday(&h); err != nil {
		return a.report(err)
	}
	if _, err := a.holidayService.Update(ctx, h); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Holiday updated")
	return nil
}

func (a *App) ListHolidays(ctx context.Context) error {
	list, err := a.holidayService.List(ctx)
	if err != nil {
		return a.report(err)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No holidays yet")
		return nil
	}
	for _, h := range list {
		fmt.Fprintln(a.out, h)
	}
	return nil
}

func (a *App) DeleteHoliday(ctx context.Context, args []string) error {
	id, err := a.requireArg(args, "rmholiday <id>")
	if err != nil {
		return err
	}
	if err := a.holidayService.Delete(ctx, id); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Holiday deleted with its recipients and gifts")
	return nil
}

func (a *App) Summary(ctx context.Context, args []string) error {
	id, err := a.requireArg(args, "summary <holidayId>")
	if err != nil {
		return err
	}
	s, err := a.holidayService.Summary(ctx, id)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "%s (%s)\n", s.Holiday.Name, s.Holiday.Date)
	fmt.Fprintf(a.out, "  recipients: %d, gifts: %d\n", s.Recipients, s.Gifts)
	fmt.Fprintf(a.out, "  budget %.2f, planned %.2f, spent %.2f, remaining %.2f\n",
		s.Holiday.Budget, s.Planned, s.Spent, s.Remaining())
	return nil
}
