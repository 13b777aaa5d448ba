package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
)

func (a *App) promptRecipient(r *models.Recipient) error {
	var err error
	if r.Name, err = GetOptionalText(a.reader, "Recipient name", r.Name, a.out); err != nil {
		return err
	}
	if r.Budget, err = GetAmount(a.reader, "Budget", r.Budget, a.out); err != nil {
		return err
	}
	if r.Notes, err = GetOptionalText(a.reader, "Notes", r.Notes, a.out); err != nil {
		return err
	}
	return nil
}

func (a *App) AddRecipient(ctx context.Context, args []string) error {
	holidayID, err := a.requireArg(args, "addrecipient <holidayId>")
	if err != nil {
		return err
	}
	r := models.Recipient{HolidayID: holidayID}
	if err := a.promptRecipient(&r); err != nil {
		return a.report(err)
	}
	created, err := a.recipientService.Create(ctx, r)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Recipient %s created\n", created.ID)
	return nil
}

func (a *App) EditRecipient(ctx context.Context, args []string) error {
	id, err := a.requireArg(args, "editrecipient <id>")
	if err != nil {
		return err
	}
	r, err := a.recipientService.Get(ctx, id)
	if err != nil {
		return a.report(err)
	}
	if err := a.promptRecipient(&r); err != nil {
		return a.report(err)
	}
	if _, err := a.recipientService.Update(ctx, r); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Recipient updated")
	return nil
}

func (a *App) ListRecipients(ctx context.Context, args []string) error {
	holidayID, err := a.requireArg(args, "recipients <holidayId>")
	if err != nil {
		return err
	}
	list, err := a.recipientService.ListByHoliday(ctx, holidayID)
	if err != nil {
		return a.report(err)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No recipients for this holiday")
		return nil
	}
	for _, r := range list {
		fmt.Fprintln(a.out, r)
	}
	return nil
}

func (a *App) DeleteRecipient(ctx context.Context, args []string) error {
	id, err := a.requireArg(args, "rmrecipient <id>")
	if err != nil {
		return err
	}
	if err := a.recipientService.Delete(ctx, id); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Recipient deleted with their gifts")
	return nil
}
