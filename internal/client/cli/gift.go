package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
)

func (a *App) promptGift(g *models.Gift) error {
	var err error
	if g.Title, err = GetOptionalText(a.reader, "Gift title", g.Title, a.out); err != nil {
		return err
	}
	if g.Price, err = GetAmount(a.reader, "Price", g.Price, a.out); err != nil {
		return err
	}
	if g.URL, err = GetOptionalText(a.reader, "Link", g.URL, a.out); err != nil {
		return err
	}
	if g.Notes, err = GetOptionalText(a.reader, "Notes", g.Notes, a.out); err != nil {
		return err
	}
	return nil
}

func (a *App) AddGift(ctx context.Context, args []string) error {
	recipientID, err := a.requireArg(args, "addgift <recipientId>")
	if err != nil {
		return err
	}
	g := models.Gift{RecipientID: recipientID}
	if err := a.promptGift(&g); err != nil {
		return a.report(err)
	}
	created, err := a.giftService.Create(ctx, g)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Gift %s created (%s)\n", created.ID, created.Status)
	return nil
}

func (a *App) EditGift(ctx context.Context, args []string) error {
	id, err := a.requireArg(args, "editgift <id>")
	if err != nil {
		return err
	}
	g, err := a.giftService.Get(ctx, id)
	if err != nil {
		return a.report(err)
	}
	if err := a.promptGift(&g); err != nil {
		return a.report(err)
	}
	if _, err := a.giftService.Update(ctx, g); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Gift updated")
	return nil
}

// ListGifts lists the gifts of a recipient, or of a whole holiday with
// "gifts -h <holidayId>".
func (a *App) ListGifts(ctx context.Context, args []string) error {
	var (
		list []models.Gift
		err  error
	)
	switch {
	case len(args) == 2 && args[0] == "-h":
		list, err = a.giftService.ListByHoliday(ctx, args[1])
	case len(args) == 1:
		list, err = a.giftService.ListByRecipient(ctx, args[0])
	default:
		fmt.Fprintln(a.out, "Usage: gifts <recipientId> | gifts -h <holidayId>")
		return errUsage
	}
	if err != nil {
		return a.report(err)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No gifts")
		return nil
	}
	for _, g := range list {
		fmt.Fprintln(a.out, g)
	}
	return nil
}

func (a *App) MarkGift(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(a.out, "Usage: mark <giftId> idea|not_bought|bought|wrapped|given")
		return errUsage
	}
	st, err := models.ParseGiftStatus(args[1])
	if err != nil {
		return a.report(err)
	}
	g, err := a.giftService.SetStatus(ctx, args[0], st)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "%s is now %s\n", g.Title, g.Status)
	return nil
}

func (a *App) DeleteGift(ctx context.Context, args []string) error {
	id, err := a.requireArg(args, "rmgift <id>")
	if err != nil {
		return err
	}
	if err := a.giftService.Delete(ctx, id); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Gift deleted")
	return nil
}
