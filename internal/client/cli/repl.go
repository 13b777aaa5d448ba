package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	AddHoliday(ctx context.Context) error
	EditHoliday(ctx context.Context, args []string) error
	ListHolidays(ctx context.Context) error
	DeleteHoliday(ctx context.Context, args []string) error
	Summary(ctx context.Context, args []string) error

	AddRecipient(ctx context.Context, args []string) error
	EditRecipient(ctx context.Context, args []string) error
	ListRecipients(ctx context.Context, args []string) error
	DeleteRecipient(ctx context.Context, args []string) error

	AddGift(ctx context.Context, args []string) error
	EditGift(ctx context.Context, args []string) error
	ListGifts(ctx context.Context, args []string) error
	MarkGift(ctx context.Context, args []string) error
	DeleteGift(ctx context.Context, args []string) error

	Sync(ctx context.Context) error
	Status(ctx context.Context) error
	Backup(ctx context.Context) error
	Restore(ctx context.Context, args []string) error
}

const (
	helpPlanner = "holidays, addholiday, editholiday <id>, rmholiday <id>, summary <id>, " +
		"recipients <holidayId>, addrecipient <holidayId>, editrecipient <id>, rmrecipient <id>, " +
		"gifts <recipientId> | gifts -h <holidayId>, addgift <recipientId>, editgift <id>, mark <id> <status>, rmgift <id>"
	helpLoggedIn  = "sync, status, backup, restore [key], logout, exit"
	helpLoggedOut = "status, backup, restore [key], register, login, exit"
)

// runREPL starts a simple read–eval–print loop for the GiftKeeper CLI.
//
// It reads a line from reader, parses the first token as the command and
// passes the remaining tokens to it. Unknown commands are reported back to
// the user. The loop exits on EOF, when ctx is done, or when the user types
// "exit" or "quit".
//
// Planner commands work with or without a session: records created while
// logged out are claimed at the next login.
//
// Any errors returned by command handlers are ignored here; handlers print
// their own messages. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("gk %s > ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn("Planner:", helpPlanner)
			if a.isLoggedIn() {
				printlnFn("Account:", helpLoggedIn)
			} else {
				printlnFn("Account:", helpLoggedOut)
			}

		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)

		case "h", "holidays":
			_ = a.ListHolidays(ctx)
		case "addholiday":
			_ = a.AddHoliday(ctx)
		case "editholiday":
			_ = a.EditHoliday(ctx, args)
		case "rmholiday":
			_ = a.DeleteHoliday(ctx, args)
		case "summary":
			_ = a.Summary(ctx, args)

		case "r", "recipients":
			_ = a.ListRecipients(ctx, args)
		case "addrecipient":
			_ = a.AddRecipient(ctx, args)
		case "editrecipient":
			_ = a.EditRecipient(ctx, args)
		case "rmrecipient":
			_ = a.DeleteRecipient(ctx, args)

		case "g", "gifts":
			_ = a.ListGifts(ctx, args)
		case "addgift":
			_ = a.AddGift(ctx, args)
		case "editgift":
			_ = a.EditGift(ctx, args)
		case "mark":
			_ = a.MarkGift(ctx, args)
		case "rmgift":
			_ = a.DeleteGift(ctx, args)

		case "sync":
			_ = a.Sync(ctx)
		case "status":
			_ = a.Status(ctx)
		case "backup":
			_ = a.Backup(ctx)
		case "restore":
			_ = a.Restore(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			// last line had no trailing newline
			return
		}
	}
}
