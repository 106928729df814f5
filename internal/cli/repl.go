package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLocked() bool
	Unlock(ctx context.Context) error
	Lock(ctx context.Context) error
	EncryptOn(ctx context.Context) error
	EncryptOff(ctx context.Context) error
	AddMedication(ctx context.Context) error
	ListMedications(ctx context.Context) error
	DeleteMedication(ctx context.Context, arg string) error
	Today(ctx context.Context) error
	Notifications(ctx context.Context) error
	Snooze(ctx context.Context, args []string) error
	Dismiss(ctx context.Context, arg string) error
	Taken(ctx context.Context, arg string) error
	History(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the MedTrack CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Locked:
//	  - help           — show available commands
//	  - unlock         — open the vault with the passphrase
//	  - exit | quit    — leave the program
//
//	Unlocked:
//	  - help           — show available commands
//	  - addmed         — add a medication (interactive)
//	  - list | l       — list medications
//	  - delmed <n>     — delete the n-th listed medication
//	  - today          — show today's dose schedule
//	  - notif          — list active notifications
//	  - snooze <n> [m] — snooze the n-th notification for m minutes
//	  - taken <n>      — mark the n-th notification as taken
//	  - dismiss <n>    — dismiss the n-th notification
//	  - history        — show the snooze audit trail
//	  - encrypt on|off — enable or disable passphrase encryption
//	  - lock           — drop the session passphrase
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("med> %s ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLocked() {
				printlnFn("Available commands: unlock, exit")
			} else {
				printlnFn("Available commands: addmed, (l)ist, delmed, today, notif, snooze, taken, dismiss, history, encrypt, lock, exit")
			}

		case "unlock":
			_ = a.Unlock(ctx)

		case "lock":
			_ = a.Lock(ctx)

		case "encrypt":
			if len(args) == 0 {
				printlnFn("Usage: encrypt on|off")
				continue
			}
			switch args[0] {
			case "on":
				_ = a.EncryptOn(ctx)
			case "off":
				_ = a.EncryptOff(ctx)
			default:
				printlnFn("Usage: encrypt on|off")
			}

		case "addmed":
			_ = a.AddMedication(ctx)

		case "l", "list":
			_ = a.ListMedications(ctx)

		case "delmed":
			if len(args) == 0 {
				printlnFn("Usage: delmed <number>")
				continue
			}
			_ = a.DeleteMedication(ctx, args[0])

		case "today":
			_ = a.Today(ctx)

		case "notif":
			_ = a.Notifications(ctx)

		case "snooze":
			if len(args) == 0 {
				printlnFn("Usage: snooze <number> [minutes]")
				continue
			}
			_ = a.Snooze(ctx, args)

		case "taken":
			if len(args) == 0 {
				printlnFn("Usage: taken <number>")
				continue
			}
			_ = a.Taken(ctx, args[0])

		case "dismiss":
			if len(args) == 0 {
				printlnFn("Usage: dismiss <number>")
				continue
			}
			_ = a.Dismiss(ctx, args[0])

		case "history":
			_ = a.History(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
