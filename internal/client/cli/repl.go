package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. *App satisfies it;
// tests provide a recording stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	New(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Location(ctx context.Context, args []string) error
	Draft(ctx context.Context) error
	Save(ctx context.Context) error
	Clear(ctx context.Context) error
	DeleteAll(ctx context.Context) error
	Move(ctx context.Context, args []string) error
	Backup(ctx context.Context) error
	Backups(ctx context.Context) error
	Restore(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, move, exit"
	helpLoggedIn  = "Available commands: (l)ist, show <id>, new, edit <id>, location <lat> <lon> <name>, " +
		"draft, save, clear, deleteall, move <lat> <lon>, backup, backups, restore <key>, logout, exit"
)

// runREPL reads one command per line from reader and dispatches it to a
// until EOF, "exit" or "quit". Reminder commands require a signed-in user;
// "move" is always available so the device can be driven while logged out.
// Handler errors are printed and do not stop the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("gk %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if err := dispatch(ctx, a, cmd, args); err != nil {
			if errors.Is(err, errExit) {
				printlnFn("Bye!")
				return
			}
			printlnFn("Error:", err)
		}
	}
}

var errExit = errors.New("exit")

var reminderCommands = map[string]bool{
	"l": true, "list": true, "show": true, "new": true, "edit": true, "location": true,
	"draft": true, "save": true, "clear": true, "deleteall": true,
	"backup": true, "backups": true, "restore": true, "logout": true,
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	if reminderCommands[cmd] && !a.isLoggedIn() {
		printlnFn("Please login or register first")
		return nil
	}

	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "l", "list":
		return a.List(ctx)
	case "show":
		return a.Show(ctx, args)
	case "new":
		return a.New(ctx)
	case "edit":
		return a.Edit(ctx, args)
	case "location":
		return a.Location(ctx, args)
	case "draft":
		return a.Draft(ctx)
	case "save":
		return a.Save(ctx)
	case "clear":
		return a.Clear(ctx)
	case "deleteall":
		return a.DeleteAll(ctx)
	case "move", "goto":
		return a.Move(ctx, args)
	case "backup":
		return a.Backup(ctx)
	case "backups":
		return a.Backups(ctx)
	case "restore":
		return a.Restore(ctx, args)
	case "exit", "quit":
		return errExit
	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}
