package commands

import (
	"PartsKeeper/internal/config"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrUsage is returned by a command when arguments are invalid and usage should be shown.
var ErrUsage = errors.New("usage")

// Ошибки, по которым Dispatch выбирает код выхода.
var (
	ErrNotLoggedIn  = errors.New("not logged in: run login first")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrPrecondition = errors.New("row fingerprint required")
)

// Коды выхода pkcli.
const (
	ExitOK           = 0
	ExitError        = 1
	ExitUsage        = 2
	ExitNotLoggedIn  = 3
	ExitForbidden    = 4
	ExitConflict     = 5
	ExitPrecondition = 6
)

// Группы команд в справке.
const (
	GroupSession = "Сессия"
	GroupParts   = "Записи"
	GroupReports = "Отчёты"
)

var groupOrder = []string{GroupSession, GroupParts, GroupReports}

// Command represents a CLI subcommand.
type Command interface {
	// Name returns the command name as typed by the user, e.g. "renew".
	Name() string
	// Description is a short human-readable description shown in help.
	Description() string
	// Usage returns the exact usage string, e.g. "delete (-etag <etag> | -fru <FRU>) <index>".
	Usage() string
	// Run executes the command with provided args (without the command name).
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

type entry struct {
	group string
	cmd   Command
}

// registry holds available commands by name.
var registry = map[string]entry{}

// Out — общий writer для вывода CLI. По умолчанию os.Stdout, но в тестах может переназначаться.
var Out io.Writer = os.Stdout

// RegisterCmd adds a command to the help group. Should be called from init() of each command.
func RegisterCmd(group string, cmd Command) {
	registry[cmd.Name()] = entry{group: group, cmd: cmd}
}

// Get returns a command by name.
func Get(name string) (Command, bool) {
	e, ok := registry[name]
	return e.cmd, ok
}

// List returns the commands of a group sorted by name; "" returns all of them.
func List(group string) []Command {
	list := make([]Command, 0, len(registry))
	for _, e := range registry {
		if group == "" || e.group == group {
			list = append(list, e.cmd)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// ExitCode сопоставляет ошибку команды с кодом выхода.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	case errors.Is(err, ErrNotLoggedIn):
		return ExitNotLoggedIn
	case errors.Is(err, ErrForbidden):
		return ExitForbidden
	case errors.Is(err, ErrConflict):
		return ExitConflict
	case errors.Is(err, ErrPrecondition):
		return ExitPrecondition
	}
	return ExitError
}

// FormatGlobalUsage builds a help text grouped by section, plus the exit codes.
func FormatGlobalUsage() string {
	lines := []string{
		"PartsKeeper CLI",
		"",
		"Usage:",
		"  pkcli [--base-url <host:port>|URL] <command> [args]",
	}
	known := map[string]bool{}
	for _, g := range groupOrder {
		known[g] = true
		if cmds := List(g); len(cmds) > 0 {
			lines = append(lines, "", g+":")
			lines = appendCommands(lines, cmds)
		}
	}
	var other []Command
	for _, e := range registry {
		if !known[e.group] {
			other = append(other, e.cmd)
		}
	}
	if len(other) > 0 {
		sort.Slice(other, func(i, j int) bool { return other[i].Name() < other[j].Name() })
		lines = append(lines, "", "Прочее:")
		lines = appendCommands(lines, other)
	}
	lines = append(lines, "",
		"Exit codes:",
		fmt.Sprintf("  %d usage, %d not logged in, %d forbidden, %d conflict (run list and retry), %d row fingerprint required",
			ExitUsage, ExitNotLoggedIn, ExitForbidden, ExitConflict, ExitPrecondition),
	)
	return strings.Join(lines, "\n") + "\n"
}

func appendCommands(lines []string, cmds []Command) []string {
	for _, c := range cmds {
		lines = append(lines, fmt.Sprintf("  %-44s %s", c.Usage(), c.Description()))
	}
	return lines
}
