package commands

import (
	"PartsKeeper/internal/config"
	"context"
	"errors"
	"fmt"
	"strings"
)

// Dispatch is the single entry point to execute CLI commands.
// It prints help and usage messages and returns a process exit code (see ExitCode).
func Dispatch(ctx context.Context, cfg *config.Config, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return ExitUsage
	}

	name := strings.ToLower(args[0])
	switch name {
	case "-h", "--help":
		fmt.Fprint(Out, FormatGlobalUsage())
		return ExitOK
	case "help": // pkcli help [command]
		if len(args) == 1 {
			fmt.Fprint(Out, FormatGlobalUsage())
			return ExitOK
		}
		if c, ok := Get(args[1]); ok {
			fmt.Fprintf(Out, "Usage: %s\n", c.Usage())
			return ExitOK
		}
		fmt.Fprintf(Out, "Unknown command: %s\n\n", args[1])
		fmt.Fprint(Out, FormatGlobalUsage())
		return ExitUsage
	}

	c, ok := Get(name)
	if !ok {
		fmt.Fprintf(Out, "Unknown command: %s\n\n", name)
		fmt.Fprint(Out, FormatGlobalUsage())
		return ExitUsage
	}

	err := c.Run(ctx, cfg, args[1:])
	switch {
	case err == nil:
	case errors.Is(err, ErrUsage):
		fmt.Fprintf(Out, "Usage: %s\n", c.Usage())
	case errors.Is(err, ErrPrecondition):
		fmt.Fprintf(Out, "%s error: %v\nPass -etag or -fru to identify the row.\n", name, err)
	default:
		fmt.Fprintf(Out, "%s error: %v\n", name, err)
	}
	return ExitCode(err)
}
