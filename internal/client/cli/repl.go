package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for REPL-level output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// command is one REPL verb.
type command struct {
	name    string
	aliases []string
	usage   string
	run     func(ctx context.Context, args []string) error
}

func (c command) matches(name string) bool {
	if c.name == name {
		return true
	}
	for _, a := range c.aliases {
		if a == name {
			return true
		}
	}
	return false
}

func helpText(cmds []command) string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "  %-28s", strings.TrimSpace(c.name+" "+c.usage))
		if len(c.aliases) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(c.aliases, ", "))
		}
		b.WriteByte('\n')
	}
	b.WriteString("  help\n  exit | quit")
	return b.String()
}

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
// The first token selects a command; the rest are passed as its arguments.
// A failing command prints its error and the loop continues. When showPrompt
// is set, a prompt including statusFn() is printed before every read.
// Commands that prompt for more input read from the same reader.
func runREPL(ctx context.Context, cmds []command, statusFn func() string, reader *bufio.Reader, showPrompt bool) {
	for {
		if ctx.Err() != nil {
			return
		}
		if showPrompt {
			printlnFn(fmt.Sprintf("uc %s> ", statusFn()))
		}
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "help":
			printlnFn(helpText(cmds))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		found := false
		for _, c := range cmds {
			if !c.matches(name) {
				continue
			}
			found = true
			if err := c.run(ctx, args); err != nil {
				printlnFn("Error:", userError(err))
			}
			break
		}
		if !found {
			printlnFn("Unknown command:", name)
		}
	}
}
