package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

type recorder struct {
	calls []string
}

func (r *recorder) cmd(name string, err error, aliases ...string) command {
	return command{
		name:    name,
		aliases: aliases,
		run: func(_ context.Context, args []string) error {
			r.calls = append(r.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
			return err
		},
	}
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := capturePrintln(t)
	rec := &recorder{}
	cmds := []command{
		rec.cmd("feed", nil),
		rec.cmd("board", nil, "l"),
		rec.cmd("join", errors.New("collaboration request not found")),
	}

	input := strings.Join([]string{
		"",
		"feed events Tech",
		"l",
		"join r1",
		"foobar",
		"help",
		"exit",
		"feed never",
	}, "\n")

	runREPL(context.Background(), cmds, func() string { return "(Ada)" }, bufio.NewReader(strings.NewReader(input)), true)

	assert.Equal(t, []string{"feed events Tech", "board", "join r1"}, rec.calls)
	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "uc (Ada)> ")
	assert.Contains(t, joined, "Error: collaboration request not found")
	assert.Contains(t, joined, "Unknown command: foobar")
	assert.Contains(t, joined, "Available commands:")
	assert.Contains(t, joined, "Bye!")
}

func TestRunREPL_StopsOnEOFWithoutNewline(t *testing.T) {
	capturePrintln(t)
	rec := &recorder{}

	runREPL(context.Background(), []command{rec.cmd("board", nil)}, func() string { return "" },
		bufio.NewReader(strings.NewReader("board")), false)

	assert.Equal(t, []string{"board"}, rec.calls)
}

func TestRunREPL_CancelledContext(t *testing.T) {
	capturePrintln(t)
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runREPL(ctx, []command{rec.cmd("board", nil)}, func() string { return "" },
		bufio.NewReader(strings.NewReader("board\n")), false)

	assert.Empty(t, rec.calls)
}

func TestHelpText(t *testing.T) {
	text := helpText([]command{{name: "switch", usage: "<account-id>"}, {name: "board", aliases: []string{"l"}}})
	require.Contains(t, text, "switch <account-id>")
	require.Contains(t, text, "(l)")
	require.Contains(t, text, "exit | quit")
}
