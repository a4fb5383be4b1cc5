package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetMultiline prints a prompt to w and reads lines until an empty line.
// The collected text is joined with '\n'.
func GetMultiline(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
		if err != nil {
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// GetChoices shows a numbered list and reads a comma-separated selection.
// Entries may be given by number (1-based) or by exact, case-insensitive
// name. Duplicates are dropped; order of first mention is kept.
func GetChoices(reader *bufio.Reader, prompt string, options []string, w io.Writer) ([]string, error) {
	for i, o := range options {
		if _, err := fmt.Fprintf(w, "%2d. %s\n", i+1, o); err != nil {
			return nil, err
		}
	}
	line, err := GetSimpleText(reader, prompt, w)
	if err != nil {
		return nil, err
	}
	return parseChoices(line, options)
}

func parseChoices(line string, options []string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, tok := range strings.Split(line, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		choice, ok := resolveChoice(tok, options)
		if !ok {
			return nil, fmt.Errorf("unknown choice %q", tok)
		}
		if !seen[choice] {
			seen[choice] = true
			out = append(out, choice)
		}
	}
	return out, nil
}

func resolveChoice(tok string, options []string) (string, bool) {
	if n, err := strconv.Atoi(tok); err == nil {
		if n >= 1 && n <= len(options) {
			return options[n-1], true
		}
		return "", false
	}
	for _, o := range options {
		if strings.EqualFold(o, tok) {
			return o, true
		}
	}
	return "", false
}

// parseIndex converts a 1-based index typed by the user to a slice index.
func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	return n - 1, nil
}
