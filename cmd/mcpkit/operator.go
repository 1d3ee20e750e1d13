package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noticeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// consoleOperator is the human-fallback channel over stdin/stdout.
type consoleOperator struct {
	in *bufio.Reader
}

func newConsoleOperator() *consoleOperator {
	return &consoleOperator{in: bufio.NewReader(os.Stdin)}
}

// Notify prints an operator-facing message.
func (o *consoleOperator) Notify(message string) {
	fmt.Println()
	fmt.Println(noticeStyle.Render(message))
}

// ReadLine blocks on one line of operator input. The read itself cannot
// be interrupted, so it runs in a goroutine and the select honors
// context cancellation (Ctrl+C during manual login).
func (o *consoleOperator) ReadLine(ctx context.Context) (string, error) {
	type readResult struct {
		line string
		err  error
	}

	ch := make(chan readResult, 1)
	go func() {
		line, err := o.in.ReadString('\n')
		ch <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil && r.line == "" {
			return "", r.err
		}
		return strings.TrimRight(r.line, "\r\n"), nil
	}
}
