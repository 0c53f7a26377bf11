package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zoobzio/lens"
	"github.com/zoobzio/lens/hero"
)

type commandKind int

const (
	cmdSearch commandKind = iota
	cmdNext
	cmdPrev
	cmdLimit
	cmdQuit
)

type command struct {
	kind  commandKind
	term  string
	limit int
}

// parseCommand reads one input line. A search may have an empty term, which
// clears the search.
func parseCommand(line string) (command, error) {
	line = strings.TrimSpace(line)
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "s", "search":
		return command{kind: cmdSearch, term: arg}, nil
	case "n", "next":
		return command{kind: cmdNext}, nil
	case "p", "prev":
		return command{kind: cmdPrev}, nil
	case "l", "limit":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return command{}, fmt.Errorf("limit must be a number, got %q", arg)
		}
		return command{kind: cmdLimit, limit: n}, nil
	case "q", "quit", "exit":
		return command{kind: cmdQuit}, nil
	case "":
		return command{}, errEmpty
	default:
		return command{}, fmt.Errorf("unknown command %q", name)
	}
}

var errEmpty = errors.New("empty command")

// apply runs cmd against coord and reports whether to keep reading.
func apply(cmd command, coord *lens.Coordinator[hero.Hero]) (bool, error) {
	switch cmd.kind {
	case cmdSearch:
		coord.Search(cmd.term)
	case cmdNext:
		coord.MovePageBy(1)
	case cmdPrev:
		coord.MovePageBy(-1)
	case cmdLimit:
		if err := coord.SetLimit(cmd.limit); err != nil {
			return true, fmt.Errorf("%w (allowed: %v)", err, coord.Limits())
		}
	case cmdQuit:
		return false, nil
	}
	return true, nil
}

// readCommands applies commands from in until quit, EOF or ctx is done.
func readCommands(ctx context.Context, in io.Reader, coord *lens.Coordinator[hero.Hero], v *view) error {
	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-errs
			}
			cmd, err := parseCommand(line)
			if errors.Is(err, errEmpty) {
				continue
			}
			if err != nil {
				v.printf("! %v\n", err)
				continue
			}
			more, err := apply(cmd, coord)
			if err != nil {
				v.printf("! %v\n", err)
			}
			if !more {
				return nil
			}
		}
	}
}
