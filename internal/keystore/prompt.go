package keystore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// maxAttempts bounds how often an invalid answer is re-asked.
const maxAttempts = 3

// Prompter obtains a value for a missing key from the operator.
type Prompter interface {
	Prompt(ctx context.Context, q Question) (string, error)
}

// Question describes one configuration key and how to ask for it.
type Question struct {
	// Key is the store key the answer is persisted under.
	Key string

	// Text is shown to the operator.
	Text string

	// Hint is printed on its own line before the question, if set.
	Hint string

	// AllowEmpty accepts a blank answer as a deliberate value.
	AllowEmpty bool

	// Validate checks an answer before it is persisted. Optional.
	Validate func(string) error
}

// TerminalPrompter reads answers from an interactive terminal.
//
// Lines are read by a single background goroutine, started on the first
// prompt, so a cancelled Prompt returns at once. A line typed after
// cancellation is handed to the next Prompt.
type TerminalPrompter struct {
	in     *bufio.Reader
	out    io.Writer
	isTerm func() bool

	once  sync.Once
	lines chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// NewTerminalPrompter creates a prompter on stdin/stdout.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
		isTerm: func() bool {
			fd := os.Stdin.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
}

// NewPrompterWithIO creates a prompter on arbitrary streams, treated as a terminal.
func NewPrompterWithIO(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		in:     bufio.NewReader(in),
		out:    out,
		isTerm: func() bool { return true },
	}
}

// Prompt prints the question and reads one line.
func (p *TerminalPrompter) Prompt(ctx context.Context, q Question) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !p.isTerm() {
		return "", fmt.Errorf("%w: cannot ask for %q", ErrNoTerminal, q.Key)
	}

	if q.Hint != "" {
		fmt.Fprintln(p.out, q.Hint) //nolint:errcheck // Best effort console output
	}
	fmt.Fprintf(p.out, "%s: ", q.Text) //nolint:errcheck // Best effort console output

	p.once.Do(p.startReader)

	var res lineResult
	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out) //nolint:errcheck // Best effort console output
		return "", ctx.Err()
	case r, ok := <-p.lines:
		if !ok {
			r = lineResult{err: io.EOF}
		}
		res = r
	}

	if res.err != nil && !(errors.Is(res.err, io.EOF) && res.line != "") {
		return "", fmt.Errorf("reading answer for %q: %w", q.Key, res.err)
	}
	return strings.TrimSpace(res.line), nil
}

func (p *TerminalPrompter) startReader() {
	p.lines = make(chan lineResult)
	go p.readLines()
}

// readLines forwards input lines until the first read error.
func (p *TerminalPrompter) readLines() {
	defer close(p.lines)
	for {
		line, err := p.in.ReadString('\n')
		p.lines <- lineResult{line: line, err: err}
		if err != nil {
			return
		}
	}
}

// Require returns the stored value for q.Key, prompting and persisting it
// when the key is absent.
//
// A stored value is returned as-is, including the empty string. A prompted
// answer is validated up to maxAttempts times before giving up.
//
// Parameters:
//   - ctx: Context for cancellation
//   - store: Backing store
//   - prompter: Source of answers for missing keys (may be nil)
//   - q: The key and how to ask for it
//
// Returns:
//   - string: The stored or newly persisted value
//   - error: ErrStorage if the store fails, ErrConfigurationMissing if no
//     acceptable answer could be obtained
func Require(ctx context.Context, store Store, prompter Prompter, q Question) (string, error) {
	value, ok, err := store.Get(ctx, q.Key)
	if err != nil {
		return "", err
	}
	if ok {
		return value, nil
	}

	if prompter == nil {
		return "", fmt.Errorf("%w: %q", ErrConfigurationMissing, q.Key)
	}

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		answer, err := prompter.Prompt(ctx, q)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %w", ErrConfigurationMissing, q.Key, err)
		}

		if lastErr = check(q, answer); lastErr != nil {
			continue
		}

		// An answer that arrives after cancellation is not persisted.
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: %q: %w", ErrConfigurationMissing, q.Key, err)
		}

		if err := store.Set(ctx, q.Key, answer); err != nil {
			return "", err
		}
		return answer, nil
	}

	return "", fmt.Errorf("%w: %q: %w", ErrConfigurationMissing, q.Key, lastErr)
}

// check applies the blank rule and the question's validator.
func check(q Question, answer string) error {
	if answer == "" {
		if q.AllowEmpty {
			return nil
		}
		return fmt.Errorf("%w: %s must not be blank", ErrInvalidValue, q.Key)
	}
	if q.Validate != nil {
		return q.Validate(answer)
	}
	return nil
}
