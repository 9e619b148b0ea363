package filters

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrInterrupted is returned by any prompt when the user aborts, either by
// cancelling the context (Ctrl-C) or by closing the input stream.
var ErrInterrupted = errors.New("input interrupted")

// Prompter asks questions on a line-oriented console.
type Prompter struct {
	out     io.Writer
	lines   <-chan string
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewPrompter starts reading lines from in. Reading happens on its own
// goroutine so a pending prompt can be abandoned when ctx is cancelled.
// Close releases the goroutine once the prompter is no longer needed.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	ch := make(chan string)
	p := &Prompter{out: out, lines: ch, done: make(chan struct{}), stopped: make(chan struct{})}
	go func() {
		defer close(p.stopped)
		defer close(ch)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-p.done:
				return
			}
		}
	}()
	return p
}

// Close stops delivering lines. Later prompts report ErrInterrupted. A
// read already blocked inside in is not interrupted.
func (p *Prompter) Close() {
	p.once.Do(func() { close(p.done) })
}

// Out is the writer prompts are printed to.
func (p *Prompter) Out() io.Writer { return p.out }

// Ask prints question and returns the next trimmed line.
func (p *Prompter) Ask(ctx context.Context, question string) (string, error) {
	fmt.Fprintf(p.out, "\n%s\n", question)
	select {
	case <-ctx.Done():
		return "", ErrInterrupted
	case <-p.done:
		return "", ErrInterrupted
	case line, ok := <-p.lines:
		if !ok {
			return "", ErrInterrupted
		}
		return strings.TrimSpace(line), nil
	}
}

// Choose asks until resolve accepts the answer, printing hint after each
// rejected attempt.
func (p *Prompter) Choose(ctx context.Context, question, hint string, resolve func(string) (string, bool)) (string, error) {
	for {
		in, err := p.Ask(ctx, question)
		if err != nil {
			return "", err
		}
		if v, ok := resolve(in); ok {
			return v, nil
		}
		fmt.Fprintln(p.out, hint)
	}
}

// Confirm asks a strict yes/no question, re-asking on anything else.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	for {
		in, err := p.Ask(ctx, question)
		if err != nil {
			return false, err
		}
		if yes, ok := YesNo(in); ok {
			return yes, nil
		}
		fmt.Fprintln(p.out, "Please enter a valid response (yes or no).")
	}
}

// Agree asks a yes/no question where only yes counts as agreement.
func (p *Prompter) Agree(ctx context.Context, question string) (bool, error) {
	in, err := p.Ask(ctx, question)
	if err != nil {
		return false, err
	}
	yes, _ := YesNo(in)
	return yes, nil
}

// Collect runs the city, mode, month and day prompts and returns the
// resulting selection. Month and day default to "all" when not requested.
func Collect(ctx context.Context, p *Prompter, n *Normalizer) (Selection, error) {
	fmt.Fprintln(p.out, "Hello! Let's explore some US bikeshare data!")
	sel := Selection{Month: All, Day: All}

	city, err := p.Choose(ctx,
		"Which city would you like to see data for? Chicago, New York, or Washington?",
		"Sorry, that's not a valid city. Please choose from Chicago, New York, or Washington.",
		n.City)
	if err != nil {
		return Selection{}, err
	}
	sel.City = city

	mode, err := p.Choose(ctx,
		"Would you like to filter the data by month, day, both, or not at all? Type 'none' for no time filter.",
		fmt.Sprintf("Please enter a valid option: %s.", strings.Join(Modes, ", ")),
		n.Mode)
	if err != nil {
		return Selection{}, err
	}

	if mode == ModeMonth || mode == ModeBoth {
		sel.Month, err = p.Choose(ctx,
			fmt.Sprintf("Which month? %s?", n.MonthChoices()),
			fmt.Sprintf("Please enter a valid month from January to %s (full name or 3-letter abbreviation).", Title(Months[n.LastMonth()-1])),
			n.Month)
		if err != nil {
			return Selection{}, err
		}
	}

	if mode == ModeDay || mode == ModeBoth {
		sel.Day, err = p.Choose(ctx,
			"Which day? Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, or Sunday?",
			"Please enter a valid day of the week (full name or 3-letter abbreviation).",
			n.Day)
		if err != nil {
			return Selection{}, err
		}
	}

	fmt.Fprintln(p.out, strings.Repeat("-", 40))
	return sel, nil
}
