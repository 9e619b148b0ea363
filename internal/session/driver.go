// Package session runs the interactive analysis loop as an explicit state
// machine: collect filters, load, report, browse, offer a restart.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/KaramelBytes/bikeshare-cli/internal/analysis"
	"github.com/KaramelBytes/bikeshare-cli/internal/browse"
	"github.com/KaramelBytes/bikeshare-cli/internal/dataset"
	"github.com/KaramelBytes/bikeshare-cli/internal/filters"
	"github.com/KaramelBytes/bikeshare-cli/internal/logger"
	"github.com/KaramelBytes/bikeshare-cli/internal/metrics"
	"github.com/google/uuid"
)

// State is a driver state.
type State int

const (
	StateCollect State = iota
	StateLoad
	StateFailed
	StateEmpty
	StateReport
	StateBrowse
	StateRestart
	StateDone
)

var stateNames = [...]string{"collect_filters", "load", "failed", "empty", "report", "browse", "restart_prompt", "done"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

const (
	farewell    = "Thank you for using the BikeShare data analysis tool. Goodbye!"
	interrupted = "\nAnalysis interrupted. Goodbye!"
)

// Loader produces the filtered table for a selection.
type Loader interface {
	Load(ctx context.Context, sel filters.Selection) (*dataset.Table, error)
}

// Driver owns one interactive session.
type Driver struct {
	prompter   *filters.Prompter
	normalizer *filters.Normalizer
	loader     Loader
	metrics    *metrics.Recorder
	pageSize   int
	log        logger.Logger

	// OnTransition, when set, is called for every state change.
	OnTransition func(from, to State)
}

// Option configures a Driver.
type Option func(*Driver)

// WithMetrics records load and report metrics.
func WithMetrics(m *metrics.Recorder) Option { return func(d *Driver) { d.metrics = m } }

// WithPageSize sets the raw-data page size.
func WithPageSize(n int) Option { return func(d *Driver) { d.pageSize = n } }

// New builds a driver.
func New(p *filters.Prompter, n *filters.Normalizer, l Loader, opts ...Option) *Driver {
	d := &Driver{
		prompter:   p,
		normalizer: n,
		loader:     l,
		pageSize:   browse.DefaultPageSize,
		log:        logger.Named("session"),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// run is the state carried through one pass of the loop. It is discarded
// on restart.
type run struct {
	id    string
	sel   filters.Selection
	table *dataset.Table
}

// Run drives the session until the user declines to continue or
// interrupts. Unexpected errors return the loop to filter collection.
func (d *Driver) Run(ctx context.Context) error {
	out := d.prompter.Out()
	state := StateCollect
	var r run
	for state != StateDone {
		next, err := d.step(ctx, state, &r)
		switch {
		case errors.Is(err, filters.ErrInterrupted):
			fmt.Fprintln(out, interrupted)
			d.transition(state, StateDone)
			return nil
		case err != nil:
			d.log.Error(ctx, "unexpected error", logger.String("run_id", r.id), logger.String("state", state.String()), logger.Error(err))
			fmt.Fprintf(out, "An unexpected error occurred: %v\n", err)
			fmt.Fprintln(out, "Please try again.")
			next = StateCollect
		}
		d.transition(state, next)
		state = next
	}
	fmt.Fprintln(out, farewell)
	return nil
}

func (d *Driver) transition(from, to State) {
	if d.OnTransition != nil {
		d.OnTransition(from, to)
	}
}

// step executes one state and returns the next. Panics are turned into errors.
func (d *Driver) step(ctx context.Context, s State, r *run) (next State, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in %s: %v", s, p)
		}
	}()

	switch s {
	case StateCollect:
		*r = run{id: uuid.NewString()}
		if d.metrics != nil {
			d.metrics.RunStarted()
		}
		sel, err := filters.Collect(ctx, d.prompter, d.normalizer)
		if err != nil {
			return s, err
		}
		r.sel = sel
		d.log.Info(ctx, "filters selected", logger.String("run_id", r.id),
			logger.String("city", sel.City), logger.String("month", sel.Month), logger.String("day", sel.Day))
		return StateLoad, nil

	case StateLoad:
		t, err := d.loader.Load(ctx, r.sel)
		if err != nil {
			d.observeLoad(r.sel.City, metrics.OutcomeFor(err), 0)
			d.log.Warn(ctx, "load failed", logger.String("run_id", r.id), logger.Error(err))
			return StateFailed, nil
		}
		r.table = t
		if t.Len() == 0 {
			d.observeLoad(r.sel.City, metrics.OutcomeEmpty, 0)
			return StateEmpty, nil
		}
		d.observeLoad(r.sel.City, metrics.OutcomeLoaded, t.Len())
		return StateReport, nil

	case StateFailed:
		fmt.Fprintln(d.prompter.Out(), "Failed to load data. Please check your data files and try again.")
		return d.offer(ctx, "Would you like to try again? Enter yes or no.")

	case StateEmpty:
		fmt.Fprintln(d.prompter.Out(), "No data matches your filter criteria.")
		return d.offer(ctx, "Would you like to try different filters? Enter yes or no.")

	case StateReport:
		results := analysis.RunAll(d.prompter.Out(), r.table)
		for _, res := range results {
			if res.Err != nil && !errors.Is(res.Err, analysis.ErrNoData) {
				d.log.Warn(ctx, "report failed", logger.String("run_id", r.id), logger.String("report", res.Name), logger.Error(res.Err))
			}
		}
		if d.metrics != nil {
			d.metrics.ObserveReports(results)
		}
		return StateBrowse, nil

	case StateBrowse:
		if _, err := browse.Browse(ctx, d.prompter, r.table, d.pageSize); err != nil {
			return s, err
		}
		return StateRestart, nil

	case StateRestart:
		return d.offer(ctx, "Would you like to restart? Enter yes or no.")
	}
	return StateDone, fmt.Errorf("unknown state %s", s)
}

// offer asks a yes/no question; only yes returns to filter collection.
func (d *Driver) offer(ctx context.Context, question string) (State, error) {
	again, err := d.prompter.Agree(ctx, question)
	if err != nil {
		return StateDone, err
	}
	if again {
		return StateCollect, nil
	}
	return StateDone, nil
}

func (d *Driver) observeLoad(city, outcome string, rows int) {
	if d.metrics != nil {
		d.metrics.ObserveLoad(city, outcome, rows)
	}
}
