// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"

	"github.com/staranto/mcsim/internal/cacheutil"
)

// ErrNoSuchExperiment is returned when an experiment has no cached runs.
var ErrNoSuchExperiment = errors.New("no previous runs with the experiment")

const recalculateQuestion = "A run for this experiment already exists. Do you want to recalculate?"

// Run is one cached run directory.
type Run = cacheutil.Run

// Experiment is a named, cacheable computation and the routine that plots
// its result.
type Experiment struct {
	Name string
	Run  func(ctx context.Context) (Result, error)
	Plot func(ctx context.Context, r Results) error
}

// RunOptions selects how Cache.Run obtains and shows a result. The zero
// value plots, and asks before recomputing an experiment with cached runs.
type RunOptions struct {
	// NoPlot skips the experiment's Plot and always recomputes.
	NoPlot bool
	// OnlyPlot never recomputes; the result is loaded from the cache.
	OnlyPlot bool
	// UseLatest loads the most recent run instead of asking.
	UseLatest bool
}

// Confirmer answers a yes/no question. It decides whether an experiment
// with cached runs is recomputed.
type Confirmer func(ctx context.Context, question string) (bool, error)

// Selector picks one of runs, which are ordered most recent first.
type Selector func(ctx context.Context, runs []Run) (Run, error)

// Cache stores experiment results beneath a root directory.
type Cache struct {
	root      string
	confirm   Confirmer
	selectRun Selector
	now       func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithRoot overrides the cache root.
func WithRoot(root string) Option {
	return func(c *Cache) { c.root = root }
}

// WithConfirm overrides how the user is asked whether to recompute.
func WithConfirm(f Confirmer) Option {
	return func(c *Cache) { c.confirm = f }
}

// WithSelect overrides how a cached run is chosen.
func WithSelect(f Selector) Option {
	return func(c *Cache) { c.selectRun = f }
}

// WithClock overrides the time source used to name new runs.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// NewCache returns a Cache rooted at cacheutil.ExperimentDir unless WithRoot
// says otherwise. Without overrides it asks on the terminal.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		root:      cacheutil.ExperimentDir(),
		confirm:   TerminalConfirm(),
		selectRun: TerminalSelect(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

// Runs lists the cached runs of the named experiment, most recent first.
func (c *Cache) Runs(name string) ([]Run, error) {
	return cacheutil.ListRuns(c.root, name)
}

// shouldRun decides whether exp is recomputed. The order of the checks is
// significant: OnlyPlot wins, then NoPlot forces a recompute, then a
// missing cache, and only then is the user asked.
func (c *Cache) shouldRun(ctx context.Context, prevRuns []Run, opts RunOptions) (bool, error) {
	switch {
	case opts.OnlyPlot:
		return false, nil
	case opts.NoPlot:
		return true, nil
	case len(prevRuns) == 0:
		return true, nil
	}
	ok, err := c.confirm(ctx, recalculateQuestion)
	if err != nil {
		return false, fmt.Errorf("failed to confirm recalculation: %w", err)
	}
	return ok, nil
}

// Run obtains the result of exp, computing and caching it or loading a
// cached run, and then plots it when asked to.
func (c *Cache) Run(ctx context.Context, exp Experiment, opts RunOptions) error {
	if exp.Name == "" {
		return errors.New("experiment has no name")
	}

	prevRuns, err := c.Runs(exp.Name)
	if err != nil {
		return err
	}

	run, err := c.shouldRun(ctx, prevRuns, opts)
	if err != nil {
		return err
	}

	var results Results
	if run {
		log.Infof("running experiment %s", exp.Name)
		if exp.Run == nil {
			return fmt.Errorf("experiment %s has no run function", exp.Name)
		}
		r, err := exp.Run(ctx)
		if err != nil {
			return fmt.Errorf("experiment %s failed: %w", exp.Name, err)
		}
		if _, err := c.Save(exp.Name, r); err != nil {
			return err
		}
		results = r
	} else {
		lr, err := c.Load(ctx, exp.Name, opts.UseLatest)
		if err != nil {
			return err
		}
		defer func() {
			if err := lr.Close(); err != nil {
				log.WithError(err).Warn("failed to close cached run")
			}
		}()
		results = lr
	}

	if (!opts.NoPlot || opts.OnlyPlot) && exp.Plot != nil {
		if err := exp.Plot(ctx, results); err != nil {
			return fmt.Errorf("failed to plot %s: %w", exp.Name, err)
		}
	}
	return nil
}

// Save writes r as a new run of the named experiment and returns the run
// directory.
func (c *Cache) Save(name string, r Result) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	dir, err := cacheutil.NewRunDir(c.root, name, c.now())
	if err != nil {
		return "", err
	}
	if err := writeRun(dir, r); err != nil {
		return dir, err
	}
	log.Infof("saved %s", dir)
	return dir, nil
}

// Load opens a cached run of the named experiment: the most recent one when
// useLatest is set, otherwise the one chosen by the Selector.
func (c *Cache) Load(ctx context.Context, name string, useLatest bool) (*LoadedRun, error) {
	runs, err := c.Runs(name)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w with the name: %s", ErrNoSuchExperiment, name)
	}

	selected := runs[0]
	if !useLatest {
		selected, err = c.selectRun(ctx, runs)
		if err != nil {
			return nil, fmt.Errorf("failed to select a run: %w", err)
		}
	}

	log.Infof("You selected %s", selected.Path)
	return OpenRun(selected)
}
