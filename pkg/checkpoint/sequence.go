// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"os"

	"github.com/apex/log"

	"github.com/staranto/mcsim/internal/cacheutil"
)

// State is where a sequence is in its lifecycle.
type State int

const (
	// Fresh sequences have no backing directory.
	Fresh State = iota
	// Materializing sequences have a backing directory without all steps.
	Materializing
	// Materialized sequences have every step on disk.
	Materialized
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Materializing:
		return "materializing"
	case Materialized:
		return "materialized"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Option configures a new sequence.
type Option func(*Descriptor)

// WithSteps bounds the sequence to n steps.
func WithSteps(n int) Option {
	return func(d *Descriptor) { d.Steps = &n }
}

// Sequence is a checkpointed sequence of T.
type Sequence[T any] struct {
	store    *Store
	registry *Registry[T]
	desc     Descriptor
	dir      string
	err      error
}

// New describes a sequence built by the named constructor with params, which
// are marshaled to JSON. Nothing runs and nothing is written until the
// sequence is iterated.
func New[T any](store *Store, registry *Registry[T], constructor string, params any, opts ...Option) (*Sequence[T], error) {
	if !registry.Has(constructor) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownConstructor, constructor)
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode params: %w", err)
	}

	s := &Sequence[T]{
		store:    store,
		registry: registry,
		desc: Descriptor{
			Constructor: constructor,
			Params:      raw,
			Codec:       registry.codec.Ext(),
		},
	}
	for _, opt := range opts {
		opt(&s.desc)
	}
	if s.desc.Steps != nil && *s.desc.Steps < 0 {
		return nil, fmt.Errorf("step count must not be negative: %d", *s.desc.Steps)
	}
	return s, nil
}

// Load reattaches a backing directory, relative to the store root unless
// absolute. The step count becomes the number of step files on disk when the
// run is complete. For an interrupted run the declared count is kept, so the
// next iteration reruns it in full.
func Load[T any](store *Store, registry *Registry[T], dir string) (*Sequence[T], error) {
	path := store.Path(dir)
	if !cacheutil.Exists(path) {
		return nil, fmt.Errorf("%w: %s", ErrNoSimulation, path)
	}

	desc, err := readDescriptor(path)
	if err != nil {
		return nil, err
	}
	if desc.Codec != registry.codec.Ext() {
		return nil, fmt.Errorf("steps in %s use codec %s, registry uses %s", path, desc.Codec, registry.codec.Ext())
	}

	if isComplete(path) {
		n, err := countSteps(path)
		if err != nil {
			return nil, err
		}
		desc.Steps = &n
	} else {
		log.Warnf("%s was not completed and will be recalculated", path)
	}

	log.Debugf("loaded %s built by %s", path, desc.Constructor)
	return &Sequence[T]{
		store:    store,
		registry: registry,
		desc:     desc,
		dir:      path,
	}, nil
}

// Dir returns the backing directory, or "" for a fresh sequence.
func (s *Sequence[T]) Dir() string {
	return s.dir
}

// Steps returns the step count and whether one is known.
func (s *Sequence[T]) Steps() (int, bool) {
	if s.desc.Steps == nil {
		return 0, false
	}
	return *s.desc.Steps, true
}

// Descriptor returns a copy of the sequence's descriptor.
func (s *Sequence[T]) Descriptor() Descriptor {
	return s.desc
}

// IsPrecalculated reports whether iterating will replay from disk: the
// backing directory is assigned, exists, and its run completed.
func (s *Sequence[T]) IsPrecalculated() bool {
	return s.dir != "" && cacheutil.Exists(s.dir) && isComplete(s.dir)
}

// State reports the lifecycle state.
func (s *Sequence[T]) State() State {
	switch {
	case s.dir == "":
		return Fresh
	case s.IsPrecalculated():
		return Materialized
	default:
		return Materializing
	}
}

// Err returns the error that ended the last iteration early, if any.
func (s *Sequence[T]) Err() error {
	return s.err
}

// All yields (step, value) pairs. A precalculated sequence is replayed from
// disk; otherwise every value is computed, saved and then yielded. Check Err
// after the loop.
func (s *Sequence[T]) All() iter.Seq2[int, T] {
	return s.all(context.Background())
}

// Materialize computes and saves every step without consuming them. It is a
// no-op for a precalculated sequence.
func (s *Sequence[T]) Materialize(ctx context.Context) error {
	if s.IsPrecalculated() {
		return nil
	}
	for range s.all(ctx) {
	}
	return s.err
}

func (s *Sequence[T]) all(ctx context.Context) iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		s.err = nil
		if s.IsPrecalculated() {
			log.Infof("%s is precalculated, replaying", s.dir)
			s.err = s.replay(ctx, yield)
			return
		}
		log.Info("not precalculated, running more slowly, will go faster next time")
		s.err = s.compute(ctx, yield)
	}
}

func (s *Sequence[T]) replay(ctx context.Context, yield func(int, T) bool) error {
	n, ok := s.Steps()
	if !ok {
		var err error
		if n, err = countSteps(s.dir); err != nil {
			return err
		}
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, err := s.readStep(i)
		if err != nil {
			return err
		}
		if !yield(i, v) {
			return nil
		}
	}
	return nil
}

func (s *Sequence[T]) compute(ctx context.Context, yield func(int, T) bool) error {
	if err := s.prepareDir(); err != nil {
		return err
	}

	log.Debug("saving descriptor first")
	if s.desc.Created.IsZero() {
		s.desc.Created = s.store.now()
	}
	if err := writeDescriptor(s.dir, s.desc); err != nil {
		return err
	}

	limit := -1
	if n, ok := s.Steps(); ok {
		limit = n
	}

	i := 0
	if limit != 0 {
		source, err := s.registry.Build(s.desc.Constructor, s.desc.Params)
		if err != nil {
			return err
		}

		for v := range source {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.writeStep(i, v); err != nil {
				return err
			}
			if !yield(i, v) {
				log.Infof("stopped after step %d, %s is incomplete", i, s.dir)
				return nil
			}
			i++
			if i == limit {
				break
			}
		}
	}

	if limit >= 0 && i < limit {
		log.Warnf("sequence ended after %d of %d steps", i, limit)
	}
	s.desc.Steps = &i
	if err := writeDescriptor(s.dir, s.desc); err != nil {
		return err
	}
	if err := writeComplete(s.dir, i); err != nil {
		return err
	}
	log.Infof("iteration done, %d steps in %s", i, s.dir)
	return nil
}

// prepareDir assigns a backing directory, or empties the one left by an
// interrupted attempt.
func (s *Sequence[T]) prepareDir() error {
	if s.dir == "" {
		dir, err := s.store.newDir()
		if err != nil {
			return err
		}
		s.dir = dir
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create %s: %w", s.dir, err)
	}
	return clearSteps(s.dir)
}

func (s *Sequence[T]) writeStep(i int, v T) (err error) {
	log.Debugf("saving step %d", i)
	f, err := os.Create(stepPath(s.dir, i, s.registry.codec.Ext()))
	if err != nil {
		return fmt.Errorf("failed to save step %d: %w", i, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to save step %d: %w", i, cerr)
		}
	}()
	if err := s.registry.codec.Encode(f, v); err != nil {
		return fmt.Errorf("failed to encode step %d: %w", i, err)
	}
	return nil
}

func (s *Sequence[T]) readStep(i int) (T, error) {
	var zero T
	f, err := os.Open(stepPath(s.dir, i, s.registry.codec.Ext()))
	if err != nil {
		return zero, fmt.Errorf("failed to open step %d: %w", i, err)
	}
	defer f.Close()

	v, err := s.registry.codec.Decode(f)
	if err != nil {
		return zero, fmt.Errorf("failed to decode step %d: %w", i, err)
	}
	return v, nil
}
