// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sort"
)

var ErrUnknownConstructor = errors.New("unknown constructor")

// Constructor builds the sequence to checkpoint from its JSON parameters.
type Constructor[T any] func(params json.RawMessage) (iter.Seq[T], error)

// Registry maps constructor names to Constructors for one element type, and
// fixes the Codec used to store those elements.
type Registry[T any] struct {
	codec Codec[T]
	ctors map[string]Constructor[T]
}

// NewRegistry returns an empty registry. A nil codec selects YAMLCodec.
func NewRegistry[T any](codec Codec[T]) *Registry[T] {
	if codec == nil {
		codec = YAMLCodec[T]{}
	}
	return &Registry[T]{codec: codec, ctors: map[string]Constructor[T]{}}
}

// Register adds a constructor. Names must be unique.
func (r *Registry[T]) Register(name string, c Constructor[T]) error {
	if name == "" || c == nil {
		return errors.New("constructor needs a name and a function")
	}
	if _, ok := r.ctors[name]; ok {
		return fmt.Errorf("constructor %s already registered", name)
	}
	r.ctors[name] = c
	return nil
}

// MustRegister is Register for package-level setup. It panics on error.
func (r *Registry[T]) MustRegister(name string, c Constructor[T]) {
	if err := r.Register(name, c); err != nil {
		panic(err)
	}
}

// Has reports whether name is registered.
func (r *Registry[T]) Has(name string) bool {
	_, ok := r.ctors[name]
	return ok
}

// Names lists the registered constructors.
func (r *Registry[T]) Names() []string {
	names := make([]string, 0, len(r.ctors))
	for n := range r.ctors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build calls the named constructor.
func (r *Registry[T]) Build(name string, params json.RawMessage) (iter.Seq[T], error) {
	c, ok := r.ctors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownConstructor, name)
	}
	seq, err := c(params)
	if err != nil {
		return nil, fmt.Errorf("constructor %s: %w", name, err)
	}
	return seq, nil
}

// SliceConstructor yields the elements of a JSON array given as params.
func SliceConstructor[T any]() Constructor[T] {
	return func(params json.RawMessage) (iter.Seq[T], error) {
		var vs []T
		if err := json.Unmarshal(params, &vs); err != nil {
			return nil, fmt.Errorf("params are not a list: %w", err)
		}
		return slices.Values(vs), nil
	}
}
