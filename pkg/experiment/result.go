// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNoSuchFilter = errors.New("no such filter")
	ErrNoSuchMetric = errors.New("no such metric")
	ErrInvalidName  = errors.New("invalid filter or metric name")
)

// Metrics maps a metric name to its array.
type Metrics map[string][]float64

// Result maps a filter name to that filter's metrics.
type Result map[string]Metrics

// Results is the read side of a result. Both a freshly computed Result and a
// cached LoadedRun implement it, so a plot works the same on either.
type Results interface {
	Filters() []string
	MetricNames(filter string) ([]string, error)
	Metric(filter, metric string) ([]float64, error)
}

// Filters returns the filter names in sorted order.
func (r Result) Filters() []string {
	return sortedKeys(r)
}

// MetricNames returns the metric names of filter in sorted order.
func (r Result) MetricNames(filter string) ([]string, error) {
	m, ok := r[filter]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchFilter, filter)
	}
	return sortedKeys(m), nil
}

// Metric returns one array.
func (r Result) Metric(filter, metric string) ([]float64, error) {
	m, ok := r[filter]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchFilter, filter)
	}
	v, ok := m[metric]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoSuchMetric, filter, metric)
	}
	return v, nil
}

// Validate checks that every filter and metric name can be used as a file
// or archive entry name.
func (r Result) Validate() error {
	for filter, metrics := range r {
		if err := validName(filter); err != nil {
			return err
		}
		for metric := range metrics {
			if err := validName(metric); err != nil {
				return err
			}
		}
	}
	return nil
}

func validName(s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, s)
	}
	return nil
}

// Collect materializes any Results into a Result.
func Collect(rs Results) (Result, error) {
	out := Result{}
	for _, f := range rs.Filters() {
		names, err := rs.MetricNames(f)
		if err != nil {
			return nil, err
		}
		out[f] = Metrics{}
		for _, n := range names {
			v, err := rs.Metric(f, n)
			if err != nil {
				return nil, err
			}
			out[f][n] = v
		}
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
