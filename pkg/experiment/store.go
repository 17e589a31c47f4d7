// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/sbinet/npyio/npz"
)

const (
	containerExt = ".npz"
	arrayExt     = ".npy"
)

// writeRun stores r beneath dir, one container per filter.
func writeRun(dir string, r Result) error {
	for _, filter := range r.Filters() {
		p := filepath.Join(dir, filter+containerExt)
		if err := writeContainer(p, r[filter]); err != nil {
			return fmt.Errorf("failed to write filter %s: %w", filter, err)
		}
		log.Debugf("wrote %s", p)
	}
	return nil
}

func writeContainer(path string, metrics Metrics) (err error) {
	w, err := npz.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for _, name := range sortedKeys(metrics) {
		v := metrics[name]
		if v == nil {
			v = []float64{}
		}
		if err := w.Write(name+arrayExt, v); err != nil {
			return fmt.Errorf("metric %s: %w", name, err)
		}
	}
	return nil
}

// LoadedRun is a cached run opened from disk. Containers are opened when the
// run is loaded but arrays are decoded on first access and then kept.
type LoadedRun struct {
	Run Run

	readers map[string]*npz.Reader
	metrics map[string][]string
	decoded map[string]Metrics
}

// OpenRun opens every container in the run directory described by run.
func OpenRun(run Run) (*LoadedRun, error) {
	entries, err := os.ReadDir(run.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run directory: %w", err)
	}

	lr := &LoadedRun{
		Run:     run,
		readers: map[string]*npz.Reader{},
		metrics: map[string][]string{},
		decoded: map[string]Metrics{},
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != containerExt {
			log.Debugf("skipping %s", e.Name())
			continue
		}
		filter := strings.TrimSuffix(e.Name(), containerExt)
		r, err := npz.Open(filepath.Join(run.Path, e.Name()))
		if err != nil {
			_ = lr.Close()
			return nil, fmt.Errorf("failed to open filter %s: %w", filter, err)
		}

		var names []string
		for _, k := range r.Keys() {
			names = append(names, strings.TrimSuffix(k, arrayExt))
		}
		sort.Strings(names)

		lr.readers[filter] = r
		lr.metrics[filter] = names
	}

	return lr, nil
}

// Filters returns the filter names in sorted order.
func (l *LoadedRun) Filters() []string {
	return sortedKeys(l.readers)
}

// MetricNames lists the arrays stored for filter without decoding them.
func (l *LoadedRun) MetricNames(filter string) ([]string, error) {
	names, ok := l.metrics[filter]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchFilter, filter)
	}
	return append([]string(nil), names...), nil
}

// Metric decodes one array, or returns it from memory if it was decoded
// before.
func (l *LoadedRun) Metric(filter, metric string) ([]float64, error) {
	if v, ok := l.decoded[filter][metric]; ok {
		return v, nil
	}

	r, ok := l.readers[filter]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchFilter, filter)
	}
	if i := sort.SearchStrings(l.metrics[filter], metric); i >= len(l.metrics[filter]) || l.metrics[filter][i] != metric {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoSuchMetric, filter, metric)
	}

	var v []float64
	if err := r.Read(metric+arrayExt, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s/%s: %w", filter, metric, err)
	}
	if v == nil {
		v = []float64{}
	}

	if l.decoded[filter] == nil {
		l.decoded[filter] = Metrics{}
	}
	l.decoded[filter][metric] = v
	return v, nil
}

// Result decodes every array of the run.
func (l *LoadedRun) Result() (Result, error) {
	return Collect(l)
}

// Close releases the open containers.
func (l *LoadedRun) Close() error {
	var errs []error
	for name, r := range l.readers {
		if err := r.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", name, err))
		}
	}
	l.readers = map[string]*npz.Reader{}
	return errors.Join(errs...)
}
