// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/mcsim/internal/cacheutil"
)

const (
	// DirPrefix starts the name of every backing directory.
	DirPrefix = "Sim"
	// CompleteFile marks a backing directory whose run finished.
	CompleteFile  = "COMPLETE"
	descriptorExt = ".json"
)

// ErrNoSimulation is returned by Load when the directory does not exist.
var ErrNoSimulation = errors.New("no simulation at the specified location")

// Descriptor is everything needed to rebuild a sequence: which constructor,
// with which parameters, for how many steps.
type Descriptor struct {
	Constructor string          `json:"constructor"`
	Params      json.RawMessage `json:"params,omitempty"`
	// Steps is nil when the sequence runs until exhausted.
	Steps *int   `json:"steps,omitempty"`
	Codec string `json:"codec"`
	// Revision is reserved for source provenance. Nothing fills it yet.
	Revision string    `json:"revision,omitempty"`
	Created  time.Time `json:"created"`
}

// Store is the root directory holding backing directories.
type Store struct {
	Root string
	now  func() time.Time
}

// NewStore returns a store at root, or at cacheutil.SimulationDir when root
// is empty.
func NewStore(root string) *Store {
	if root == "" {
		root = cacheutil.SimulationDir()
	}
	return &Store{Root: root, now: time.Now}
}

// WithClock sets the time source used to name new backing directories.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Path resolves a directory name relative to the root. Absolute paths are
// returned unchanged.
func (s *Store) Path(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(s.Root, dir)
}

func (s *Store) newDir() (string, error) {
	return cacheutil.NewRunDir(s.Root, DirPrefix, s.now())
}

// Info summarizes one backing directory.
type Info struct {
	cacheutil.Run
	State       State
	Steps       int
	Constructor string
	Size        int64
}

// List returns every backing directory beneath the root, most recent first.
func (s *Store) List() ([]Info, error) {
	runs, err := cacheutil.ListRuns(s.Root, DirPrefix)
	if err != nil {
		return nil, err
	}

	infos := make([]Info, 0, len(runs))
	for _, r := range runs {
		info := Info{Run: r, State: Materializing}
		if isComplete(r.Path) {
			info.State = Materialized
		}
		if info.Steps, err = countSteps(r.Path); err != nil {
			return nil, err
		}
		if info.Size, err = cacheutil.DirSize(r.Path); err != nil {
			return nil, err
		}
		if data, err := os.ReadFile(descriptorPath(r.Path)); err == nil {
			info.Constructor = gjson.GetBytes(data, "constructor").String()
		} else {
			log.Debugf("no descriptor in %s", r.Path)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func descriptorPath(dir string) string {
	return filepath.Join(dir, filepath.Base(dir)+descriptorExt)
}

func stepPath(dir string, i int, ext string) string {
	return filepath.Join(dir, strconv.Itoa(i)+ext)
}

func isComplete(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, CompleteFile))
	return err == nil
}

// stepFiles returns the names of the files in dir whose base name is a step
// index.
func stepFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if i, err := strconv.Atoi(base); err == nil && i >= 0 {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func countSteps(dir string) (int, error) {
	names, err := stepFiles(dir)
	return len(names), err
}

// clearSteps removes the steps and completion marker left by an earlier
// attempt.
func clearSteps(dir string) error {
	names, err := stepFiles(dir)
	if err != nil {
		return err
	}
	for _, n := range append(names, CompleteFile) {
		if err := os.Remove(filepath.Join(dir, n)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to clear %s: %w", n, err)
		}
	}
	return nil
}

func readDescriptor(dir string) (Descriptor, error) {
	var d Descriptor
	data, err := os.ReadFile(descriptorPath(dir))
	if err != nil {
		return d, fmt.Errorf("failed to read descriptor: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return d, fmt.Errorf("descriptor %s is not valid JSON", descriptorPath(dir))
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("failed to decode descriptor: %w", err)
	}
	return d, nil
}

func writeDescriptor(dir string, d Descriptor) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode descriptor: %w", err)
	}
	if err := os.WriteFile(descriptorPath(dir), data, 0o644); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write descriptor: %w", err)
	}
	return nil
}

func writeComplete(dir string, steps int) error {
	p := filepath.Join(dir, CompleteFile)
	if err := os.WriteFile(p, []byte(strconv.Itoa(steps)+"\n"), 0o644); err != nil { //nolint:mnd
		return fmt.Errorf("failed to mark %s complete: %w", dir, err)
	}
	return nil
}
