// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/apex/log"

	"github.com/staranto/mcsim/internal/config"
)

const (
	// MarkerFormat is the timestamp suffix of every run directory. It is fixed
	// width so names sort in creation order.
	MarkerFormat = "2006-01-02_15-04"

	DefaultExperimentDir = "experiments/experiments_cache"
	DefaultSimulationDir = "precalculated_simulations"
)

var runNameRe = regexp.MustCompile(`^(.*?)(\d{4}-\d{2}-\d{2}_\d{2}-\d{2})(?:_(\d+))?$`)

// Run describes one timestamp-named directory beneath a cache root.
type Run struct {
	// Name is the directory base name, e.g. toy2025-06-01_14-30.
	Name string
	// Prefix is the experiment name or "Sim".
	Prefix  string
	Path    string
	Created time.Time
	// Seq disambiguates runs created within the same minute. Zero for the
	// first run of a minute.
	Seq int
}

// Marker returns prefix followed by the formatted timestamp.
func Marker(prefix string, t time.Time) string {
	return prefix + t.Format(MarkerFormat)
}

// ParseRunName splits a run directory name into its prefix, creation time and
// sequence number. ok is false when the name does not end in a marker.
func ParseRunName(name string) (prefix string, created time.Time, seq int, ok bool) {
	m := runNameRe.FindStringSubmatch(name)
	if m == nil {
		return "", time.Time{}, 0, false
	}
	created, err := time.ParseInLocation(MarkerFormat, m[2], time.Local)
	if err != nil {
		return "", time.Time{}, 0, false
	}
	if m[3] != "" {
		seq, _ = strconv.Atoi(m[3])
	}
	return m[1], created, seq, true
}

// ExperimentDir resolves the experiment cache root.
// Precedence:
//  1. MCSIM_CACHE_DIR, if set and non-empty
//  2. cache.dir from the config file
//  3. DefaultExperimentDir, relative to the working directory
func ExperimentDir() string {
	return resolveDir("MCSIM_CACHE_DIR", "cache.dir", DefaultExperimentDir)
}

// SimulationDir resolves the checkpoint root the same way as ExperimentDir,
// using MCSIM_SIM_DIR and sim.dir.
func SimulationDir() string {
	return resolveDir("MCSIM_SIM_DIR", "sim.dir", DefaultSimulationDir)
}

func resolveDir(env, key, def string) string {
	if c, ok := os.LookupEnv(env); ok && c != "" {
		return c
	}
	if c, err := config.GetString(key, ""); err == nil && c != "" {
		return c
	}
	return def
}

// Exists reports whether path is an existing directory.
func Exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// NewRunDir creates a fresh run directory for prefix beneath root. When a
// directory for the same minute already exists a _N suffix is appended, so a
// previous run is never written into.
func NewRunDir(root, prefix string, now time.Time) (string, error) {
	if err := os.MkdirAll(root, 0o755); err != nil { //nolint:mnd
		return "", fmt.Errorf("failed to create cache root: %w", err)
	}

	base := Marker(prefix, now)
	for seq := 0; ; seq++ {
		name := base
		if seq > 0 {
			name = fmt.Sprintf("%s_%d", base, seq)
		}
		p := filepath.Join(root, name)
		err := os.Mkdir(p, 0o755) //nolint:mnd
		if err == nil {
			log.Debugf("created run directory %s", p)
			return p, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("failed to create run directory: %w", err)
		}
	}
}

// ListRuns returns the run directories beneath root whose prefix equals
// prefix, most recent first. An empty prefix lists every run. A missing root
// yields no runs.
func ListRuns(root, prefix string) ([]Run, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache root: %w", err)
	}

	var runs []Run
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p, created, seq, ok := ParseRunName(e.Name())
		if !ok {
			continue
		}
		if prefix != "" && p != prefix {
			continue
		}
		runs = append(runs, Run{
			Name:    e.Name(),
			Prefix:  p,
			Path:    filepath.Join(root, e.Name()),
			Created: created,
			Seq:     seq,
		})
	}

	SortRuns(runs)
	return runs, nil
}

// SortRuns orders runs most recent first.
func SortRuns(runs []Run) {
	sort.SliceStable(runs, func(i, j int) bool {
		a, b := runs[i], runs[j]
		if !a.Created.Equal(b.Created) {
			return a.Created.After(b.Created)
		}
		if a.Seq != b.Seq {
			return a.Seq > b.Seq
		}
		return a.Name > b.Name
	})
}

// DirSize sums the sizes of the regular files beneath path.
func DirSize(path string) (int64, error) {
	var size int64
	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			size += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to size %s: %w", path, err)
	}
	return size, nil
}

// Purge removes run directories beneath root created more than hours ago and
// returns the removed paths. If hours <= 0 it is a no-op. Runs are never
// removed other than through Purge.
func Purge(root string, hours int) ([]string, error) {
	if hours <= 0 {
		log.Debug("cache cleaning disabled")
		return nil, nil
	}

	runs, err := ListRuns(root, "")
	if err != nil {
		return nil, fmt.Errorf("failed to purge cache: %w", err)
	}

	maxAge := time.Duration(hours) * time.Hour
	var removed []string
	for _, r := range runs {
		if time.Since(r.Created) <= maxAge {
			continue
		}
		if err := os.RemoveAll(r.Path); err != nil {
			log.WithError(err).Warnf("failed to remove run %s", r.Path)
			continue
		}
		log.Debugf("removed run %s", r.Path)
		removed = append(removed, r.Path)
	}
	return removed, nil
}
