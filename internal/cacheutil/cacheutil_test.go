// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkRun(t *testing.T, root, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, name), 0o755))
}

func TestMarker(t *testing.T) {
	ts := time.Date(2025, 6, 1, 9, 5, 59, 0, time.Local)
	assert.Equal(t, "toy2025-06-01_09-05", Marker("toy", ts))
	assert.Equal(t, "Sim2025-06-01_09-05", Marker("Sim", ts))
}

func TestParseRunName(t *testing.T) {
	tests := []struct {
		name       string
		wantPrefix string
		wantSeq    int
		wantOK     bool
	}{
		{name: "toy2025-06-01_09-05", wantPrefix: "toy", wantOK: true},
		{name: "toy2025-06-01_09-05_3", wantPrefix: "toy", wantSeq: 3, wantOK: true},
		{name: "exp22025-06-01_09-05", wantPrefix: "exp2", wantOK: true},
		{name: "Sim2025-06-01_09-05", wantPrefix: "Sim", wantOK: true},
		{name: "toy", wantOK: false},
		{name: "toy2025-13-01_09-05", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix, _, seq, ok := ParseRunName(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantPrefix, prefix)
				assert.Equal(t, tt.wantSeq, seq)
			}
		})
	}
}

func TestListRuns_LatestFirst(t *testing.T) {
	root := t.TempDir()
	mkRun(t, root, "toy2025-06-01_09-05")
	mkRun(t, root, "toy2025-06-02_09-05")
	mkRun(t, root, "toy2025-06-02_09-05_1")
	mkRun(t, root, "toyota2025-07-01_00-00")
	mkRun(t, root, "not-a-run")
	require.NoError(t, os.WriteFile(filepath.Join(root, "toy2025-08-01_00-00"), nil, 0o600))

	runs, err := ListRuns(root, "toy")
	require.NoError(t, err)

	var names []string
	for _, r := range runs {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"toy2025-06-02_09-05_1",
		"toy2025-06-02_09-05",
		"toy2025-06-01_09-05",
	}, names)

	all, err := ListRuns(root, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "toyota2025-07-01_00-00", all[0].Name)
}

func TestListRuns_MissingRoot(t *testing.T) {
	runs, err := ListRuns(filepath.Join(t.TempDir(), "nope"), "toy")
	assert.NoError(t, err)
	assert.Empty(t, runs)
}

func TestNewRunDir_SameMinute(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	now := time.Date(2025, 6, 1, 9, 5, 0, 0, time.Local)

	first, err := NewRunDir(root, "toy", now)
	require.NoError(t, err)
	second, err := NewRunDir(root, "toy", now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "toy2025-06-01_09-05"), first)
	assert.Equal(t, filepath.Join(root, "toy2025-06-01_09-05_1"), second)

	runs, err := ListRuns(root, "toy")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].Path)
}

func TestNewRunDir_OrderMatchesTime(t *testing.T) {
	root := t.TempDir()
	t1 := time.Date(2025, 12, 31, 23, 59, 0, 0, time.Local)
	t2 := t1.Add(2 * time.Minute)

	_, err := NewRunDir(root, "toy", t2)
	require.NoError(t, err)
	_, err = NewRunDir(root, "toy", t1)
	require.NoError(t, err)

	runs, err := ListRuns(root, "toy")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, Marker("toy", t2), runs[0].Name)
	assert.Greater(t, runs[0].Name, runs[1].Name)
}

func TestDirSize(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a"), []byte("12345"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b"), []byte("123"), 0o600))

	size, err := DirSize(root)
	require.NoError(t, err)
	assert.Equal(t, int64(8), size)
}

func TestPurge(t *testing.T) {
	root := t.TempDir()
	mkRun(t, root, "toy2001-01-01_00-00")
	recent := Marker("toy", time.Now())
	mkRun(t, root, recent)

	removed, err := Purge(root, 0)
	require.NoError(t, err)
	assert.Empty(t, removed)

	removed, err = Purge(root, 24)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "toy2001-01-01_00-00")}, removed)
	assert.False(t, Exists(filepath.Join(root, "toy2001-01-01_00-00")))
	assert.True(t, Exists(filepath.Join(root, recent)))
}

func TestExperimentDir_Precedence(t *testing.T) {
	t.Setenv("MCSIM_CFG", "/nonexistent/mcsim.yaml")
	t.Setenv("MCSIM_CACHE_DIR", "")
	assert.Equal(t, DefaultExperimentDir, ExperimentDir())

	t.Setenv("MCSIM_CACHE_DIR", "/data/cache")
	assert.Equal(t, "/data/cache", ExperimentDir())

	t.Setenv("MCSIM_SIM_DIR", "/data/sims")
	assert.Equal(t, "/data/sims", SimulationDir())
}
