// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/mcsim/internal/archive"
	"github.com/staranto/mcsim/internal/cacheutil"
	"github.com/staranto/mcsim/internal/version"
	"github.com/staranto/mcsim/pkg/checkpoint"
	"github.com/staranto/mcsim/pkg/experiment"
)

var ctx = context.Background()

// run executes mcsim with args and returns what it wrote.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MCSIM_CFG", filepath.Join(t.TempDir(), "none.yaml"))

	full := append([]string{"mcsim"}, args...)
	app, err := InitApp(ctx, full)
	require.NoError(t, err)

	var buf bytes.Buffer
	app.Writer = &buf
	app.ErrWriter = io.Discard
	app.Reader = strings.NewReader(stdin)
	err = app.Run(ctx, full)
	return buf.String(), err
}

func seedRuns(t *testing.T, at ...time.Time) string {
	t.Helper()
	root := t.TempDir()
	for i, ts := range at {
		c := experiment.NewCache(experiment.WithRoot(root), experiment.WithClock(func() time.Time { return ts }))
		_, err := c.Save("toy", experiment.Result{"f1": experiment.Metrics{"m1": {1, 2, float64(3 + i)}}})
		require.NoError(t, err)
	}
	return root
}

func decode(t *testing.T, out string) []map[string]interface{} {
	t.Helper()
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &rows), out)
	return rows
}

func TestRunsList(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 14, 30, 0, 0, time.Local)
	root := seedRuns(t, t0, t0.Add(time.Hour))

	out, err := run(t, "", "runs", "list", "--cache-dir", root, "-o", "json")
	require.NoError(t, err)
	rows := decode(t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, "toy2025-06-01_15-30", rows[0]["run"])
	assert.Equal(t, "toy", rows[0]["experiment"])

	out, err = run(t, "", "runs", "list", "--cache-dir", root, "-o", "json", "other")
	require.NoError(t, err)
	assert.Empty(t, decode(t, out))

	out, err = run(t, "", "runs", "list", "--cache-dir", root, "-o", "json", "--filter", "run^toy2025-06-01_14")
	require.NoError(t, err)
	assert.Len(t, decode(t, out), 1)

	out, err = run(t, "", "runs", "list", "--cache-dir", root)
	require.NoError(t, err)
	assert.Contains(t, out, "toy2025-06-01_14-30")

	_, err = run(t, "", "runs", "list", "--cache-dir", root, "a", "b")
	assert.ErrorContains(t, err, "at most 1")

	_, err = run(t, "", "runs", "list", "--cache-dir", root, "-o", "xml")
	assert.Error(t, err)
}

func TestRunsShow(t *testing.T) {
	root := seedRuns(t, time.Date(2025, 6, 1, 14, 30, 0, 0, time.Local))

	out, err := run(t, "", "runs", "show", "--cache-dir", root, "-o", "json", "toy2025-06-01_14-30")
	require.NoError(t, err)
	rows := decode(t, out)
	require.Len(t, rows, 1)
	assert.Equal(t, "f1", rows[0]["filter"])
	assert.Equal(t, "m1", rows[0]["metric"])
	assert.EqualValues(t, 3, rows[0]["len"])
	assert.EqualValues(t, 1, rows[0]["min"])
	assert.EqualValues(t, 3, rows[0]["max"])
	assert.EqualValues(t, 2, rows[0]["mean"])

	_, err = run(t, "", "runs", "show", "--cache-dir", root, "nope")
	assert.ErrorContains(t, err, "no run nope")

	_, err = run(t, "", "runs", "show", "--cache-dir", root)
	assert.ErrorContains(t, err, "at least 1")
}

func TestRunsDiff(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 14, 30, 0, 0, time.Local)
	root := seedRuns(t, t0, t0.Add(time.Hour))

	out, err := run(t, "", "runs", "diff", "--cache-dir", root, "toy2025-06-01_14-30", "toy2025-06-01_15-30")
	require.NoError(t, err)
	assert.Contains(t, out, "m1")

	out, err = run(t, "", "runs", "diff", "--cache-dir", root, "toy2025-06-01_14-30", filepath.Join(root, "toy2025-06-01_14-30"))
	require.NoError(t, err)
	assert.Equal(t, "no differences\n", out)
}

func TestRunsPurge(t *testing.T) {
	old := time.Now().Add(-48 * time.Hour)
	root := seedRuns(t, old, time.Now())

	out, err := run(t, "n\n", "runs", "purge", "--older-than", "24", "--cache-dir", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Remove 1 run(s)")
	runs, err := cacheutil.ListRuns(root, "toy")
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	out, err = run(t, "", "runs", "purge", "--older-than", "24", "--yes", "--cache-dir", root)
	require.NoError(t, err)
	assert.Contains(t, out, cacheutil.Marker("toy", old))
	runs, err = cacheutil.ListRuns(root, "toy")
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	out, err = run(t, "", "runs", "purge", "--older-than", "24", "--cache-dir", root)
	require.NoError(t, err)
	assert.Equal(t, "nothing to purge\n", out)

	_, err = run(t, "", "runs", "purge", "--cache-dir", root)
	assert.ErrorContains(t, err, "older-than")
}

type fakeUploader struct{ keys []string }

func (f *fakeUploader) PutObject(_ context.Context, in *s3v2.PutObjectInput, _ ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error) {
	f.keys = append(f.keys, *in.Key)
	return &s3v2.PutObjectOutput{}, nil
}

func TestRunsPush(t *testing.T) {
	root := seedRuns(t, time.Date(2025, 6, 1, 14, 30, 0, 0, time.Local))

	fake := &fakeUploader{}
	saved := newUploader
	newUploader = func(context.Context, ...archive.Option) (archive.Uploader, error) { return fake, nil }
	t.Cleanup(func() { newUploader = saved })

	out, err := run(t, "", "runs", "push", "--bucket", "b", "--prefix", "lab", "--cache-dir", root, "toy2025-06-01_14-30")
	require.NoError(t, err)
	assert.Equal(t, []string{"lab/toy2025-06-01_14-30/f1.npz"}, fake.keys)
	assert.Equal(t, "s3://b/lab/toy2025-06-01_14-30/f1.npz\n", out)

	t.Setenv("MCSIM_BUCKET", "")
	_, err = run(t, "", "runs", "push", "--cache-dir", root, "toy2025-06-01_14-30")
	assert.ErrorContains(t, err, "bucket")
}

func TestSimsList(t *testing.T) {
	root := t.TempDir()
	reg := checkpoint.NewRegistry[int](nil)
	reg.MustRegister("list", checkpoint.SliceConstructor[int]())

	store := checkpoint.NewStore(root).WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 14, 30, 0, 0, time.Local)
	})
	seq, err := checkpoint.New(store, reg, "list", []int{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, seq.Materialize(ctx))

	out, err := run(t, "", "sims", "list", "--sim-dir", root, "-o", "json")
	require.NoError(t, err)
	rows := decode(t, out)
	require.Len(t, rows, 1)
	assert.Equal(t, "Sim2025-06-01_14-30", rows[0]["run"])
	assert.Equal(t, "materialized", rows[0]["state"])
	assert.EqualValues(t, 3, rows[0]["steps"])
	assert.Equal(t, "list", rows[0]["constructor"])
}

func TestVersionAndCompletion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", out)

	out, err = run(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "complete -F _mcsim mcsim")

	out, err = run(t, "", "completion", "zsh")
	require.NoError(t, err)
	assert.Contains(t, out, "#compdef mcsim")
}

func TestValidators(t *testing.T) {
	assert.NoError(t, FlagValidators("json", OutputValidator))
	assert.Error(t, FlagValidators("raw", OutputValidator))
	assert.Error(t, FlagValidators("--sort", JammedFlagValidator))
	assert.ErrorContains(t, FlagValidators("name", JammedFlagValidator, OutputValidator), "must be one of")
}
