// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/mcsim/internal/archive"
	"github.com/staranto/mcsim/internal/cacheutil"
	"github.com/staranto/mcsim/internal/differ"
	"github.com/staranto/mcsim/internal/meta"
	"github.com/staranto/mcsim/internal/prompt"
	"github.com/staranto/mcsim/pkg/experiment"
)

// newUploader builds the S3 client used by runs push.
var newUploader = func(ctx context.Context, opts ...archive.Option) (archive.Uploader, error) {
	return archive.NewS3(ctx, opts...)
}

// resolveRun finds a run directory given either a path or a name beneath
// root.
func resolveRun(root, arg string) (cacheutil.Run, error) {
	p := arg
	if !cacheutil.Exists(p) {
		p = filepath.Join(root, arg)
	}
	if !cacheutil.Exists(p) {
		return cacheutil.Run{}, fmt.Errorf("no run %s in %s", arg, root)
	}

	run := cacheutil.Run{Name: filepath.Base(p), Path: p}
	if prefix, created, seq, ok := cacheutil.ParseRunName(run.Name); ok {
		run.Prefix, run.Created, run.Seq = prefix, created, seq
	}
	return run, nil
}

// RunsListCommandAction lists cached experiment runs, optionally only those
// of one experiment.
func RunsListCommandAction(_ context.Context, cmd *cli.Command) error {
	root := cmd.String("cache-dir")
	runs, err := cacheutil.ListRuns(root, cmd.Args().First())
	if err != nil {
		return err
	}

	rows := make([]map[string]interface{}, 0, len(runs))
	for _, r := range runs {
		size, err := cacheutil.DirSize(r.Path)
		if err != nil {
			return err
		}
		rows = append(rows, map[string]interface{}{
			"experiment": r.Prefix,
			"run":        r.Name,
			"created":    r.Created,
			"age":        humanize.Time(r.Created),
			"size":       humanize.Bytes(uint64(size)),
		})
	}
	return emit(cmd, rows, []string{"experiment", "run", "created", "age", "size"})
}

// RunsShowCommandAction lists the filters and metrics of one run with simple
// statistics of each array.
func RunsShowCommandAction(_ context.Context, cmd *cli.Command) error {
	run, err := resolveRun(cmd.String("cache-dir"), cmd.Args().First())
	if err != nil {
		return err
	}

	lr, err := experiment.OpenRun(run)
	if err != nil {
		return err
	}
	defer lr.Close()

	var rows []map[string]interface{}
	for _, f := range lr.Filters() {
		names, err := lr.MetricNames(f)
		if err != nil {
			return err
		}
		for _, m := range names {
			v, err := lr.Metric(f, m)
			if err != nil {
				return err
			}
			row := map[string]interface{}{"filter": f, "metric": m, "len": len(v)}
			if len(v) > 0 {
				row["min"], row["max"], row["mean"] = stats(v)
			}
			rows = append(rows, row)
		}
	}
	return emit(cmd, rows, []string{"filter", "metric", "len", "min", "max", "mean"})
}

func stats(v []float64) (lo, hi, mean float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	var sum float64
	for _, x := range v {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
		sum += x
	}
	return lo, hi, sum / float64(len(v))
}

// RunsDiffCommandAction prints the differences between two runs.
func RunsDiffCommandAction(_ context.Context, cmd *cli.Command) error {
	root := cmd.String("cache-dir")
	left, err := resolveRun(root, cmd.Args().Get(0))
	if err != nil {
		return err
	}
	right, err := resolveRun(root, cmd.Args().Get(1))
	if err != nil {
		return err
	}

	rep, err := differ.Runs(left, right, cmd.Bool("color"))
	if err != nil {
		return err
	}
	w := writer(cmd)
	if !rep.Modified {
		fmt.Fprintln(w, "no differences")
		return nil
	}
	fmt.Fprint(w, rep.Text)
	return nil
}

// RunsPurgeCommandAction removes runs older than --older-than hours after
// confirmation.
func RunsPurgeCommandAction(_ context.Context, cmd *cli.Command) error {
	root := cmd.String("cache-dir")
	hours := int(cmd.Int("older-than"))
	if hours <= 0 {
		return errors.New("--older-than must be a positive number of hours (or set cache.clean)")
	}

	runs, err := cacheutil.ListRuns(root, "")
	if err != nil {
		return err
	}
	var stale int
	for _, r := range runs {
		if time.Since(r.Created) > time.Duration(hours)*time.Hour {
			stale++
		}
	}

	w := writer(cmd)
	if stale == 0 {
		fmt.Fprintln(w, "nothing to purge")
		return nil
	}

	if !cmd.Bool("yes") {
		q := fmt.Sprintf("Remove %d run(s) older than %d hours from %s?", stale, hours, root)
		ok, err := prompt.YesNo(reader(cmd), w, q, "no")
		if err != nil {
			return err
		}
		if !ok {
			log.Info("purge cancelled")
			return nil
		}
	}

	removed, err := cacheutil.Purge(root, hours)
	if err != nil {
		return err
	}
	for _, p := range removed {
		fmt.Fprintln(w, p)
	}
	return nil
}

func reader(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}

// RunsPushCommandAction uploads a run directory to S3.
func RunsPushCommandAction(ctx context.Context, cmd *cli.Command) error {
	run, err := resolveRun(cmd.String("cache-dir"), cmd.Args().First())
	if err != nil {
		return err
	}

	bucket := cmd.String("bucket")
	if bucket == "" {
		return errors.New("--bucket is required (or set runs.push.bucket)")
	}

	var opts []archive.Option
	if p := cmd.String("profile"); p != "" {
		opts = append(opts, archive.WithProfile(p))
	}
	if r := cmd.String("region"); r != "" {
		opts = append(opts, archive.WithRegion(r))
	}

	up, err := newUploader(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	keys, err := archive.Push(ctx, up, run.Path, archive.Target{Bucket: bucket, Prefix: cmd.String("prefix")})
	if err != nil {
		return err
	}
	w := writer(cmd)
	for _, k := range keys {
		fmt.Fprintf(w, "s3://%s/%s\n", bucket, k)
	}
	return nil
}

// RunsCommandBuilder constructs the "runs" command group.
func RunsCommandBuilder(m meta.Meta) *cli.Command {
	cacheDir := func() cli.Flag { return NewCacheDirFlag(m.CacheDir) }

	return &cli.Command{
		Name:  "runs",
		Usage: "inspect cached experiment runs",
		Commands: []*cli.Command{
			(&CommandBuilder{
				Name:      "list",
				Path:      "runs.list",
				Usage:     "list cached runs, most recent first",
				UsageText: "mcsim runs list [experiment] [options]",
				Flags:     []cli.Flag{cacheDir()},
				Listing:   true,
				MaxArgs:   1,
				Action:    RunsListCommandAction,
				Meta:      m,
			}).Build(),
			(&CommandBuilder{
				Name:      "show",
				Path:      "runs.show",
				Usage:     "show the filters and metrics of a run",
				UsageText: "mcsim runs show <run> [options]",
				Flags:     []cli.Flag{cacheDir()},
				Listing:   true,
				MinArgs:   1,
				MaxArgs:   1,
				Action:    RunsShowCommandAction,
				Meta:      m,
			}).Build(),
			(&CommandBuilder{
				Name:      "diff",
				Path:      "runs.diff",
				Usage:     "show the differences between two runs",
				UsageText: "mcsim runs diff <run> <run> [options]",
				Flags: []cli.Flag{
					cacheDir(),
					&cli.BoolFlag{
						Name:    "color",
						Aliases: []string{"c"},
						Usage:   "color the diff",
					},
				},
				MinArgs: 2,
				MaxArgs: 2,
				Action:  RunsDiffCommandAction,
				Meta:    m,
			}).Build(),
			(&CommandBuilder{
				Name:      "purge",
				Path:      "runs.purge",
				Usage:     "remove old runs",
				UsageText: "mcsim runs purge --older-than <hours> [options]",
				Flags: []cli.Flag{
					cacheDir(),
					NewOlderThanFlag(m.Config.Source),
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "do not ask for confirmation",
					},
				},
				Action: RunsPurgeCommandAction,
				Meta:   m,
			}).Build(),
			(&CommandBuilder{
				Name:      "push",
				Path:      "runs.push",
				Usage:     "upload a run to S3",
				UsageText: "mcsim runs push <run> --bucket <bucket> [options]",
				Flags:     append([]cli.Flag{cacheDir()}, NewArchiveFlags(m.Config.Source)...),
				MinArgs:   1,
				MaxArgs:   1,
				Action:    RunsPushCommandAction,
				Meta:      m,
			}).Build(),
		},
	}
}
