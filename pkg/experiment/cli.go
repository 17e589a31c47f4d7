// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/mcsim/internal/cacheutil"
	mylog "github.com/staranto/mcsim/internal/log"
)

// NewCommand wraps exp in a command with the --no-plot, --only-plot and
// --latest flags. Options are applied to the Cache after --cache-dir.
func NewCommand(exp Experiment, description string, opts ...Option) *cli.Command {
	return &cli.Command{
		Name:  exp.Name,
		Usage: description,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-plot",
				Usage: "do not plot the results of the experiment",
			},
			&cli.BoolFlag{
				Name:  "only-plot",
				Usage: "only plot the results of the experiment",
			},
			&cli.BoolFlag{
				Name:  "latest",
				Usage: "select the latest experiment",
			},
			&cli.StringFlag{
				Name:  "cache-dir",
				Usage: "experiment cache root",
				Value: cacheutil.ExperimentDir(),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c := NewCache(append([]Option{WithRoot(cmd.String("cache-dir"))}, opts...)...)
			return c.Run(ctx, exp, RunOptions{
				NoPlot:    cmd.Bool("no-plot"),
				OnlyPlot:  cmd.Bool("only-plot"),
				UseLatest: cmd.Bool("latest"),
			})
		},
	}
}

// CLI parses args (including the program name) and runs exp. It is meant to
// be the whole body of an experiment's main function:
//
//	if err := experiment.CLI(ctx, exp, "beamformer sweep", os.Args); err != nil {
//		fmt.Fprintln(os.Stderr, err)
//		os.Exit(1)
//	}
func CLI(ctx context.Context, exp Experiment, description string, args []string, opts ...Option) error {
	mylog.InitLogger()
	return NewCommand(exp, description, opts...).Run(ctx, args)
}
