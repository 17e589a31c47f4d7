// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/mcsim/internal/cacheutil"
	"github.com/staranto/mcsim/internal/config"
	"github.com/staranto/mcsim/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	// The arg[1] immediately following the binary (arg[0]) is the command
	// group and also the namespace key used when retrieving config values.
	// arg[1] could be -h/--help, so ignore it if it appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Debugf("no config: %v", err)
	}
	cfg.Namespace = ns
	config.Config.Namespace = ns

	m := meta.Meta{
		Args:     args,
		Config:   cfg,
		Context:  ctx,
		CacheDir: cacheutil.ExperimentDir(),
		SimDir:   cacheutil.SimulationDir(),
	}
	log.Debugf("cache dir: %s, sim dir: %s", m.CacheDir, m.SimDir)

	app := &cli.Command{
		Name:  "mcsim",
		Usage: "inspect experiment caches and checkpointed simulations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "mcsim version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		RunsCommandBuilder(m),
		SimsCommandBuilder(m),
		VersionCommandBuilder(),
		CompletionCommandBuilder(m),
	)

	// Make sure flags are sorted for the --help text.
	var sortFlags func(cmds []*cli.Command)
	sortFlags = func(cmds []*cli.Command) {
		for _, cmd := range cmds {
			sort.Slice(cmd.Flags, func(i, j int) bool {
				return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
			})
			sortFlags(cmd.Commands)
		}
	}
	sortFlags(app.Commands)

	return app, nil
}
