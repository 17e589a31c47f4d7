// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/mcsim/internal/meta"
	"github.com/staranto/mcsim/pkg/checkpoint"
)

// SimsListCommandAction lists checkpointed simulation directories.
func SimsListCommandAction(_ context.Context, cmd *cli.Command) error {
	infos, err := checkpoint.NewStore(cmd.String("sim-dir")).List()
	if err != nil {
		return err
	}

	rows := make([]map[string]interface{}, 0, len(infos))
	for _, i := range infos {
		rows = append(rows, map[string]interface{}{
			"run":         i.Name,
			"created":     i.Created,
			"age":         humanize.Time(i.Created),
			"state":       i.State.String(),
			"steps":       i.Steps,
			"constructor": i.Constructor,
			"size":        humanize.Bytes(uint64(i.Size)),
		})
	}
	return emit(cmd, rows, []string{"run", "created", "age", "state", "steps", "constructor", "size"})
}

// SimsCommandBuilder constructs the "sims" command group.
func SimsCommandBuilder(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:  "sims",
		Usage: "inspect checkpointed simulations",
		Commands: []*cli.Command{
			(&CommandBuilder{
				Name:      "list",
				Path:      "sims.list",
				Usage:     "list checkpointed simulations, most recent first",
				UsageText: "mcsim sims list [options]",
				Flags:     []cli.Flag{NewSimDirFlag(m.SimDir)},
				Listing:   true,
				Action:    SimsListCommandAction,
				Meta:      m,
			}).Build(),
		},
	}
}
