// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/mcsim/internal/version"
)

func VersionCommandBuilder() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print the mcsim version",
		Action: func(_ context.Context, cmd *cli.Command) error {
			fmt.Fprintln(writer(cmd), version.Version)
			return nil
		},
	}
}
