// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/mcsim/internal/meta"
	"github.com/staranto/mcsim/internal/output"
)

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr mcsim-<subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "mcsim-"+subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// writer is where command output goes. Tests replace the root's Writer.
func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// emit writes rows using the global output flags.
func emit(cmd *cli.Command, rows []map[string]interface{}, columns []string) error {
	return output.Emit(rows, columns, outputOptions(cmd), writer(cmd))
}

// CommandBuilder constructs a leaf cli.Command using a consistent pattern.
// It wires metadata, adds the tldr flag, applies the global output flags to
// listing commands, and checks the positional argument count.
type CommandBuilder struct {
	// Name is the leaf name. Path is the full command path used as the tldr
	// page and config namespace, e.g. "runs.list".
	Name      string
	Path      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	// Listing adds the output flags.
	Listing bool
	// MinArgs and MaxArgs bound the positional arguments. MaxArgs < 0 means
	// unbounded.
	MinArgs int
	MaxArgs int
	Action  func(context.Context, *cli.Command) error
	Meta    meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (b *CommandBuilder) Build() *cli.Command {
	flags := append([]cli.Flag{newTldrFlag()}, b.Flags...)
	if b.Listing {
		flags = append(flags, NewGlobalFlags(b.Path)...)
	}

	return &cli.Command{
		Name:      b.Name,
		Usage:     b.Usage,
		UsageText: b.UsageText,
		Metadata: map[string]any{
			"meta": b.Meta,
		},
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			log.Debugf("Executing action for %s %v", b.Path, c.Args().Slice())
			if ShortCircuitTLDR(ctx, c, strings.ReplaceAll(b.Path, ".", "-")) {
				return nil
			}
			if err := ArgsValidator(c, b.MinArgs, b.MaxArgs); err != nil {
				return err
			}
			return b.Action(ctx, c)
		},
	}
}
