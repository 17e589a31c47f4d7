// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v3"

	"github.com/staranto/mcsim/internal/command"
)

// Doc generator:
// - Walks the mcsim command tree
// - Generates:
//   - docs/man/share/man1/mcsim-<group>-<cmd>.1 via md2man
//   - docs/tldr/mcsim-<group>-<cmd>.md from the usage lines

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	tldrOutDir := filepath.Join(repoRoot, "docs", "tldr")

	if err := os.MkdirAll(manOutDir, 0o755); err != nil {
		fatalf("creating man output dir: %v", err)
	}
	if err := os.MkdirAll(tldrOutDir, 0o755); err != nil {
		fatalf("creating tldr output dir: %v", err)
	}

	app, err := command.InitApp(context.Background(), []string{"mcsim"})
	if err != nil {
		fatalf("building command tree: %v", err)
	}

	var processed int
	for _, leaf := range leaves(app, nil) {
		name := "mcsim-" + strings.Join(leaf.path, "-")

		manBytes := md2man.Render([]byte(markdown(name, leaf.cmd)))
		manPath := filepath.Join(manOutDir, name+".1")
		if err := writeFileIfChanged(manPath, manBytes, writeOnlyIfChanged); err != nil {
			fatalf("writing man page for %s: %v", name, err)
		}

		tldrPath := filepath.Join(tldrOutDir, name+".md")
		if err := writeFileIfChanged(tldrPath, []byte(buildTLDR(name, leaf.cmd)), writeOnlyIfChanged); err != nil {
			fatalf("writing TLDR for %s: %v", name, err)
		}

		processed++
	}

	if processed == 0 {
		fatalf("no commands found")
	}
}

type leaf struct {
	path []string
	cmd  *cli.Command
}

// leaves returns the commands that have an action, depth first.
func leaves(cmd *cli.Command, path []string) []leaf {
	var out []leaf
	for _, c := range cmd.Commands {
		p := append(append([]string{}, path...), c.Name)
		if len(c.Commands) > 0 {
			out = append(out, leaves(c, p)...)
			continue
		}
		out = append(out, leaf{path: p, cmd: c})
	}
	return out
}

func markdown(name string, cmd *cli.Command) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s 1 \"\" \"mcsim\" \"mcsim manual\"\n", strings.ToUpper(name))
	b.WriteString("===\n\n")
	b.WriteString("# NAME\n\n")
	fmt.Fprintf(&b, "%s - %s\n\n", name, cmd.Usage)
	if cmd.UsageText != "" {
		b.WriteString("# SYNOPSIS\n\n")
		fmt.Fprintf(&b, "`%s`\n\n", cmd.UsageText)
	}

	var flags []cli.Flag
	for _, f := range cmd.Flags {
		if vf, ok := f.(cli.VisibleFlag); ok && !vf.IsVisible() {
			continue
		}
		flags = append(flags, f)
	}
	if len(flags) > 0 {
		b.WriteString("# OPTIONS\n\n")
		for _, f := range flags {
			var names []string
			for _, n := range f.Names() {
				if len(n) == 1 {
					names = append(names, "-"+n)
				} else {
					names = append(names, "--"+n)
				}
			}
			fmt.Fprintf(&b, "**%s**\n", strings.Join(names, ", "))
			if df, ok := f.(cli.DocGenerationFlag); ok {
				fmt.Fprintf(&b, ": %s\n", df.GetUsage())
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("# SEE ALSO\n\nmcsim(1)\n")
	return b.String()
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, new []byte, onlyIfChanged bool) error {
	if !onlyIfChanged {
		return os.WriteFile(path, new, 0o644)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.WriteFile(path, new, 0o644)
		}
		return err
	}
	if bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(new)) {
		return nil
	}
	return os.WriteFile(path, new, 0o644)
}

func buildTLDR(name string, cmd *cli.Command) string {
	var b strings.Builder
	b.WriteString("# " + name + "\n\n")
	b.WriteString("> " + cmd.Usage + ".\n")
	b.WriteString("> More information: https://github.com/staranto/mcsim.\n\n")

	usage := cmd.UsageText
	if usage == "" {
		usage = strings.ReplaceAll(name, "-", " ") + " --help"
	}
	b.WriteString("- " + cmd.Usage + ":\n\n")
	b.WriteString("`" + sanitizeCommand(usage) + "`\n")
	return b.String()
}

// sanitizeCommand rewrites <placeholders> in tldr's {{placeholder}} style and
// compresses whitespace.
func sanitizeCommand(s string) string {
	s = strings.NewReplacer("<", "{{", ">", "}}").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
