// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/mcsim/internal/config"
	"github.com/staranto/mcsim/internal/output"
)

func init() {
	cfg, _ = config.Load("")
}

var cfg config.Type

func newTldrFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
}

// NewGlobalFlags returns the output flags shared by the listing commands.
// params[0] is the config namespace, e.g. "runs".
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"color", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("color", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"output", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("output", altsrc.StringSourcer(cfg.Source)),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of columns to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"sort", altsrc.StringSourcer(cfg.Source)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"titles", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("titles", altsrc.StringSourcer(cfg.Source)),
			),
			Value: true,
		},
	}

	return
}

// NewCacheDirFlag is the experiment cache root. The default has already been
// resolved from MCSIM_CACHE_DIR and cache.dir.
func NewCacheDirFlag(def string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "cache-dir",
		Usage: "experiment cache root",
		Value: def,
	}
}

// NewSimDirFlag is the checkpoint root. The default has already been resolved
// from MCSIM_SIM_DIR and sim.dir.
func NewSimDirFlag(def string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "sim-dir",
		Usage: "checkpointed simulation root",
		Value: def,
	}
}

// NewOlderThanFlag is the purge age in hours, defaulting to cache.clean.
func NewOlderThanFlag(path string) *cli.IntFlag {
	return &cli.IntFlag{
		Name:  "older-than",
		Usage: "remove runs created more than this many hours ago",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("MCSIM_CACHE_CLEAN"),
			yaml.YAML("cache.clean", altsrc.StringSourcer(path)),
		),
	}
}

// NewArchiveFlags are the S3 destination flags of runs push. Values come
// from runs.push.<flag> or <flag> in the config file.
func NewArchiveFlags(path string) []cli.Flag {
	return []cli.Flag{
		NameSpacedValueChainFlagFromConfigFile("runs.push", path, &cli.StringFlag{
			Name:    "bucket",
			Aliases: []string{"b"},
			Usage:   "S3 bucket to push to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MCSIM_BUCKET")),
		}),
		NameSpacedValueChainFlagFromConfigFile("runs.push", path, &cli.StringFlag{
			Name:    "prefix",
			Usage:   "key prefix within the bucket",
			Sources: cli.NewValueSourceChain(),
		}),
		NameSpacedValueChainFlagFromConfigFile("runs.push", path, &cli.StringFlag{
			Name:    "region",
			Usage:   "AWS region. Defaults to the AWS environment",
			Sources: cli.NewValueSourceChain(),
		}),
		NameSpacedValueChainFlagFromConfigFile("runs.push", path, &cli.StringFlag{
			Name:    "profile",
			Usage:   "AWS shared config profile",
			Sources: cli.NewValueSourceChain(cli.EnvVar("AWS_PROFILE")),
		}),
	}
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// outputOptions collects the global output flags.
func outputOptions(cmd *cli.Command) output.Options {
	return output.Options{
		Format: cmd.String("output"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Titles: cmd.Bool("titles"),
		Color:  cmd.Bool("color"),
	}
}

// pathHas reports whether target is on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
