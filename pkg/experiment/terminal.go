// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"context"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"

	"github.com/staranto/mcsim/internal/config"
	"github.com/staranto/mcsim/internal/prompt"
)

// TerminalConfirm asks on stdin/stdout, defaulting to no. When prompt.timeout
// is set in the config file the question gives up after that many seconds.
func TerminalConfirm() Confirmer {
	return func(_ context.Context, question string) (bool, error) {
		timeout, _ := config.GetInt("prompt.timeout", 0)
		if timeout > 0 {
			return prompt.Timed(question, false, timeout)
		}
		return prompt.YesNo(os.Stdin, os.Stdout, question, "no")
	}
}

// TerminalSelect shows a menu of runs with their age. Without a terminal it
// picks the most recent run.
func TerminalSelect() Selector {
	return func(_ context.Context, runs []Run) (Run, error) {
		if !prompt.IsTerminal() {
			log.Warn("stdin is not a terminal, using the latest run")
			return runs[0], nil
		}

		items := make([]string, len(runs))
		for i, r := range runs {
			items[i] = fmt.Sprintf("%s  (%s)", r.Path, humanize.Time(r.Created))
		}
		i, err := prompt.Select("Select a run to plot", items)
		if err != nil {
			return Run{}, err
		}
		return runs[i], nil
	}
}
