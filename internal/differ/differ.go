// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package differ compares the results held by two cached experiment runs.
package differ

import (
	"encoding/json"
	"fmt"

	"github.com/apex/log"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/staranto/mcsim/pkg/experiment"
)

// Report is the outcome of a comparison. Text is empty when nothing changed.
type Report struct {
	Modified bool
	Text     string
}

// Results diffs two result sets. Both are fully decoded first.
func Results(left, right experiment.Results, color bool) (Report, error) {
	l, err := marshal(left)
	if err != nil {
		return Report{}, fmt.Errorf("left: %w", err)
	}
	r, err := marshal(right)
	if err != nil {
		return Report{}, fmt.Errorf("right: %w", err)
	}

	d, err := gojsondiff.New().Compare(l, r)
	if err != nil {
		return Report{}, fmt.Errorf("failed to compare results: %w", err)
	}
	if !d.Modified() {
		return Report{}, nil
	}

	var lm map[string]interface{}
	if err := json.Unmarshal(l, &lm); err != nil {
		return Report{}, fmt.Errorf("failed to decode left: %w", err)
	}

	f := formatter.NewAsciiFormatter(lm, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       color,
	})
	text, err := f.Format(d)
	if err != nil {
		return Report{}, fmt.Errorf("failed to format diff: %w", err)
	}
	return Report{Modified: true, Text: text}, nil
}

// Runs opens two run directories and diffs their results.
func Runs(left, right experiment.Run, color bool) (Report, error) {
	log.Debugf("diffing %s against %s", left.Path, right.Path)

	lr, err := experiment.OpenRun(left)
	if err != nil {
		return Report{}, err
	}
	defer lr.Close()

	rr, err := experiment.OpenRun(right)
	if err != nil {
		return Report{}, err
	}
	defer rr.Close()

	return Results(lr, rr, color)
}

func marshal(rs experiment.Results) ([]byte, error) {
	r, err := experiment.Collect(rs)
	if err != nil {
		return nil, err
	}
	return json.Marshal(r)
}
