// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/mcsim/internal/output"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	if !slices.Contains(output.Formats, value.(string)) {
		return fmt.Errorf("must be one of %v", output.Formats)
	}
	return nil
}

// ArgsValidator checks the number of positional arguments is within
// [lo, hi]. A negative hi means no upper bound.
func ArgsValidator(cmd *cli.Command, lo, hi int) error {
	n := cmd.Args().Len()
	switch {
	case n < lo:
		return fmt.Errorf("%s: expected at least %d argument(s), got %d", cmd.Name, lo, n)
	case hi >= 0 && n > hi:
		return fmt.Errorf("%s: expected at most %d argument(s), got %d", cmd.Name, hi, n)
	}
	return nil
}
