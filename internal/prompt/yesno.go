// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	// ErrInvalidDefault is returned when YesNo is called with a default other
	// than "yes", "no" or "". It is a usage error, not a user error.
	ErrInvalidDefault = errors.New("invalid default answer")

	// ErrAborted is returned when the user leaves a prompt without answering.
	ErrAborted = errors.New("prompt aborted")
)

var validAnswers = map[string]bool{
	"yes": true,
	"y":   true,
	"ye":  true,
	"no":  false,
	"n":   false,
}

// YesNo writes question to out and reads answers from in until it gets one
// of yes/y/ye/no/n. def is the presumed answer on an empty line: "yes", "no",
// or "" to require an explicit answer.
func YesNo(in io.Reader, out io.Writer, question, def string) (bool, error) {
	var suffix string
	switch def {
	case "":
		suffix = " [y/n] "
	case "yes":
		suffix = " [Y/n] "
	case "no":
		suffix = " [y/N] "
	default:
		return false, fmt.Errorf("%w: '%s'", ErrInvalidDefault, def)
	}

	r := bufio.NewReader(in)
	for {
		if _, err := fmt.Fprint(out, question+suffix); err != nil {
			return false, err
		}

		line, err := r.ReadString('\n')
		choice := strings.ToLower(strings.TrimSpace(line))

		if choice == "" && def != "" {
			return validAnswers[def], nil
		}
		if v, ok := validAnswers[choice]; ok {
			return v, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, ErrAborted
			}
			return false, err
		}

		if _, err := fmt.Fprint(out, "Please respond with 'yes' or 'no' (or 'y' or 'n').\n"); err != nil {
			return false, err
		}
	}
}

// IsTerminal reports whether stdin is attached to a terminal. Interactive
// prompts fall back to their defaults when it is not.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
