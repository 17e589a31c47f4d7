// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type tickMsg time.Time

// timedModel asks for a single y/n key press and gives up after remaining
// seconds.
type timedModel struct {
	question  string
	def       bool
	remaining int
	answer    bool
	timedOut  bool
	aborted   bool
	done      bool
}

func newTimedModel(question string, def bool, seconds int) timedModel {
	return timedModel{question: question, def: def, remaining: seconds, answer: def}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m timedModel) Init() tea.Cmd {
	if m.remaining <= 0 {
		return func() tea.Msg { return tickMsg(time.Now()) }
	}
	return tick()
}

func (m timedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch strings.ToLower(msg.String()) {
		case "y":
			m.answer, m.done = true, true
			return m, tea.Quit
		case "n":
			m.answer, m.done = false, true
			return m, tea.Quit
		case "ctrl+c", "esc":
			m.aborted, m.done = true, true
			return m, tea.Quit
		}
	case tickMsg:
		m.remaining--
		if m.remaining <= 0 {
			m.answer, m.timedOut, m.done = m.def, true, true
			return m, tea.Quit
		}
		return m, tick()
	}
	return m, nil
}

func (m timedModel) View() string {
	if m.done {
		return ""
	}
	def := "n"
	if m.def {
		def = "y"
	}
	return fmt.Sprintf("%s\nPress y or n, default is %s. Continuing in %d seconds...\n", m.question, def, m.remaining)
}

// Timed asks question and waits up to seconds for a y or n key press. It
// returns def when the time runs out or stdin is not a terminal, and
// ErrAborted when the user quits without answering.
func Timed(question string, def bool, seconds int, opts ...tea.ProgramOption) (bool, error) {
	if len(opts) == 0 && !IsTerminal() {
		return def, nil
	}

	final, err := tea.NewProgram(newTimedModel(question, def, seconds), opts...).Run()
	if err != nil {
		return def, fmt.Errorf("timed prompt failed: %w", err)
	}
	m, ok := final.(timedModel)
	if !ok || m.aborted {
		return def, ErrAborted
	}
	return m.answer, nil
}
