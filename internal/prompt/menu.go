// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Choose: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00c8f0"))
)

type menuModel struct {
	title   string
	items   []string
	cursor  int
	chosen  int
	aborted bool
	help    help.Model
}

func newMenuModel(title string, items []string) menuModel {
	return menuModel{title: title, items: items, chosen: -1, help: help.New()}
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(km, keys.Choose):
		m.chosen = m.cursor
		return m, tea.Quit
	case key.Matches(km, keys.Quit):
		m.aborted = true
		return m, tea.Quit
	}
	return m, nil
}

func (m menuModel) View() string {
	if m.chosen >= 0 || m.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	for i, item := range m.items {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + item))
		} else {
			b.WriteString("  " + item)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{keys.Up, keys.Down, keys.Choose, keys.Quit}))
	b.WriteString("\n")
	return b.String()
}

// Select shows items in a menu and returns the index chosen by the user.
func Select(title string, items []string, opts ...tea.ProgramOption) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("nothing to select")
	}

	final, err := tea.NewProgram(newMenuModel(title, items), opts...).Run()
	if err != nil {
		return -1, fmt.Errorf("selection menu failed: %w", err)
	}
	m, ok := final.(menuModel)
	if !ok || m.aborted || m.chosen < 0 {
		return -1, ErrAborted
	}
	return m.chosen, nil
}
