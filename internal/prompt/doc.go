// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package prompt implements the interactive questions mcsim asks on the
// terminal: a yes/no question with a default, a timed single-key variant and
// a selection menu.
package prompt
