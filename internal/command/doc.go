// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package command defines the mcsim command set. It wires flags, validators,
// actions, and shell completion for the subcommands that inspect experiment
// and simulation caches.
package command
