// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// mcsim is the command line tool for inspecting experiment caches and
// checkpointed simulations. It wires the CLI, delegates to internal packages,
// and serves as the entry point.
package main
