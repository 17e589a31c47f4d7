// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output provides filtering, sorting and emission of the row sets
// listed by the mcsim commands.
package output
