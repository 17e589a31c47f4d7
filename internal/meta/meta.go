// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package meta holds the state shared by every mcsim command.
package meta

import (
	"context"

	"github.com/staranto/mcsim/internal/config"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	// CacheDir and SimDir are the roots resolved at startup. Flags may
	// override them per command.
	CacheDir string
	SimDir   string
}
