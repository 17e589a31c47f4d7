// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package version holds the mcsim build version. It is overridden at link
// time with -ldflags "-X github.com/staranto/mcsim/internal/version.Version=...".
package version

var Version = "0.1.0-dev"
