// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cacheutil holds the directory conventions shared by the experiment
// cache and the checkpoint store: root resolution, timestamp markers, run
// listing and explicit purging.
package cacheutil
