// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package experiment runs named computations once and caches their results
// on disk so they can be plotted again without recomputation.
//
// A result is a two-level mapping: filter name, then metric name, then a
// numeric array. Each run is stored under the cache root in a directory named
// after the experiment plus a minute-resolution timestamp, with one numpy
// .npz container per filter holding that filter's metric arrays. Cached runs
// are opened lazily: arrays are decoded only when a plot asks for them.
package experiment
