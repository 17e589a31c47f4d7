// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package checkpoint wraps a long-running iterative computation so that every
// step it produces is saved as it is produced. Iterating a sequence that has
// already been materialized replays the saved steps from disk without running
// the computation again.
//
// The wrapped computation is never serialized. Instead a sequence is built
// from a named constructor in a Registry plus JSON parameters, and that pair
// is written to the backing directory so Load can rebuild it later.
//
// A backing directory is laid out as
//
//	Sim2025-06-01_14-30/
//	    Sim2025-06-01_14-30.json   descriptor
//	    0.yaml, 1.yaml, ...        one file per step
//	    COMPLETE                   written after the last step
//
// A directory without COMPLETE belongs to an interrupted run. It is not
// replayed; iterating it runs the computation again from step zero.
package checkpoint
