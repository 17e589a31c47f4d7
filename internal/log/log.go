// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
)

// InitLogger sets up Apex with a custom handler and a log level from the
// MCSIM_LOG env variable. INFO is the default so cache hits, misses and step
// saves are reported.
func InitLogger() {
	level := strings.ToUpper(os.Getenv("MCSIM_LOG"))
	if level == "" {
		level = "INFO"
	}
	log.SetHandler(NewHandler(os.Stderr))
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// CustomHandler formats log messages and writes them to W.
type CustomHandler struct {
	W io.Writer
}

// NewHandler returns a CustomHandler writing to w, or stdout when w is nil.
func NewHandler(w io.Writer) *CustomHandler {
	if w == nil {
		w = os.Stdout
	}
	return &CustomHandler{W: w}
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	timestamp := e.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	level := strings.ToUpper(e.Level.String())

	var b strings.Builder
	b.WriteString(e.Message)
	for _, name := range e.Fields.Names() {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
	}

	_, err := fmt.Fprintf(h.W, "%s %.1s %s\n", timestamp.Format("2006-01-02 15:04:05"), level, b.String())
	return err
}
