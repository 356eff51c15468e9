// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/panics/panics.go
// Summary: Panic capture that restores the terminal before reporting.
// Notes: Cleanups run before the stack trace is printed so the report is
// readable once tcell has released the screen.

package panics

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sync"
	"time"
)

// Logger captures panic stack traces and optionally persists them to disk.
type Logger struct {
	path string

	mu       sync.Mutex
	cleanups []func()

	stderr io.Writer
	exit   func(int)
}

// NewLogger constructs a panic logger that appends to path when non-empty.
func NewLogger(path string) *Logger {
	return &Logger{path: path, stderr: os.Stderr, exit: os.Exit}
}

// OnPanic registers fn to run before a panic is reported. Cleanups run in
// reverse registration order.
func (l *Logger) OnPanic(fn func()) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.cleanups = append(l.cleanups, fn)
	l.mu.Unlock()
}

// Recover should be deferred in goroutines to capture panics.
func (l *Logger) Recover(context string) {
	if l == nil {
		return
	}
	if r := recover(); r != nil {
		l.handle(context, r)
	}
}

// Go starts fn in a goroutine with panic recovery bound to context.
func (l *Logger) Go(context string, fn func()) {
	go func() {
		defer l.Recover(context)
		fn()
	}()
}

func (l *Logger) handle(context string, r interface{}) {
	buf := make([]byte, 1<<16)
	stack := buf[:runtime.Stack(buf, true)]

	l.mu.Lock()
	cleanups := l.cleanups
	l.cleanups = nil
	l.mu.Unlock()
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	msg := fmt.Sprintf("panic in %s: %v\n%s", context, r, stack)
	log.Print(msg)
	fmt.Fprintln(l.stderr, msg)
	l.persist(context, r, stack)
	l.exit(2)
}

func (l *Logger) persist(context string, r interface{}, stack []byte) {
	if l.path == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("Panics: unable to write panic log: %v", err)
		return
	}
	defer f.Close()
	ts := time.Now().Format(time.RFC3339Nano)
	fmt.Fprintf(f, "[%s] panic in %s: %v\n%s\n", ts, context, r, stack)
}
