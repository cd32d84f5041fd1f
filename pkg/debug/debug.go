//go:build js && wasm
// +build js,wasm

// Package debug routes logging to the browser console
package debug

import (
	"log/slog"
	"strings"
	"syscall/js"
)

// StorageKey turns on debug logging when set in localStorage
const StorageKey = "image-focus-debug"

// ConsoleWriter writes each log line to console.log
type ConsoleWriter struct{}

func (ConsoleWriter) Write(p []byte) (int, error) {
	Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// Enabled reports whether the page asked for debug logging
func Enabled() bool {
	storage := js.Global().Get("localStorage")
	if storage.Type() != js.TypeObject {
		return false
	}
	return storage.Call("getItem", StorageKey).Type() == js.TypeString
}

// Logger returns a console logger at Debug level when Enabled, else Info
func Logger() *slog.Logger {
	level := slog.LevelInfo
	if Enabled() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(ConsoleWriter{}, &slog.HandlerOptions{Level: level}))
}

// Log logs a message to the console
func Log(args ...interface{}) {
	js.Global().Get("console").Call("log", args...)
}

// Error logs an error to the console
func Error(args ...interface{}) {
	js.Global().Get("console").Call("error", args...)
}
