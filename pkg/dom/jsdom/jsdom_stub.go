//go:build !js || !wasm
// +build !js !wasm

package jsdom

import (
	"fmt"
	"time"

	"github.com/recera/imagefocus/pkg/dom"
	"github.com/recera/imagefocus/pkg/scheduler"
)

// Document wraps the page's document (stub for non-WASM builds)
type Document struct {
	dom.Document
}

// Window wraps the browser window (stub for non-WASM builds)
type Window struct {
	dom.Window
}

// New returns the document and window of the running page (stub)
func New() (*Document, *Window, error) {
	return nil, nil, fmt.Errorf("jsdom is only available in WASM builds")
}

// Clock falls back to the process clock outside the browser
type Clock struct{}

func (Clock) Now() time.Time {
	return time.Now()
}

func (Clock) AfterFunc(d time.Duration, fn func()) scheduler.Timer {
	return time.AfterFunc(d, fn)
}
