//go:build js && wasm
// +build js,wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/recera/imagefocus/pkg/debug"
	"github.com/recera/imagefocus/pkg/dom"
	"github.com/recera/imagefocus/pkg/dom/jsdom"
	"github.com/recera/imagefocus/pkg/imagefocus"
	"github.com/recera/imagefocus/pkg/notify"
)

var (
	focus *imagefocus.ImageFocus
	doc   *jsdom.Document
	bus   *notify.Center
)

func main() {
	debug.Log("🔍 image focus starting...")

	var (
		win *jsdom.Window
		err error
	)
	doc, win, err = jsdom.New()
	if err != nil {
		debug.Error(err.Error())
		return
	}

	bus = notify.NewCenter()
	focus, err = imagefocus.New(imagefocus.Env{
		Document: doc,
		Window:   win,
		Bus:      bus,
		Clock:    jsdom.Clock{},
	}, &imagefocus.Options{Logger: debug.Logger()})
	if err != nil {
		debug.Error(err.Error())
		return
	}

	win.AddEventListener("hashchange", func(*dom.Event) {
		bus.FireEvent(imagefocus.EventHashDidChange, nil)
	})

	whenReady(func() {
		if err := focus.Setup(); err != nil {
			debug.Error(fmt.Sprintf("image focus setup failed: %v", err))
			return
		}
		injectContent(doc.Body())
		exposeAPI()
		debug.Log("✅ image focus ready")
	})

	// Keep the WASM runtime alive
	select {}
}

func whenReady(fn func()) {
	document := js.Global().Get("document")
	if document.Get("readyState").String() != "loading" {
		fn()
		return
	}
	var cb js.Func
	cb = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		cb.Release()
		fn()
		return nil
	})
	document.Call("addEventListener", "DOMContentLoaded", cb, map[string]interface{}{"once": true})
}

func injectContent(container dom.Element) {
	bus.FireEvent(imagefocus.EventContentDidInject, notify.Info{
		"container": container,
		"document":  dom.Document(doc),
	})
}

// exposeAPI lets page scripts report injected content and drive the overlay
func exposeAPI() {
	js.Global().Set("imageFocus", js.ValueOf(map[string]interface{}{
		"contentDidInject": js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			if len(args) > 0 {
				if el := doc.Wrap(args[0]); el != nil {
					injectContent(el)
				}
			}
			return nil
		}),
		"focusNext": js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			focus.FocusNext(len(args) == 0 || args[0].Truthy())
			return nil
		}),
		"exit": js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			focus.Exit()
			return nil
		}),
		"currentIndex": js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			return focus.CurrentIndex()
		}),
	}))
}
