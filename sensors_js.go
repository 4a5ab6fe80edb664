//go:build js && wasm

package main

import (
	"github.com/tiltwater/tiltwater/adapter"
	"github.com/tiltwater/tiltwater/sensor/browser"
)

func browserSource() (adapter.Source, error) {
	return browser.New(), nil
}
