//go:build !js || !wasm

package main

import (
	"errors"

	"github.com/tiltwater/tiltwater/adapter"
)

func browserSource() (adapter.Source, error) {
	return nil, errors.New("browser sensors need a js/wasm build")
}
