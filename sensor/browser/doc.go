// Package browser reads deviceorientation and devicemotion events when the
// program runs as WebAssembly in a browser.
package browser
