//go:build js

package rubeview

import (
	"strings"
	"syscall/js"
)

// DefaultBaseURL returns the directory of the page hosting the wasm build,
// so scenes resolve relative to it.
func DefaultBaseURL() string {
	href := js.Global().Get("location").Get("href").String()
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	if i := strings.LastIndex(href, "/"); i >= 0 {
		href = href[:i]
	}
	return href
}
