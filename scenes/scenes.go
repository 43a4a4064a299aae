// Package scenes embeds the bundled scene documents.
package scenes

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

// FS holds the bundled <name>.json documents at its root.
//
//go:embed *.json
var FS embed.FS

// Names lists the bundled scenes, sorted.
func Names() []string {
	entries, _ := fs.ReadDir(FS, ".")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".json"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
