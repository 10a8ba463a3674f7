package webassets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
)

//go:embed classroom
var embeddedDist embed.FS

// Subdir returns an embedded asset directory, or the whole tree for ".".
func Subdir(dir string) (fs.FS, error) {
	cleanDir := path.Clean(dir)
	if cleanDir == "." || cleanDir == "" {
		return embeddedDist, nil
	}
	if _, err := fs.Stat(embeddedDist, cleanDir); err != nil {
		return nil, fmt.Errorf("open embedded dist subdir %q: %w", cleanDir, err)
	}
	sub, err := fs.Sub(embeddedDist, cleanDir)
	if err != nil {
		return nil, fmt.Errorf("open embedded dist subdir %q: %w", cleanDir, err)
	}
	return sub, nil
}
