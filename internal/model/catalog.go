// Package model reads the animation clips of the avatar glTF files served to
// clients, and keeps them fresh when the files change on disk.
package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

// ErrClipNotFound reports a configured clip the model does not contain.
var ErrClipNotFound = errors.New("animation clip not found")

// Catalog lists the clip names of one model file.
type Catalog struct {
	File  string   `json:"file"`
	Clips []string `json:"clips"`
}

// Load opens a .glb or .gltf file and collects its animation names.
func Load(path string) (Catalog, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("open model %s: %w", path, err)
	}
	clips := make([]string, 0, len(doc.Animations))
	for i, anim := range doc.Animations {
		name := strings.TrimSpace(anim.Name)
		if name == "" {
			name = fmt.Sprintf("animation_%d", i)
		}
		clips = append(clips, name)
	}
	return Catalog{File: filepath.Base(path), Clips: clips}, nil
}

// Has reports whether the model contains a clip with exactly this name.
func (c Catalog) Has(name string) bool {
	for _, clip := range c.Clips {
		if clip == name {
			return true
		}
	}
	return false
}

// Missing returns the states whose configured clip is absent, sorted.
func (c Catalog) Missing(clips map[string]string) []string {
	missing := []string{}
	for state, clip := range clips {
		if !c.Has(clip) {
			missing = append(missing, state)
		}
	}
	sort.Strings(missing)
	return missing
}

// Registry caches catalogs of the models directory by file name.
type Registry struct {
	logger *zap.Logger
	dir    string

	mu       sync.RWMutex
	catalogs map[string]Catalog
}

// NewRegistry creates a registry rooted at dir.
func NewRegistry(logger *zap.Logger, dir string) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{logger: logger, dir: dir, catalogs: make(map[string]Catalog)}
}

// Get returns the catalog for file, loading it on first use.
func (r *Registry) Get(file string) (Catalog, error) {
	name := filepath.Base(file)
	r.mu.RLock()
	catalog, ok := r.catalogs[name]
	r.mu.RUnlock()
	if ok {
		return catalog, nil
	}

	catalog, err := Load(filepath.Join(r.dir, name))
	if err != nil {
		return Catalog{}, err
	}
	r.mu.Lock()
	r.catalogs[name] = catalog
	r.mu.Unlock()
	r.logger.Info("model catalog loaded",
		zap.String("file", name),
		zap.Strings("clips", catalog.Clips),
	)
	return catalog, nil
}

// All loads every model file in the directory. Unreadable files are skipped.
func (r *Registry) All() []Catalog {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return []Catalog{}
	}
	out := []Catalog{}
	for _, entry := range entries {
		if entry.IsDir() || !isModelFile(entry.Name()) {
			continue
		}
		catalog, err := r.Get(entry.Name())
		if err != nil {
			r.logger.Warn("model catalog skipped", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		out = append(out, catalog)
	}
	return out
}

// Invalidate drops a cached catalog so the next Get reloads it.
func (r *Registry) Invalidate(file string) {
	r.mu.Lock()
	delete(r.catalogs, filepath.Base(file))
	r.mu.Unlock()
}

func isModelFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".glb", ".gltf":
		return true
	}
	return false
}
