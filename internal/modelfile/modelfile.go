// Package modelfile locates local generative-model files and reads the
// metadata embedded in safetensors containers.
package modelfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Kind distinguishes base models from adapter models.
type Kind string

const (
	Checkpoint Kind = "checkpoint"
	Lora       Kind = "lora"
)

// modelExtensions lists the file extensions treated as model files.
var modelExtensions = []string{".safetensors", ".ckpt", ".pt"}

func isModelFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range modelExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// Resolver maps (kind, file name) onto a path within the configured
// model directories.
type Resolver struct {
	dirs map[Kind][]string
}

// NewResolver creates a resolver over the configured directory lists.
func NewResolver(checkpointDirs, loraDirs []string) *Resolver {
	return &Resolver{
		dirs: map[Kind][]string{
			Checkpoint: checkpointDirs,
			Lora:       loraDirs,
		},
	}
}

// Resolve finds the model file by name across the directories for kind.
// An absolute or relative path that exists is accepted as-is. A name
// without extension matches any known model extension.
func (r *Resolver) Resolve(kind Kind, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("no model file selected")
	}

	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return name, nil
	}

	for _, dir := range r.dirs[kind] {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		if filepath.Ext(name) == "" {
			for _, ext := range modelExtensions {
				withExt := candidate + ext
				if info, err := os.Stat(withExt); err == nil && !info.IsDir() {
					return withExt, nil
				}
			}
		}
	}

	return "", fmt.Errorf("%s file not found: %s", kind, name)
}

// List enumerates model file names for kind, sorted case-insensitively.
func (r *Resolver) List(kind Kind) []string {
	seen := make(map[string]bool)
	var names []string
	for _, dir := range r.dirs[kind] {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !isModelFile(entry.Name()) {
				continue
			}
			if !seen[entry.Name()] {
				seen[entry.Name()] = true
				names = append(names, entry.Name())
			}
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}
