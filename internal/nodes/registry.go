package nodes

import (
	"fmt"
	"sort"
	"sync"
)

// InputKind is the widget type a node input declares to the host.
type InputKind string

const (
	InputFile InputKind = "file"
	InputInt  InputKind = "int"
	InputEnum InputKind = "enum"
	InputBool InputKind = "bool"
)

// Input declares one typed node parameter.
type Input struct {
	Name    string    `json:"name"`
	Kind    InputKind `json:"kind"`
	Default any       `json:"default,omitempty"`
	Min     int       `json:"min,omitempty"`
	Max     int       `json:"max,omitempty"`
	Options []string  `json:"options,omitempty"`
}

// RunFunc executes a node invocation against a runtime.
type RunFunc func(rt *Runtime, p Params) (*Result, error)

// Spec is the host-facing contract of one node: its typed inputs, its
// named string outputs, and its entry point.
type Spec struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Category    string   `json:"category"`
	Inputs      []Input  `json:"inputs"`
	Outputs     []string `json:"outputs"`
	Run         RunFunc  `json:"-"`
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Spec)
)

// Register adds a node spec to the discovery table. Names are unique.
func Register(spec Spec) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if spec.Name == "" {
		return fmt.Errorf("node spec has no name")
	}
	if _, exists := registry[spec.Name]; exists {
		return fmt.Errorf("node already registered: %s", spec.Name)
	}
	registry[spec.Name] = spec
	return nil
}

// Lookup returns a copy of the named node spec.
func Lookup(name string) (Spec, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	spec, ok := registry[name]
	return spec, ok
}

// List returns all registered node specs sorted by name.
func List() []Spec {
	registryMu.RLock()
	defer registryMu.RUnlock()
	specs := make([]Spec, 0, len(registry))
	for _, spec := range registry {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool {
		return specs[i].Name < specs[j].Name
	})
	return specs
}
