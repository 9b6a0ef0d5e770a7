// Package config loads a Cascade deployment's YAML configuration: the
// open-loop batch target, the __std-annotation-to-backend mapping, and
// worker-runtime addresses for remote/runtime-located modules. Grounded on
// the teacher's core/program.go (gopkg.in/yaml.v3 struct tags over a
// nested root/array/entry document) and config/config.go's builder-style
// assembly of a whole device from one parsed document; here the "device"
// being assembled is a compiler.Coordinator plus a sched.Scheduler instead
// of a CGRA mesh.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Backend names a compile backend a __std annotation maps to. "proxy"
// routes through a worker address; any other value names a backend
// registered locally by the embedder.
type Backend struct {
	Std     string `yaml:"std"`
	Kind    string `yaml:"kind"`    // "local" or "proxy"
	Address string `yaml:"address"` // worker dial address, if kind == "proxy"
}

// Scheduler configures the reference-schedule fast path.
type Scheduler struct {
	FreqHz         float64 `yaml:"freq_hz"`
	OpenLoopTarget uint64  `yaml:"open_loop_target"`
}

// Save configures the optional saved-state catalog.
type Save struct {
	Dir     string `yaml:"dir"`
	Catalog string `yaml:"catalog"`
}

// Root is the top-level document shape, mirroring YAMLRoot's
// one-array-config-per-file convention.
type Root struct {
	Scheduler Scheduler `yaml:"scheduler"`
	Backends  []Backend `yaml:"backends"`
	Save      Save      `yaml:"save"`
}

// Load reads and parses path.
func Load(path string) (*Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var root Root
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &root, nil
}

// BackendFor looks up the backend configured for a __std annotation.
func (r *Root) BackendFor(std string) (Backend, bool) {
	for _, b := range r.Backends {
		if b.Std == std {
			return b, true
		}
	}
	return Backend{}, false
}
