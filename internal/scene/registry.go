// Package scene holds the built-in structures that the sandbox and the
// headless commands can start from.
package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/trusslab/internal/structure"
)

var ErrUnknownScene = errors.New("scene: unknown scene")

// Builder adds a structure to m. It does not clear m first.
type Builder func(m *structure.Manager) error

type entry struct {
	description string
	build       Builder
}

type Registry struct {
	scenes map[string]entry
}

func NewRegistry() *Registry {
	r := &Registry{scenes: make(map[string]entry)}

	r.Register("pair", "two free nodes pushed towards each other", buildPair)
	r.Register("triangle", "loaded apex on two supports", buildTriangle)
	r.Register("cantilever", "three-bay truss fixed at one end, tip load", buildCantilever)
	r.Register("bridge", "four-bay Pratt truss on end supports", buildBridge)
	r.Register("tower", "three-storey braced tower under side load", buildTower)

	return r
}

func (r *Registry) Register(name, description string, b Builder) {
	r.scenes[name] = entry{description: description, build: b}
}

func (r *Registry) Build(name string, m *structure.Manager) error {
	e, ok := r.scenes[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownScene, name)
	}
	if err := e.build(m); err != nil {
		return fmt.Errorf("scene %s: %w", name, err)
	}
	return nil
}

func (r *Registry) Describe(name string) string { return r.scenes[name].description }

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.scenes))
	for name := range r.scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
