package integrators

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/trusslab/internal/physics"
)

var registry = map[string]func() physics.Integrator{
	"euler":    func() physics.Integrator { return NewEuler() },
	"symplectic": func() physics.Integrator { return NewSemiImplicitEuler() },
	"rk4":      func() physics.Integrator { return NewRK4() },
	"rk45":     func() physics.Integrator { return NewRK45() },
	"verlet":   func() physics.Integrator { return NewVerlet() },
}

// ByName returns a fresh integrator. Names are case-insensitive.
func ByName(name string) (physics.Integrator, error) {
	factory, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return factory(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
