package structure

import (
	"fmt"
	"strings"
)

// Material describes the mechanical properties of a beam.
// Densities are kg/m³, moduli and strengths are Pa.
type Material struct {
	Name                string
	Density             float64
	YoungsModulus       float64
	TensileStrength     float64
	CompressiveStrength float64
	Color               string
}

var catalog = []Material{
	{Name: "Steel", Density: 7850, YoungsModulus: 200e9, TensileStrength: 400e6, CompressiveStrength: 250e6, Color: "#8899aa"},
	{Name: "Aluminum", Density: 2700, YoungsModulus: 69e9, TensileStrength: 310e6, CompressiveStrength: 280e6, Color: "#c0c8d0"},
	{Name: "Concrete", Density: 2400, YoungsModulus: 30e9, TensileStrength: 3e6, CompressiveStrength: 30e6, Color: "#a09888"},
	{Name: "Wood", Density: 600, YoungsModulus: 11e9, TensileStrength: 40e6, CompressiveStrength: 30e6, Color: "#b07840"},
	{Name: "Titanium", Density: 4500, YoungsModulus: 116e9, TensileStrength: 900e6, CompressiveStrength: 970e6, Color: "#d0d8ff"},
}

// DefaultMaterial is the catalog entry new beams start with.
func DefaultMaterial() Material { return catalog[0] }

// Materials returns the catalog in its fixed order.
func Materials() []Material {
	out := make([]Material, len(catalog))
	copy(out, catalog)
	return out
}

// LookupMaterial finds a catalog entry by name, ignoring case.
func LookupMaterial(name string) (Material, error) {
	for _, m := range catalog {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return Material{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
}

// NextMaterial returns the catalog entry after name, wrapping around.
func NextMaterial(name string) Material {
	for i, m := range catalog {
		if strings.EqualFold(m.Name, name) {
			return catalog[(i+1)%len(catalog)]
		}
	}
	return catalog[0]
}
