package structure

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	DefaultWorldSize = 10.0
	DefaultUnit      = "m"
	DefaultTimeStep  = 1.0
)

// World holds the settings shared by every component that needs to know
// about the simulated volume.
type World struct {
	Size     float64
	Unit     string
	TimeStep float64
}

func DefaultWorld() World {
	return World{Size: DefaultWorldSize, Unit: DefaultUnit, TimeStep: DefaultTimeStep}
}

// Clamp keeps p inside the cube [-Size/2, Size/2] on every axis.
// A non-positive Size disables clamping.
func (w World) Clamp(p r3.Vec) r3.Vec {
	if w.Size <= 0 {
		return p
	}
	h := w.Size / 2
	return r3.Vec{
		X: math.Max(-h, math.Min(h, p.X)),
		Y: math.Max(-h, math.Min(h, p.Y)),
		Z: math.Max(-h, math.Min(h, p.Z)),
	}
}

// Contains reports whether p lies inside the world cube.
func (w World) Contains(p r3.Vec) bool {
	return w.Clamp(p) == p
}

// Container is the renderer side of the scene lifecycle.
type Container interface {
	Add(e Element)
	Remove(e Element)
}

// Element is implemented by everything that lives in a scene.
type Element interface {
	Update(dt float64)
	Attach(c Container)
	Detach(c Container)
}

// unit returns p scaled to length 1, or the zero vector when p has no length.
func unit(p r3.Vec) r3.Vec {
	n := r3.Norm(p)
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, p)
}

func lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}
