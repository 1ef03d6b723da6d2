package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera orbits the world origin and projects onto the braille canvas.
type Camera struct {
	Distance   float64
	Near       float64
	Yaw, Pitch float64
	Zoom       float64
	// Span is the world extent mapped onto the smaller screen dimension.
	Span float64
}

func NewCamera(span float64) *Camera {
	return &Camera{Distance: 3 * span, Near: 0.1, Yaw: 0.6, Pitch: -0.35, Zoom: 1.0, Span: span}
}

func (c *Camera) Orbit(yaw, pitch float64) {
	c.Yaw += yaw
	c.Pitch = math.Max(-math.Pi/2, math.Min(math.Pi/2, c.Pitch+pitch))
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Rotate turns a world point into camera space: yaw about Y, then pitch
// about X.
func (c *Camera) Rotate(p r3.Vec) r3.Vec {
	p = r3.NewRotation(c.Yaw, r3.Vec{Y: 1}).Rotate(p)
	return r3.NewRotation(c.Pitch, r3.Vec{X: 1}).Rotate(p)
}

// Project converts world coordinates to canvas sub-pixels.
// Returns x, y, depth, and visibility.
func (c *Camera) Project(p r3.Vec, sw, sh int) (int, int, float64, bool) {
	rot := r3.Scale(c.Zoom, c.Rotate(p))
	dist := c.Distance
	if rot.Z >= dist-c.Near {
		return 0, 0, 0, false
	}
	scale := dist / (dist - rot.Z)
	span := c.Span
	if span <= 0 {
		span = 1
	}
	pScale := math.Min(float64(sw), float64(sh)) / span
	sx := int(math.Round(rot.X*scale*pScale)) + sw/2
	sy := int(math.Round(-rot.Y*scale*pScale)) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}
