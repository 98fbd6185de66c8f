// Package layout computes bounding boxes and vertical stacking offsets for
// node footprints in a compositing graph.
//
// Coordinates follow the node editor convention: the origin is a node's
// top-left corner, y grows upward, and a node's bottom edge is at
// y - height. The package is pure geometry and never mutates a graph.
package layout

// Padding is added to every computed node height.
const Padding = 20.0

// Footprint is the on-canvas extent of a node.
type Footprint struct {
	X, Y   float64 // top-left corner
	Width  float64 // logical width
	Height float64 // on-screen height in device pixels (scaled)
}

// Bounds is the axis-aligned box enclosing a set of footprints.
type Bounds struct {
	Left, Right, Top, Bottom float64
}

// Height returns Top - Bottom.
func (b Bounds) Height() float64 { return b.Top - b.Bottom }

// Engine converts on-screen footprints back to logical units.
// The zero value is not usable; use NewEngine.
type Engine struct {
	Scale   float64
	Padding float64
}

// NewEngine creates an engine for the host's device/UI scale factor. When the
// host cannot report one (ok is false) or reports a non-positive value, the
// scale defaults to 1.0.
func NewEngine(scale float64, ok bool) Engine {
	if !ok || scale <= 0 {
		scale = 1.0
	}
	return Engine{Scale: scale, Padding: Padding}
}

// Height returns the logical height of f including padding.
func (e Engine) Height(f Footprint) float64 {
	scale := e.Scale
	if scale <= 0 {
		scale = 1.0
	}
	return f.Height/scale + e.Padding
}

// Bounds returns the box enclosing fs in a single pass. An empty input
// yields the zero box.
func (e Engine) Bounds(fs []Footprint) Bounds {
	if len(fs) == 0 {
		return Bounds{}
	}
	first := fs[0]
	b := Bounds{
		Left:   first.X,
		Right:  first.X + first.Width,
		Top:    first.Y,
		Bottom: first.Y - e.Height(first),
	}
	for _, f := range fs[1:] {
		b.Left = min(b.Left, f.X)
		b.Right = max(b.Right, f.X+f.Width)
		b.Top = max(b.Top, f.Y)
		b.Bottom = min(b.Bottom, f.Y-e.Height(f))
	}
	return b
}

// StackBelow returns the y coordinate for the next footprint placed under f
// with gap units between them.
func (e Engine) StackBelow(f Footprint, gap float64) float64 {
	return f.Y - (e.Height(f) + gap)
}
