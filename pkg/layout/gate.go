package layout

import (
	"strings"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/tech"
)

// Gate is a placed instance of a macro, or a degenerate single-node
// instance standing in for a top-level pin.  Taps and Obstructions hold
// the macro geometry already transformed into die coordinates; entries
// on layers at or above the route layer limit are filtered out before
// the transform.
type Gate struct {
	Name  string
	Macro *tech.Macro

	X, Y          float64
	Orient        geometry.Orient
	Width, Height float64

	// Per-pin state, indexed like Macro.Pins.
	Netnums []int
	Nodes   []*Node
	Taps    [][]geometry.Rect

	// Directions overrides the macro pin directions for top-level pin
	// gates, which all share the one-pin pseudo-macro.  Nil for
	// ordinary instances.
	Directions []tech.PortClass

	Obstructions []geometry.Rect
}

// PinIndex returns the index of the named pin on the gate's macro, -1
// if the macro has no such pin.
func (g *Gate) PinIndex(name string) int {
	if g.Macro == nil {
		return -1
	}
	for i := range g.Macro.Pins {
		if strings.EqualFold(g.Macro.Pins[i].Name, name) {
			return i
		}
	}
	return -1
}
