package tech

import "github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"

// PortClass is a pin's direction classification.
type PortClass int

const (
	PortClassDefault PortClass = iota
	PortClassInput
	PortClassOutput
	PortClassTristate
	PortClassBidirectional
	PortClassFeedthrough
)

// PortUse is a pin's use classification.
type PortUse int

const (
	PortUseDefault PortUse = iota
	PortUseSignal
	PortUseAnalog
	PortUsePower
	PortUseGround
	PortUseClock
)

// Pin is one terminal definition of a macro.  Taps are the port
// rectangles in macro-local coordinates.
type Pin struct {
	Name      string
	Direction PortClass
	Use       PortUse
	// GateArea is the antenna gate area, when given.
	GateArea float64
	Taps     []geometry.Rect
}

// Macro is a reusable cell definition from the technology file.  OriginX
// and OriginY locate the cell origin relative to the bounding box lower
// left corner; placements subtract them before transforming geometry.
type Macro struct {
	Name    string
	Width   float64
	Height  float64
	OriginX float64
	OriginY float64

	Pins         []Pin
	Obstructions []geometry.Rect
}

// FindPin returns the index of the named pin, or -1.
func (m *Macro) FindPin(name string) int {
	for i := range m.Pins {
		if m.Pins[i].Name == name {
			return i
		}
	}
	return -1
}
