// Package tech models the technology side of the routing database: the
// layer and via registry built from a technology file, the rule queries
// the router asks of it, and the per-layer via orientation tables.
package tech

import "github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"

// Class identifies what a registry record describes.  The first four
// values match the order of the TYPE keyword table so a keyword lookup
// index can be used directly.
type Class int

const (
	ClassRoute Class = iota
	ClassCut
	ClassMasterslice
	ClassOverlap
	ClassVia
	ClassIgnore
)

// Direction is a route layer's preferred direction.  DirResolve marks a
// layer whose PITCH statement preceded its DIRECTION; the pitch on the
// non-preferred axis is zeroed once the direction is known.
type Direction int

const (
	DirUnknown Direction = iota
	DirHorizontal
	DirVertical
	DirResolve
)

// AntennaMethod selects how antenna ratio violations are calculated.
type AntennaMethod int

const (
	CalcNone AntennaMethod = iota
	CalcArea
	CalcSideArea
	CalcAggArea
	CalcAggSideArea
)

// SpacingRule gives the minimum spacing to a wire of at least Width.
type SpacingRule struct {
	Width   float64
	Spacing float64
}

// RouteInfo carries the rules of a routing layer.  Offsets start at -1
// to record that no OFFSET statement has been seen; the default of half
// the pitch is applied when PITCH is read.
type RouteInfo struct {
	Width   float64
	Spacing []SpacingRule // ascending by Width
	PitchX  float64
	PitchY  float64
	OffsetX float64
	OffsetY float64
	Dir     Direction

	MinArea float64
	Thick   float64

	Antenna float64
	Method  AntennaMethod

	AreaCap  float64
	EdgeCap  float64
	ResPerSq float64
}

// ViaInfo carries a via or cut record.  Area is the defining rectangle;
// LR holds the remaining layer rectangles.  All via rectangles are
// stored at twice their drawn dimensions so that via centers can sit on
// half-grid positions; width queries return half the stored value.
type ViaInfo struct {
	Area      geometry.Rect
	LR        []geometry.Rect
	Generated bool
	ResPerVia float64
}

// Layer is one record in the registry: a routing layer, a cut layer, or
// a via definition.  Index is the assigned layer number, -1 until the
// record is classified (route) or first referenced from a via (cut).
type Layer struct {
	Name     string
	Class    Class
	Index    int
	ObsIndex int

	Route RouteInfo
	Via   ViaInfo
}

// resetRoute installs the defaults for a freshly classified route layer.
func (l *Layer) resetRoute() {
	l.Route = RouteInfo{OffsetX: -1.0, OffsetY: -1.0}
}

// resetVia clears the via geometry of a record.
func (l *Layer) resetVia() {
	l.Via = ViaInfo{Area: geometry.Rect{Layer: -1}}
}

// InsertSpacing adds a spacing rule, keeping the list sorted ascending
// by width.  A rule with zero width goes in front.
func (l *Layer) InsertSpacing(rule SpacingRule) {
	sp := l.Route.Spacing
	if rule.Width == 0 || len(sp) == 0 {
		l.Route.Spacing = append([]SpacingRule{rule}, sp...)
		return
	}
	j := 1
	for j < len(sp) && sp[j].Width <= rule.Width {
		j++
	}
	sp = append(sp, SpacingRule{})
	copy(sp[j+1:], sp[j:])
	sp[j] = rule
	l.Route.Spacing = sp
}
