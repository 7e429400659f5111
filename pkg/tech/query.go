package tech

// Rule queries.  Every query returns a usable number: when no layer
// record exists, the result falls back to half the minimum track pitch
// (or the pitch itself for pitch queries).  The router depends on
// always getting an answer rather than a missing-value signal.

// RouteKeepout returns the distance from an obstruction edge within
// which no route may be placed: half the route width plus the spacing.
func (reg *Registry) RouteKeepout(layer int) float64 {
	if l := reg.FindLayerByIndex(layer); l != nil && l.Class == ClassRoute {
		sp := 0.0
		if len(l.Route.Spacing) > 0 {
			sp = l.Route.Spacing[0].Spacing
		}
		return l.Route.Width/2.0 + sp
	}
	return reg.MinPitch() - reg.PathWidth[layer]/2.0
}

// RouteWidth returns the wire width for a routing layer.
func (reg *Registry) RouteWidth(layer int) float64 {
	if l := reg.FindLayerByIndex(layer); l != nil && l.Class == ClassRoute {
		return l.Route.Width
	}
	return reg.MinPitch() / 2.0
}

// RouteOffset returns the track offset on the layer's preferred axis.
func (reg *Registry) RouteOffset(layer int) float64 {
	if l := reg.FindLayerByIndex(layer); l != nil && l.Class == ClassRoute {
		if l.Route.Dir == DirHorizontal {
			return l.Route.OffsetY
		}
		return l.Route.OffsetX
	}
	return reg.MinPitch() / 2.0
}

func (reg *Registry) RouteOffsetX(layer int) float64 {
	if l := reg.FindLayerByIndex(layer); l != nil && l.Class == ClassRoute {
		return l.Route.OffsetX
	}
	return reg.MinPitch() / 2.0
}

func (reg *Registry) RouteOffsetY(layer int) float64 {
	if l := reg.FindLayerByIndex(layer); l != nil && l.Class == ClassRoute {
		return l.Route.OffsetY
	}
	return reg.PitchY / 2.0
}

// RouteMinArea returns the minimum metal area rule, zero if none.
func (reg *Registry) RouteMinArea(layer int) float64 {
	if l := reg.FindLayerByIndex(layer); l != nil && l.Class == ClassRoute {
		return l.Route.MinArea
	}
	return 0.0
}

// RouteSpacing returns the base spacing rule for a routing layer.
func (reg *Registry) RouteSpacing(layer int) float64 {
	if l := reg.FindLayerByIndex(layer); l != nil && l.Class == ClassRoute {
		if len(l.Route.Spacing) > 0 {
			return l.Route.Spacing[0].Spacing
		}
		return 0.0
	}
	return reg.MinPitch() / 2.0
}

// RouteWideSpacing returns the spacing rule for a wire of the given
// width, the widest rule whose width bound does not exceed it.
func (reg *Registry) RouteWideSpacing(layer int, width float64) float64 {
	if l := reg.FindLayerByIndex(layer); l != nil && l.Class == ClassRoute &&
		len(l.Route.Spacing) > 0 {
		spacing := l.Route.Spacing[0].Spacing
		for _, rule := range l.Route.Spacing {
			if rule.Width > width {
				break
			}
			spacing = rule.Spacing
		}
		return spacing
	}
	return reg.MinPitch() / 2.0
}

// RoutePitch returns the pitch on the layer's preferred axis.
func (reg *Registry) RoutePitch(layer int) float64 {
	if l := reg.FindLayerByIndex(layer); l != nil && l.Class == ClassRoute {
		if l.Route.Dir == DirHorizontal {
			return l.Route.PitchY
		}
		return l.Route.PitchX
	}
	return reg.MinPitch()
}

func (reg *Registry) RoutePitchX(layer int) float64 {
	if l := reg.FindLayerByIndex(layer); l != nil && l.Class == ClassRoute {
		return l.Route.PitchX
	}
	return reg.PitchX
}

func (reg *Registry) RoutePitchY(layer int) float64 {
	if l := reg.FindLayerByIndex(layer); l != nil && l.Class == ClassRoute {
		return l.Route.PitchY
	}
	return reg.PitchY
}

func (reg *Registry) SetRoutePitchX(layer int, value float64) {
	if l := reg.FindLayerByIndex(layer); l != nil && l.Class == ClassRoute {
		l.Route.PitchX = value
	}
}

func (reg *Registry) SetRoutePitchY(layer int, value float64) {
	if l := reg.FindLayerByIndex(layer); l != nil && l.Class == ClassRoute {
		l.Route.PitchY = value
	}
}

// RouteName returns the canonical name of a routing layer, "" if the
// layer number is not a route layer.
func (reg *Registry) RouteName(layer int) string {
	if l := reg.FindLayerByIndex(layer); l != nil && l.Class == ClassRoute {
		return l.Name
	}
	return ""
}

// RouteOrientation reports whether a layer routes horizontally (1),
// vertically (0), or is unknown (-1).
func (reg *Registry) RouteOrientation(layer int) int {
	if l := reg.FindLayerByIndex(layer); l != nil && l.Class == ClassRoute {
		if l.Route.Dir == DirHorizontal {
			return 1
		}
		return 0
	}
	return -1
}

// RouteRC returns the area capacitance, edge capacitance, and sheet
// resistance of a routing layer.  ok is false when the layer is unknown.
func (reg *Registry) RouteRC(layer int) (areacap, edgecap, respersq float64, ok bool) {
	if l := reg.FindLayerByIndex(layer); l != nil && l.Class == ClassRoute {
		return l.Route.AreaCap, l.Route.EdgeCap, l.Route.ResPerSq, true
	}
	return 0, 0, 0, false
}

// RouteAreaRatio returns the antenna violation area ratio.
func (reg *Registry) RouteAreaRatio(layer int) float64 {
	if l := reg.FindLayerByIndex(layer); l != nil && l.Class == ClassRoute {
		return l.Route.Antenna
	}
	return 0.0
}

// RouteAntennaMethod returns the antenna calculation method.
func (reg *Registry) RouteAntennaMethod(layer int) AntennaMethod {
	if l := reg.FindLayerByIndex(layer); l != nil && l.Class == ClassRoute {
		return l.Route.Method
	}
	return CalcNone
}

// RouteThickness returns the metal thickness, zero if undefined.
func (reg *Registry) RouteThickness(layer int) float64 {
	if l := reg.FindLayerByIndex(layer); l != nil && l.Class == ClassRoute {
		return l.Route.Thick
	}
	return 0.0
}

// Via orientation indices for ViaWidthXY.
const (
	ViaXX = iota // both layers horizontal
	ViaXY        // base horizontal, top vertical
	ViaYX        // base vertical, top horizontal
	ViaYY        // both layers vertical
)

func (reg *Registry) viaSlot(base, orient int) string {
	slots := reg.Vias[base]
	if slots == nil {
		return ""
	}
	switch orient {
	case ViaXY:
		return slots.XY
	case ViaYX:
		return slots.YX
	case ViaYY:
		return slots.YY
	}
	return slots.XX
}

// ViaWidth returns the extent of the via between base and base+1 on the
// given metal layer, across the track direction (dir 0) or along it
// (dir 1).  Uses the horizontally oriented via when one exists.
func (reg *Registry) ViaWidth(base, layer, dir int) float64 {
	return reg.ViaWidthXY(base, layer, dir, ViaXX)
}

// fallback chains when a slot is empty; each row is tried in order
// after the requested orientation itself.
var viaFallbacks = [4][3]int{
	ViaXX: {ViaXY, ViaYX, ViaYY},
	ViaXY: {ViaYX, ViaYY, ViaYX},
	ViaYX: {ViaYY, ViaXX, ViaXY},
	ViaYY: {ViaYX, ViaXY, ViaXX},
}

// ViaWidthXY is ViaWidth with an explicit via orientation.  If the
// requested orientation has no assigned via the other slots are tried in
// a fixed order; with no usable via at all the result falls back to half
// the minimum pitch.
func (reg *Registry) ViaWidthXY(base, layer, dir, orient int) float64 {
	l := reg.FindLayer(reg.viaSlot(base, orient))
	for _, alt := range viaFallbacks[orient] {
		if l != nil {
			break
		}
		l = reg.FindLayer(reg.viaSlot(base, alt))
	}
	if l != nil && l.Class == ClassVia {
		if l.Via.Area.Layer == layer {
			if dir != 0 {
				return l.Via.Area.Height() / 2.0
			}
			return l.Via.Area.Width() / 2.0
		}
		for _, r := range l.Via.LR {
			if r.Layer == layer {
				if dir != 0 {
					return r.Height() / 2.0
				}
				return r.Width() / 2.0
			}
		}
	}
	return reg.MinPitch() / 2.0
}

// ViaResistance returns the resistance of the via above the given base
// layer.  ok is false when no via is defined there.
func (reg *Registry) ViaResistance(base int) (res float64, ok bool) {
	for _, orient := range []int{ViaXX, ViaXY, ViaYX, ViaYY} {
		if l := reg.FindLayer(reg.viaSlot(base, orient)); l != nil && l.Class == ClassVia {
			return l.Via.ResPerVia, true
		}
	}
	return 0, false
}
