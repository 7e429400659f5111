package tech

import (
	"math"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/lefdef"
)

// viaShape summarizes a via's usable metal rectangles: the lowest and
// highest routing layers it touches and the X-minus-Y extent difference
// of the rectangle on each.
type viaShape struct {
	base, top        int
	xybdiff, xytdiff float64
	ok               bool
}

func (reg *Registry) shapeOf(l *Layer, minroute, maxroute int) viaShape {
	s := viaShape{base: -1, top: -1}
	if len(l.Via.LR) == 0 {
		return s
	}
	elong := func(r geometry.Rect) float64 { return r.Width() - r.Height() }

	if l.Via.Area.Layer >= minroute && l.Via.Area.Layer <= maxroute {
		s.base = l.Via.Area.Layer
		s.xybdiff = elong(l.Via.Area)
	}
	for _, r := range l.Via.LR {
		if r.Layer >= minroute && r.Layer <= maxroute {
			if s.base < 0 || r.Layer < s.base {
				s.base = r.Layer
				s.xybdiff = elong(r)
			}
		}
	}
	s.top = s.base
	s.xytdiff = s.xybdiff
	for _, r := range l.Via.LR {
		if r.Layer >= minroute && r.Layer <= maxroute {
			if r.Layer > s.top {
				s.top = r.Layer
				s.xytdiff = elong(r)
			}
		}
	}
	s.ok = s.base >= 0 && s.top >= 0
	return s
}

// AssignLayerVias populates the per-base-layer via orientation slots
// from the defined vias.  Pass one takes vias elongated on both metal
// layers; pass two fills remaining slots from vias square on one side;
// pass three from vias square on both.  Slots still empty afterwards are
// back-filled from the other slots of the same base layer, so every base
// layer with at least one usable via gets all four slots.
//
// A non-empty allowed list restricts assignment to the named vias and
// overrides the preference for generate-rule vias.
func (reg *Registry) AssignLayerVias(allowed []string, diag *lefdef.Diagnostics, line int) {
	records := reg.Records()

	// Which base layers have a generate-rule via.
	hasGenerate := make(map[int]bool)
	for _, l := range records {
		if l.Class != ClassVia || !l.Via.Generated || len(l.Via.LR) == 0 {
			continue
		}
		base := l.Via.Area.Layer
		bad := false
		for _, r := range l.Via.LR {
			if r.Layer < 0 {
				l.Via.Generated = false
				bad = true
				break
			}
			if base < 0 || r.Layer < base {
				base = r.Layer
			}
		}
		if !bad && base >= 0 {
			hasGenerate[base] = true
		}
	}

	minroute, maxroute := -1, -1
	for _, l := range records {
		if l.Class != ClassRoute {
			continue
		}
		if minroute == -1 || l.Index < minroute {
			minroute = l.Index
		}
		if maxroute == -1 || l.Index > maxroute {
			maxroute = l.Index
		}
	}

	usable := func(l *Layer, s viaShape) bool {
		if !s.ok {
			return false
		}
		if len(allowed) > 0 {
			for _, name := range allowed {
				if name == l.Name {
					return true
				}
			}
			return false
		}
		if hasGenerate[s.base] && !l.Via.Generated {
			return false
		}
		return true
	}

	slots := make(map[int]*ViaSlots)
	at := func(base int) *ViaSlots {
		s := slots[base]
		if s == nil {
			s = &ViaSlots{}
			slots[base] = s
		}
		return s
	}

	// Pass one: vias elongated on both metal layers.
	for _, l := range records {
		if l.Class != ClassVia {
			continue
		}
		s := reg.shapeOf(l, minroute, maxroute)
		if !usable(l, s) {
			continue
		}
		if s.top-s.base != 1 {
			diag.Warn(line, "Via \"%s\" in LEF file is defined on "+
				"non-contiguous route layers!\n", l.Name)
		}
		switch {
		case s.xytdiff > EPS && s.xybdiff < -EPS:
			at(s.base).YX = l.Name
		case s.xytdiff < -EPS && s.xybdiff > EPS:
			at(s.base).XY = l.Name
		case s.xytdiff > EPS && s.xybdiff > EPS:
			at(s.base).XX = l.Name
		case s.xytdiff < -EPS && s.xybdiff < -EPS:
			at(s.base).YY = l.Name
		}
	}

	// Pass two: vias square on exactly one side fill empty slots that
	// agree with the elongated side.
	for _, l := range records {
		if l.Class != ClassVia {
			continue
		}
		s := reg.shapeOf(l, minroute, maxroute)
		if !usable(l, s) {
			continue
		}
		sq := func(d float64) bool { return math.Abs(d) < EPS }
		v := at(s.base)
		if sq(s.xytdiff) && !sq(s.xybdiff) {
			if s.xybdiff > EPS {
				fillEmpty(&v.XX, l.Name)
				fillEmpty(&v.XY, l.Name)
			} else {
				fillEmpty(&v.YX, l.Name)
				fillEmpty(&v.YY, l.Name)
			}
		} else if sq(s.xybdiff) && !sq(s.xytdiff) {
			if s.xytdiff > EPS {
				fillEmpty(&v.XX, l.Name)
				fillEmpty(&v.YX, l.Name)
			} else {
				fillEmpty(&v.XY, l.Name)
				fillEmpty(&v.YY, l.Name)
			}
		}
	}

	// Pass three: vias square on both sides fill anything still empty.
	for _, l := range records {
		if l.Class != ClassVia {
			continue
		}
		s := reg.shapeOf(l, minroute, maxroute)
		if !usable(l, s) {
			continue
		}
		if math.Abs(s.xytdiff) < EPS && math.Abs(s.xybdiff) < EPS {
			v := at(s.base)
			fillEmpty(&v.XX, l.Name)
			fillEmpty(&v.XY, l.Name)
			fillEmpty(&v.YX, l.Name)
			fillEmpty(&v.YY, l.Name)
		}
	}

	// Commit, back-filling any empty slot from the populated ones.
	for base, v := range slots {
		if v.XX == "" && v.XY == "" && v.YX == "" && v.YY == "" {
			continue
		}
		committed := &ViaSlots{XX: v.XX, XY: v.XY, YX: v.YX, YY: v.YY}
		backfill(&committed.XX, v.XY, v.YX, v.YY)
		backfill(&committed.XY, v.XX, v.YY, v.YX)
		backfill(&committed.YX, v.YY, v.XX, v.XY)
		backfill(&committed.YY, v.YX, v.XY, v.XX)
		reg.Vias[base] = committed
	}
}

func fillEmpty(slot *string, name string) {
	if *slot == "" {
		*slot = name
	}
}

func backfill(slot *string, candidates ...string) {
	if *slot != "" {
		return
	}
	for _, c := range candidates {
		if c != "" {
			*slot = c
			return
		}
	}
}

// SynthesizeRotatedVias creates rotated variants of generate-rule vias
// whose metal rectangles are not square, so all four orientation pairs
// have a usable via.  Metal rectangles are first widened to twice the
// minimum route width of their layer.  Variants are named by replacing
// the trailing digit of the original name with '1', '2', and '3'; an
// already-defined name is skipped with a warning.
func (reg *Registry) SynthesizeRotatedVias(diag *lefdef.Diagnostics, line int) {
	swap := func(r geometry.Rect) geometry.Rect {
		r.X1, r.Y1, r.X2, r.Y2 = r.Y1, r.X1, r.Y2, r.X2
		return r
	}
	variantName := func(name string, digit byte) string {
		b := []byte(name)
		b[len(b)-1] = digit
		return string(b)
	}
	clone := func(orig *Layer, name string, lr ...geometry.Rect) {
		alt := reg.NewVia(name)
		alt.Via.Generated = true
		alt.Class = orig.Class
		alt.Via.ResPerVia = orig.Via.ResPerVia
		alt.Via.Area = orig.Via.Area
		alt.Via.LR = lr
	}

	for _, l := range reg.Records() {
		if l.Class != ClassVia || !l.Via.Generated || len(l.Via.LR) < 2 {
			continue
		}

		// The two metal enclosure rects must be at least twice the
		// minimum route width in each direction.
		for i := 0; i < 2; i++ {
			r := &l.Via.LR[i]
			minwidth := reg.RouteWidth(r.Layer)
			if r.Width()+EPS < 2.0*minwidth {
				r.X1, r.X2 = -minwidth, minwidth
			}
			if r.Height()+EPS < 2.0*minwidth {
				r.Y1, r.Y2 = -minwidth, minwidth
			}
		}

		r1, r2 := l.Via.LR[0], l.Via.LR[1]
		nsq1 := math.Abs(r1.Width()-r1.Height()) > EPS
		nsq2 := math.Abs(r2.Width()-r2.Height()) > EPS
		if !nsq1 && !nsq2 {
			continue
		}

		// Rotate both non-square layers.
		name := variantName(l.Name, '1')
		if reg.FindLayer(name) != nil {
			diag.Warn(line, "Via name %s has already been defined!\n", name)
			continue
		}
		v1, v2 := r1, r2
		if nsq1 {
			v1 = swap(r1)
		}
		if nsq2 {
			v2 = swap(r2)
		}
		clone(l, name, v1, v2)

		if nsq1 && nsq2 {
			// Both sides non-square: add the two mixed orientations.
			name = variantName(l.Name, '2')
			if reg.FindLayer(name) != nil {
				diag.Warn(line, "Via name %s has already been defined!\n", name)
				continue
			}
			clone(l, name, r1, swap(r2))

			name = variantName(l.Name, '3')
			if reg.FindLayer(name) != nil {
				diag.Warn(line, "Via name %s has already been defined!\n", name)
				continue
			}
			clone(l, name, swap(r1), r2)
		}
	}
}
