package lef

import (
	"strings"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/lefdef"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/tech"
)

// Section mode for readLayerSection: the grammar is shared between
// LAYER, VIA, and VIARULE GENERATE sections but a few statements are
// only honored in one of them.
const (
	modeLayer = iota
	modeVia
	modeViaRule
)

// Layer section keywords, in lookup-table order.
const (
	lkType = iota
	lkWidth
	lkMinWidth
	lkMaxWidth
	lkArea
	lkSpacing
	lkSpacingTable
	lkPitch
	lkDirection
	lkOffset
	lkForeign
	lkWireExtension
	lkResistance
	lkCapacitance
	lkEdgeCapacitance
	lkThickness
	lkHeight
	lkMinimumCut
	lkMinimumDensity
	lkACDensity
	lkDCDensity
	lkProperty
	lkAntennaModel
	lkAntennaArea
	lkAntennaDiffArea
	lkAntennaSideArea
	lkAntennaCumArea
	lkAntennaCumDiffArea
	lkAntennaCumSideArea
	lkDefault
	lkLayer
	lkRect
	lkEnclosure
	lkPreferEnclosure
	lkOverhang
	lkMetalOverhang
	lkVia
	lkGenerate
	lkEnd
)

var layerKeys = []string{
	"TYPE",
	"WIDTH",
	"MINWIDTH",
	"MAXWIDTH",
	"AREA",
	"SPACING",
	"SPACINGTABLE",
	"PITCH",
	"DIRECTION",
	"OFFSET",
	"FOREIGN",
	"WIREEXTENSION",
	"RESISTANCE",
	"CAPACITANCE",
	"EDGECAPACITANCE",
	"THICKNESS",
	"HEIGHT",
	"MINIMUMCUT",
	"MINIMUMDENSITY",
	"ACCURRENTDENSITY",
	"DCCURRENTDENSITY",
	"PROPERTY",
	"ANTENNAMODEL",
	"ANTENNAAREARATIO",
	"ANTENNADIFFAREARATIO",
	"ANTENNASIDEAREARATIO",
	"ANTENNACUMAREARATIO",
	"ANTENNACUMDIFFAREARATIO",
	"ANTENNACUMSIDEAREARATIO",
	"DEFAULT",
	"LAYER",
	"RECT",
	"ENCLOSURE",
	"PREFERENCLOSURE",
	"OVERHANG",
	"METALOVERHANG",
	"VIA",
	"GENERATE",
	"END",
}

// The TYPE keyword table is ordered to match the tech.Class values.
var layerTypeKeys = []string{
	"ROUTING",
	"CUT",
	"MASTERSLICE",
	"OVERLAP",
}

const (
	spacingRange = iota
	spacingEnd
)

var spacingKeys = []string{
	"RANGE",
	";",
}

func className(c tech.Class) string {
	if int(c) >= 0 && int(c) < len(layerTypeKeys) {
		return layerTypeKeys[c]
	}
	if c == tech.ClassVia {
		return "VIA"
	}
	return "IGNORE"
}

// readLayerSection parses a LAYER, VIA, or VIARULE GENERATE section
// into the record lefl.  lname is the section name the closing END
// must repeat.
func (p *parser) readLayerSection(lname string, mode int, lefl *tech.Layer) {
	curlayer := -1

	for {
		tok := p.tok.Next(true)
		if tok == "" {
			return
		}
		keyword := lefdef.Lookup(tok, layerKeys)
		if keyword < 0 {
			p.diag.Warn(p.tok.Line, "Unknown keyword \"%s\" in LEF file; ignoring.\n", tok)
			p.tok.EndStatement()
			continue
		}
		switch keyword {
		case lkType:
			tok = p.tok.Next(true)
			typekey := lefdef.Lookup(tok, layerTypeKeys)
			if typekey < 0 {
				p.diag.Warn(p.tok.Line, "Unknown layer type \"%s\" in LEF file; ignoring.\n", tok)
			} else if lefl.Class == tech.ClassIgnore {
				lefl.Class = tech.Class(typekey)
				switch lefl.Class {
				case tech.ClassRoute:
					lefl.Route = tech.RouteInfo{OffsetX: -1.0, OffsetY: -1.0}

					// Route layers are numbered in file order,
					// bottom to top.
					lefl.Index = p.reg.MaxRouteLayer()
				case tech.ClassCut:
					// Cut layers stay unnumbered until referenced
					// from a via, keeping route numbers clustered
					// at the bottom.
					lefl.Via = tech.ViaInfo{Area: geometry.Rect{Layer: -1}}
				}
			} else if lefl.Class != tech.Class(typekey) {
				p.diag.Error(p.tok.Line, "Attempt to reclassify layer %s from %s to %s\n",
					lname, className(lefl.Class), layerTypeKeys[typekey])
			}
			p.tok.EndStatement()

		case lkMinWidth, lkWidth:
			// MINWIDTH stands in for WIDTH only while no width has
			// been seen.
			if keyword == lkMinWidth &&
				(lefl.Class != tech.ClassRoute || lefl.Route.Width != 0) {
				p.tok.EndStatement()
				break
			}
			if v, ok := parseFloat(p.tok.Next(true)); ok {
				switch lefl.Class {
				case tech.ClassRoute:
					lefl.Route.Width = v / p.oscale
				case tech.ClassCut:
					half := v / p.oscale / 2.0
					lefl.Via.Area.X1, lefl.Via.Area.Y1 = -half, -half
					lefl.Via.Area.X2, lefl.Via.Area.Y2 = half, half
				}
			}
			p.tok.EndStatement()

		case lkArea:
			if v, ok := parseFloat(p.tok.Next(true)); ok && lefl.Class == tech.ClassRoute {
				lefl.Route.MinArea = v / p.oscale / p.oscale
			}
			p.tok.EndStatement()

		case lkSpacing:
			if lefl.Class != tech.ClassRoute {
				p.tok.EndStatement()
				break
			}
			v, _ := parseFloat(p.tok.Next(true))
			sub := lefdef.Lookup(p.tok.Next(true), spacingKeys)
			if sub != spacingRange {
				lefl.InsertSpacing(tech.SpacingRule{Spacing: v / p.oscale})
			} else {
				// Keep the range minimum; the maximum is dropped by
				// the terminator scan below.
				w, _ := parseFloat(p.tok.Next(true))
				lefl.InsertSpacing(tech.SpacingRule{
					Width:   w / p.oscale,
					Spacing: v / p.oscale,
				})
				sub = lefdef.Lookup(p.tok.Next(true), spacingKeys)
			}
			if sub != spacingEnd {
				p.tok.EndStatement()
			}

		case lkSpacingTable:
			// Only the spacing at the maximum parallel run length is
			// used from each row.
			p.tok.Next(true) // PARALLELRUNLENGTH
			entries := 0
			tok = p.tok.Next(true)
			for tok != "" && tok != ";" && tok != "WIDTH" {
				entries++
				tok = p.tok.Next(true)
			}
			for tok == "WIDTH" {
				last := p.tok.Next(true)
				w, _ := parseFloat(last)
				for i := 0; i < entries; i++ {
					last = p.tok.Next(true)
				}
				s, _ := parseFloat(last)
				if lefl.Class == tech.ClassRoute {
					lefl.InsertSpacing(tech.SpacingRule{
						Width:   w / p.oscale,
						Spacing: s / p.oscale,
					})
				}
				tok = p.tok.Next(true)
			}

		case lkPitch:
			v, _ := parseFloat(p.tok.Next(true))
			lefl.Route.PitchX = v / p.oscale
			tok = p.tok.Next(true)
			if tok != "" && tok != ";" {
				v, _ = parseFloat(tok)
				lefl.Route.PitchY = v / p.oscale
				p.tok.EndStatement()
			} else {
				lefl.Route.PitchY = lefl.Route.PitchX

				// With one pitch value, the opposing direction's
				// pitch is zeroed once the direction is known.
				switch lefl.Route.Dir {
				case tech.DirUnknown:
					lefl.Route.Dir = tech.DirResolve
				case tech.DirVertical:
					lefl.Route.PitchY = 0.0
				case tech.DirHorizontal:
					lefl.Route.PitchX = 0.0
				}
			}
			// Offset defaults to half the pitch unless set explicitly.
			if lefl.Route.OffsetX < 0.0 {
				lefl.Route.OffsetX = lefl.Route.PitchX / 2.0
			}
			if lefl.Route.OffsetY < 0.0 {
				lefl.Route.OffsetY = lefl.Route.PitchY / 2.0
			}

		case lkDirection:
			tok = strings.ToLower(p.tok.Next(true))
			horizontal := strings.HasPrefix(tok, "h")
			if lefl.Route.Dir == tech.DirResolve {
				if horizontal {
					lefl.Route.PitchX = 0.0
				} else if strings.HasPrefix(tok, "v") {
					lefl.Route.PitchY = 0.0
				}
			}
			if horizontal {
				lefl.Route.Dir = tech.DirHorizontal
			} else {
				lefl.Route.Dir = tech.DirVertical
			}
			p.tok.EndStatement()

		case lkOffset:
			v, _ := parseFloat(p.tok.Next(true))
			lefl.Route.OffsetX = v / p.oscale
			tok = p.tok.Next(true)
			if tok != "" && tok != ";" {
				v, _ = parseFloat(tok)
				lefl.Route.OffsetY = v / p.oscale
				p.tok.EndStatement()
			} else {
				lefl.Route.OffsetY = lefl.Route.OffsetX
			}

		case lkResistance:
			tok = p.tok.Next(true)
			if lefl.Class == tech.ClassRoute {
				if tok == "RPERSQ" {
					if v, ok := parseFloat(p.tok.Next(true)); ok {
						// Ohms per square.
						lefl.Route.ResPerSq = v
					}
				}
			} else if lefl.Class == tech.ClassVia || lefl.Class == tech.ClassCut {
				if v, ok := parseFloat(tok); ok {
					// Ohms.
					lefl.Via.ResPerVia = v
				}
			}
			p.tok.EndStatement()

		case lkCapacitance:
			tok = p.tok.Next(true)
			if lefl.Class == tech.ClassRoute && tok == "CPERSQDIST" {
				if v, ok := parseFloat(p.tok.Next(true)); ok {
					// Picofarads per squared unit length.
					lefl.Route.AreaCap = v / (p.oscale * p.oscale)
				}
			}
			p.tok.EndStatement()

		case lkEdgeCapacitance:
			if v, ok := parseFloat(p.tok.Next(true)); ok && lefl.Class == tech.ClassRoute {
				// Picofarads per unit length.
				lefl.Route.EdgeCap = v / p.oscale
			}
			p.tok.EndStatement()

		case lkThickness, lkHeight:
			if v, ok := parseFloat(p.tok.Next(true)); ok && lefl.Class == tech.ClassRoute {
				lefl.Route.Thick = v / p.oscale
			}
			p.tok.EndStatement()

		case lkAntennaArea, lkAntennaSideArea, lkAntennaCumArea, lkAntennaCumSideArea:
			// Only one method is expected per layer; the last one read
			// wins.
			tok = p.tok.Next(true)
			if lefl.Class == tech.ClassRoute {
				if v, ok := parseFloat(tok); ok {
					lefl.Route.Antenna = v
				}
				switch keyword {
				case lkAntennaArea:
					lefl.Route.Method = tech.CalcArea
				case lkAntennaSideArea:
					lefl.Route.Method = tech.CalcSideArea
				case lkAntennaCumArea:
					lefl.Route.Method = tech.CalcAggArea
				default:
					lefl.Route.Method = tech.CalcAggSideArea
				}
			}
			p.tok.EndStatement()

		case lkACDensity:
			p.tok.Next(true) // value type
			if p.tok.Next(true) == "FREQUENCY" {
				p.tok.EndStatement()
				if p.tok.Next(true) == "WIDTH" {
					p.tok.EndStatement()
				}
			}
			p.tok.EndStatement()

		case lkDCDensity:
			p.tok.Next(true) // value type
			if p.tok.Next(true) == "WIDTH" {
				p.tok.EndStatement()
			}
			p.tok.EndStatement()

		case lkMaxWidth, lkForeign, lkWireExtension, lkMinimumCut,
			lkMinimumDensity, lkProperty, lkAntennaModel,
			lkAntennaDiffArea, lkAntennaCumDiffArea:
			p.tok.EndStatement()

		case lkDefault, lkGenerate:
			// Single keywords with no statement of their own.

		case lkLayer:
			curlayer = p.readLayer(false)
			p.tok.EndStatement()

		case lkRect:
			if curlayer >= 0 {
				p.addViaGeometry(lefl, curlayer)
			}
			p.tok.EndStatement()

		case lkEnclosure:
			// Metal enclosure rects only matter for generate rules.
			if mode == modeViaRule {
				if r, ok := p.readEnclosure(curlayer); ok {
					lefl.Via.LR = append(lefl.Via.LR, r)
					lefl.Via.Generated = true
				}
			}
			p.tok.EndStatement()

		case lkOverhang, lkMetalOverhang:
			// Pre-5.5 via rules cannot fully specify the geometry.
			p.diag.Warn(p.tok.Line, "NOTE:  Old format VIARULE ignored.\n")
			p.tok.EndStatement()

		case lkPreferEnclosure, lkVia:
			p.tok.EndStatement()

		case lkEnd:
			if p.tok.ParseEndStatement(p.diag, lname) {
				return
			}
			p.diag.Error(p.tok.Line, "Layer END statement missing.\n")
		}
	}
}

// addViaGeometry records one RECT of a via definition.  Via rectangles
// are stored at twice their drawn size.  The first rectangle becomes
// the defining area; when metal enclosures were already parsed from a
// generate rule, its dimensions are folded into them.  Later
// rectangles are kept as-is.
func (p *parser) addViaGeometry(lefl *tech.Layer, curlayer int) {
	r, ok := p.readRect(curlayer, p.oscale/2.0)
	if !ok {
		return
	}
	if lefl.Via.Area.Layer < 0 {
		lefl.Via.Area = r
		for i := range lefl.Via.LR {
			lr := &lefl.Via.LR[i]
			lr.X1 += r.X1
			lr.Y1 += r.Y1
			lr.X2 += r.X2
			lr.Y2 += r.Y2
		}
	} else {
		lefl.Via.LR = append(lefl.Via.LR, r)
	}
}
