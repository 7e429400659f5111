package lef

import (
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/lefdef"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/tech"
)

// Pin section keywords, in lookup-table order.
const (
	pkDirection = iota
	pkUse
	pkPort
	pkCapacitance
	pkAntennaDiff
	pkAntennaGate
	pkAntennaModel
	pkAntennaPartial
	pkAntennaPartialSide
	pkAntennaMax
	pkAntennaMaxSide
	pkShape
	pkNetExpr
	pkEnd
)

var pinKeys = []string{
	"DIRECTION",
	"USE",
	"PORT",
	"CAPACITANCE",
	"ANTENNADIFFAREA",
	"ANTENNAGATEAREA",
	"ANTENNAMODEL",
	"ANTENNAPARTIALMETALAREA",
	"ANTENNAPARTIALMETALSIDEAREA",
	"ANTENNAMAXAREACAR",
	"ANTENNAMAXSIDEAREACAR",
	"SHAPE",
	"NETEXPR",
	"END",
}

var pinClasses = []string{
	"DEFAULT",
	"INPUT",
	"OUTPUT",
	"OUTPUT TRISTATE",
	"INOUT",
	"FEEDTHRU",
}

var classByKey = []tech.PortClass{
	tech.PortClassDefault,
	tech.PortClassInput,
	tech.PortClassOutput,
	tech.PortClassTristate,
	tech.PortClassBidirectional,
	tech.PortClassFeedthrough,
}

var pinUses = []string{
	"DEFAULT",
	"SIGNAL",
	"ANALOG",
	"POWER",
	"GROUND",
	"CLOCK",
	"TIEOFF",
	"ANALOG",
	"SCAN",
	"RESET",
}

// Uses beyond CLOCK are recognized but carry no classification of
// their own and leave the pin use at its default.
var useByKey = []tech.PortUse{
	tech.PortUseDefault,
	tech.PortUseSignal,
	tech.PortUseAnalog,
	tech.PortUsePower,
	tech.PortUseGround,
	tech.PortUseClock,
}

// readPin parses one PIN section of a macro.  The pin is added to the
// macro only when a PORT block was present; portless pins are unusable
// for routing and dropped.  Reports whether the pin was kept.
func (p *parser) readPin(m *tech.Macro, pinname string) bool {
	pin := tech.Pin{Name: pinname}
	hadPort := false

	done := false
	for !done {
		tok := p.tok.Next(true)
		if tok == "" {
			break
		}
		keyword := lefdef.Lookup(tok, pinKeys)
		if keyword < 0 {
			p.diag.Warn(p.tok.Line, "Unknown keyword \"%s\" in LEF file; ignoring.\n", tok)
			p.tok.EndStatement()
			continue
		}
		switch keyword {
		case pkDirection:
			sub := lefdef.Lookup(p.tok.Next(true), pinClasses)
			if sub < 0 {
				p.diag.Error(p.tok.Line, "Improper DIRECTION statement\n")
			} else {
				pin.Direction = classByKey[sub]
			}
			p.tok.EndStatement()

		case pkUse:
			sub := lefdef.Lookup(p.tok.Next(true), pinUses)
			if sub < 0 {
				p.diag.Error(p.tok.Line, "Improper USE statement\n")
			} else if sub < len(useByKey) {
				pin.Use = useByKey[sub]
			}
			p.tok.EndStatement()

		case pkPort:
			pin.Taps = p.readGeometry()
			hadPort = true

		case pkAntennaGate:
			// The value is kept; the layer list is not.
			if v, ok := parseFloat(p.tok.Next(true)); ok {
				pin.GateArea = v
			}
			p.tok.EndStatement()

		case pkCapacitance, pkAntennaDiff, pkAntennaModel, pkAntennaPartial,
			pkAntennaPartialSide, pkAntennaMax, pkAntennaMaxSide,
			pkShape, pkNetExpr:
			p.tok.EndStatement()

		case pkEnd:
			if p.tok.ParseEndStatement(p.diag, pinname) {
				done = true
			} else {
				p.diag.Error(p.tok.Line, "Pin END statement missing.\n")
			}
		}
	}

	if hadPort {
		m.Pins = append(m.Pins, pin)
	}
	return hadPort
}

// Macro section keywords, in lookup-table order.
const (
	mkClass = iota
	mkSize
	mkOrigin
	mkSymmetry
	mkSource
	mkSite
	mkPin
	mkObs
	mkTiming
	mkForeign
	mkEnd
)

var macroKeys = []string{
	"CLASS",
	"SIZE",
	"ORIGIN",
	"SYMMETRY",
	"SOURCE",
	"SITE",
	"PIN",
	"OBS",
	"TIMING",
	"FOREIGN",
	"END",
}

// readMacro parses one MACRO section into a new cell definition.  A
// name collision renames the earlier cell with a numeric suffix.
func (p *parser) readMacro(mname string) {
	m := &tech.Macro{Name: mname}
	var bbox geometry.Rect
	hasSize := false

	done := false
	for !done {
		tok := p.tok.Next(true)
		if tok == "" {
			break
		}
		keyword := lefdef.Lookup(tok, macroKeys)
		if keyword < 0 {
			p.diag.Warn(p.tok.Line, "Unknown keyword \"%s\" in LEF file; ignoring.\n", tok)
			p.tok.EndStatement()
			continue
		}
		switch keyword {
		case mkClass, mkSymmetry, mkSource, mkSite, mkForeign:
			p.tok.EndStatement()

		case mkSize:
			var x, y float64
			ok := false
			if v, okx := parseFloat(p.tok.Next(true)); okx {
				x = v
				if p.tok.Next(true) != "" { // BY
					if w, oky := parseFloat(p.tok.Next(true)); oky {
						y = w
						ok = true
					}
				}
			}
			if ok {
				bbox.X2 = x + bbox.X1
				bbox.Y2 = y + bbox.Y1
				hasSize = true
			} else {
				p.diag.Error(p.tok.Line, "Bad macro SIZE; requires values X BY Y.\n")
			}
			p.tok.EndStatement()

		case mkOrigin:
			if x, y, ok := p.readPoint(); ok {
				bbox.X1 = -x
				bbox.Y1 = -y
				if hasSize {
					bbox.X2 += bbox.X1
					bbox.Y2 += bbox.Y1
				}
			} else {
				p.diag.Error(p.tok.Line, "Bad macro ORIGIN; requires 2 values.\n")
			}
			p.tok.EndStatement()

		case mkPin:
			p.readPin(m, p.tok.Next(true))

		case mkObs:
			m.Obstructions = p.readGeometry()

		case mkTiming:
			p.tok.SkipSection(p.diag, macroKeys[mkTiming])

		case mkEnd:
			if p.tok.ParseEndStatement(p.diag, mname) {
				done = true
			} else {
				p.diag.Error(p.tok.Line, "Macro END statement missing.\n")
			}
		}
	}

	if hasSize {
		m.Width = bbox.X2 - bbox.X1
		m.Height = bbox.Y2 - bbox.Y1

		// The macro origin is the bounding box lower left corner;
		// placements subtract it before transforming geometry.
		m.OriginX = bbox.X1
		m.OriginY = bbox.Y1
	} else {
		p.diag.Error(p.tok.Line, "Gate %s has no size information!\n", m.Name)
	}

	if renamed := p.reg.AddMacro(m); renamed != "" {
		p.diag.Warn(p.tok.Line, "Cell \"%s\" was already defined in this file.  "+
			"Renaming original cell \"%s\"\n", mname, renamed)
	}
}
