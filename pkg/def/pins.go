package def

import (
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/layout"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/lef"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/lefdef"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/tech"
)

// Pin record properties, in lookup-table order.
const (
	pinPropNet = iota
	pinPropDir
	pinPropLayer
	pinPropPlaced
	pinPropUse
	pinPropFixed
	pinPropCover
)

var pinPropKeys = []string{
	"NET",
	"DIRECTION",
	"LAYER",
	"PLACED",
	"USE",
	"FIXED",
	"COVER",
}

// Design-file pin direction keywords.  The order differs from the
// technology file's table.
var pinClasses = []string{
	"DEFAULT",
	"INPUT",
	"OUTPUT TRISTATE",
	"OUTPUT",
	"INOUT",
	"FEEDTHRU",
}

var pinClassByKey = []tech.PortClass{
	tech.PortClassDefault,
	tech.PortClassInput,
	tech.PortClassTristate,
	tech.PortClassOutput,
	tech.PortClassBidirectional,
	tech.PortClassFeedthrough,
}

// Pin use keywords.  Only the table index matters here; the use is
// consulted once, to derive a direction for pins that declared none.
const (
	pinUseDefault = iota
	pinUseSignal
	pinUseAnalog
	pinUsePower
	pinUseGround
	pinUseClock
	pinUseTieoff
	pinUseScan
	pinUseReset
)

var pinUses = []string{
	"DEFAULT",
	"SIGNAL",
	"ANALOG",
	"POWER",
	"GROUND",
	"CLOCK",
	"TIEOFF",
	"SCAN",
	"RESET",
}

// readPins reads a PINS section.  Each pin becomes a degenerate
// single-node gate on the pseudo-macro for top-level pins, named after
// its net so net connectivity lists can find it.
func (p *parser) readPins(sname string, total int) {
	processed := 0
	numLayers := p.reg.NumLayers()
	pinUse := pinUseDefault

	var gate *layout.Gate

	for {
		tok := p.tok.Next(true)
		if tok == "" {
			break
		}
		keyword := lefdef.Lookup(tok, recordKeys)
		if keyword < 0 {
			p.diag.Warn(p.tok.Line, "Unknown keyword \"%s\" in PINS definition; ignoring.\n", tok)
			p.tok.EndStatement()
			continue
		}
		switch keyword {
		case recStart:
			processed++

			pinname := p.tok.Next(true)
			if pinname == "" || pinname == ";" {
				p.diag.Error(p.tok.Line, "Bad pin statement:  Need pin name\n")
				p.tok.EndStatement()
				continue
			}

			// A pin gate has exactly one node.  The name is filled
			// from the NET clause, or from the pin name without one.
			gate = &layout.Gate{
				Macro:      p.reg.PinMacro,
				Netnums:    []int{-1},
				Nodes:      []*layout.Node{nil},
				Taps:       [][]geometry.Rect{nil},
				Directions: []tech.PortClass{tech.PortClassDefault},
			}
			curlayer := -1

			for {
				tok = p.tok.Next(true)
				if tok == "" || tok == ";" {
					break
				}
				if tok != "+" {
					continue
				}
				tok = p.tok.Next(true)
				subkey := lefdef.Lookup(tok, pinPropKeys)
				if subkey < 0 {
					p.diag.Warn(p.tok.Line, "Unknown pin property \"%s\" in PINS definition; ignoring.\n", tok)
					continue
				}
				switch subkey {
				case pinPropNet:
					gate.Name = p.tok.Next(true)

				case pinPropDir:
					tok = p.tok.Next(true)
					class := lefdef.Lookup(tok, pinClasses)
					if class < 0 {
						p.diag.Error(p.tok.Line, "Unknown pin class %s\n", tok)
					} else {
						gate.Directions[0] = pinClassByKey[class]
					}

				case pinPropLayer:
					curlayer = lef.ReadLayer(p.tok, p.diag, p.reg)
					if r, ok := lef.ReadRect(p.tok, p.diag, p.reg, curlayer, p.oscale); ok {
						gate.Width = r.X2 - r.X1
						gate.Height = r.Y2 - r.Y1
					}

				case pinPropUse:
					tok = p.tok.Next(true)
					use := lefdef.Lookup(tok, pinUses)
					if use < 0 {
						p.diag.Error(p.tok.Line, "Unknown pin use %s\n", tok)
					} else {
						pinUse = use
					}

				case pinPropPlaced, pinPropFixed, pinPropCover:
					p.readLocation(gate)
				}
			}

			if curlayer >= 0 && curlayer < numLayers {
				if gate.Name == "" {
					gate.Name = pinname
				}

				// Make the pin at least the size of the route layer
				// width, with the tap centered on the placement.
				hwidth := p.reg.RouteWidth(curlayer)
				if gate.Width < hwidth {
					gate.Width = hwidth
				}
				if gate.Height < hwidth {
					gate.Height = hwidth
				}
				hwidth /= 2.0
				gate.Taps[0] = []geometry.Rect{{
					Layer: curlayer,
					X1:    gate.X - hwidth,
					Y1:    gate.Y - hwidth,
					X2:    gate.X + hwidth,
					Y2:    gate.Y + hwidth,
				}}
				p.db.AddGate(gate)
			} else {
				p.diag.Error(p.tok.Line, "Pin %s is defined outside of route layer area!\n", pinname)
			}

		case recEnd:
			ended := p.tok.ParseEndStatement(p.diag, sname)
			if !ended {
				p.diag.Error(p.tok.Line, "Pins END statement missing.\n")
			}
			if pinUse != pinUseDefault && gate != nil &&
				gate.Directions[0] == tech.PortClassDefault {
				// Derive the pin direction from its use.
				switch pinUse {
				case pinUseSignal, pinUseReset, pinUseClock, pinUseScan:
					gate.Directions[0] = tech.PortClassInput
				case pinUsePower, pinUseGround, pinUseTieoff, pinUseAnalog:
					gate.Directions[0] = tech.PortClassBidirectional
				}
			}
			if ended {
				p.countCheck("pins", processed, total)
				return
			}
		}
	}
	p.countCheck("pins", processed, total)
}
