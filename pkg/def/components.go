package def

import (
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/layout"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/lefdef"
)

// Component record properties, in lookup-table order.
const (
	compPropFixed = iota
	compPropCover
	compPropPlaced
	compPropUnplaced
	compPropSource
	compPropWeight
	compPropForeign
	compPropRegion
	compPropGenerate
	compPropProperty
	compPropEEQMaster
)

var compPropKeys = []string{
	"FIXED",
	"COVER",
	"PLACED",
	"UNPLACED",
	"SOURCE",
	"WEIGHT",
	"FOREIGN",
	"REGION",
	"GENERATE",
	"PROPERTY",
	"EEQMASTER",
}

// readLocation reads a placement clause "( X Y ) orient" into the gate.
// Returns -1 when the clause cannot be parsed; the gate is untouched
// then.
func (p *parser) readLocation(gate *layout.Gate) int {
	parseError := func() int {
		p.diag.Error(p.tok.Line, "Cannot parse location: must be ( X Y ) orient\n")
		return -1
	}

	if p.tok.Next(true) != "(" {
		return parseError()
	}
	x, ok := parseFloat(p.tok.Next(true))
	if !ok {
		return parseError()
	}
	y, ok := parseFloat(p.tok.Next(true))
	if !ok {
		return parseError()
	}
	if p.tok.Next(true) != ")" {
		return parseError()
	}

	tok := p.tok.Next(true)
	keyword := lefdef.Lookup(tok, geometry.OrientNames)
	if keyword < 0 {
		p.diag.Error(p.tok.Line, "Unknown macro orientation \"%s\".\n", tok)
		return -1
	}

	if gate != nil {
		gate.X = x / p.oscale
		gate.Y = y / p.oscale
		gate.Orient = geometry.OrientByIndex(keyword)
	}
	return 0
}

// readComponents reads a COMPONENTS section, creating a placed Gate per
// instance with all macro geometry transformed into die coordinates.
// Returns the number of fatal errors.
func (p *parser) readComponents(sname string, total int) int {
	processed := 0
	errFatal := 0
	numLayers := p.reg.NumLayers()

	for {
		tok := p.tok.Next(true)
		if tok == "" {
			break
		}
		keyword := lefdef.Lookup(tok, recordKeys)
		if keyword < 0 {
			p.diag.Warn(p.tok.Line, "Unknown keyword \"%s\" in COMPONENT definition; ignoring.\n", tok)
			p.tok.EndStatement()
			continue
		}
		switch keyword {
		case recStart:
			processed++

			usename := p.tok.Next(true)
			if usename == "" || usename == ";" {
				p.diag.Error(p.tok.Line, "Bad component statement:  Need use and macro names\n")
				p.tok.EndStatement()
				errFatal++
				continue
			}
			macroname := p.tok.Next(true)

			var gate *layout.Gate
			m := p.reg.FindMacro(macroname)
			if m == nil {
				p.diag.Error(p.tok.Line, "Could not find a macro definition for \"%s\"\n", macroname)
				errFatal++
			} else {
				gate = &layout.Gate{Name: usename, Macro: m}
			}

			for {
				tok = p.tok.Next(true)
				if tok == "" || tok == ";" {
					break
				}
				if tok != "+" {
					continue
				}
				tok = p.tok.Next(true)
				subkey := lefdef.Lookup(tok, compPropKeys)
				if subkey < 0 {
					p.diag.Warn(p.tok.Line, "Unknown component property \"%s\" in "+
						"COMPONENT definition; ignoring.\n", tok)
					continue
				}
				switch subkey {
				case compPropPlaced, compPropUnplaced, compPropFixed, compPropCover:
					p.readLocation(gate)
				case compPropSource, compPropWeight, compPropForeign,
					compPropRegion, compPropGenerate, compPropProperty,
					compPropEEQMaster:
					p.tok.Next(true)
				}
			}

			if gate != nil {
				p.placeGate(gate, numLayers)
			}

		case recEnd:
			if p.tok.ParseEndStatement(p.diag, sname) {
				p.countCheck("subcells", processed, total)
				return errFatal
			}
			p.diag.Error(p.tok.Line, "Component END statement missing.\n")
			errFatal++
		}
	}
	p.countCheck("subcells", processed, total)
	return errFatal
}

// placeGate fills in the per-pin state of a placed instance and maps
// the macro geometry to die coordinates.  Taps and obstructions on
// layers past the route layer count are dropped before the transform.
func (p *parser) placeGate(gate *layout.Gate, numLayers int) {
	m := gate.Macro
	gate.Width = m.Width
	gate.Height = m.Height

	n := len(m.Pins)
	gate.Netnums = make([]int, n)
	gate.Nodes = make([]*layout.Node, n)
	gate.Taps = make([][]geometry.Rect, n)

	for i := range m.Pins {
		// Power and ground pins match the global bus names by node
		// name; give them placeholder nodes with no taps so they are
		// never reported as disconnected.
		switch {
		case p.vddnet != "" && m.Pins[i].Name == p.vddnet:
			gate.Netnums[i] = layout.VddNet
			gate.Nodes[i] = &layout.Node{Netnum: layout.VddNet}
		case p.gndnet != "" && m.Pins[i].Name == p.gndnet:
			gate.Netnums[i] = layout.GndNet
			gate.Nodes[i] = &layout.Node{Netnum: layout.GndNet}
		}

		for _, r := range m.Pins[i].Taps {
			if r.Layer >= numLayers {
				continue
			}
			r.X1 -= m.OriginX
			r.X2 -= m.OriginX
			r.Y1 -= m.OriginY
			r.Y2 -= m.OriginY
			gate.Taps[i] = append(gate.Taps[i],
				geometry.Transform(r, gate.Orient, gate.X, gate.Y, m.Width, m.Height))
		}
	}

	for _, r := range m.Obstructions {
		if r.Layer >= numLayers {
			continue
		}
		r.X1 -= m.OriginX
		r.X2 -= m.OriginX
		r.Y1 -= m.OriginY
		r.Y2 -= m.OriginY
		gate.Obstructions = append(gate.Obstructions,
			geometry.Transform(r, gate.Orient, gate.X, gate.Y, m.Width, m.Height))
	}

	p.db.AddGate(gate)
}
