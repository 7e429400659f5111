// Package lef reads technology files into a tech.Registry: routing
// layer rules, via and generate-rule geometry, and the macro library.
// Parsing is permissive; malformed statements are counted and reported
// through lefdef.Diagnostics while the reader resynchronizes on the
// next statement terminator.
package lef

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/lefdef"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/tech"
)

// DefaultPrecision is the output precision assumed when the file has no
// MANUFACTURINGGRID statement.
const DefaultPrecision = 100

// Reader parses technology files into a registry.
type Reader struct {
	Reg *tech.Registry

	// AllowedVias, when non-empty, restricts the via selection
	// heuristic to the named vias.
	AllowedVias []string

	// Diag accumulates errors and warnings.  Left nil, a default set
	// prefixed "LEF" and reporting to stdout is installed.
	Diag *lefdef.Diagnostics
}

func NewReader(reg *tech.Registry) *Reader {
	return &Reader{Reg: reg, Diag: &lefdef.Diagnostics{Prefix: "LEF"}}
}

// Read parses one technology file into reg with default diagnostics.
func Read(reg *tech.Registry, path string) (int, error) {
	return NewReader(reg).ReadFile(path)
}

// Top-level section keywords, in lookup-table order.
const (
	secVersion = iota
	secBusBitChars
	secDividerChar
	secManufacturingGrid
	secUseMinSpacing
	secClearanceMeasure
	secNoWireExtensionAtPin
	secNamesCaseSensitive
	secPropertyDefs
	secUnits
	secLayer
	secVia
	secViaRule
	secNonDefaultRule
	secSpacing
	secSite
	secProperty
	secNoiseTable
	secCorrectionTable
	secIRDrop
	secArray
	secTiming
	secExtension
	secMacro
	secEnd
)

var sectionKeys = []string{
	"VERSION",
	"BUSBITCHARS",
	"DIVIDERCHAR",
	"MANUFACTURINGGRID",
	"USEMINSPACING",
	"CLEARANCEMEASURE",
	"NOWIREEXTENSIONATPIN",
	"NAMESCASESENSITIVE",
	"PROPERTYDEFINITIONS",
	"UNITS",
	"LAYER",
	"VIA",
	"VIARULE",
	"NONDEFAULTRULE",
	"SPACING",
	"SITE",
	"PROPERTY",
	"NOISETABLE",
	"CORRECTIONTABLE",
	"IRDROP",
	"ARRAY",
	"TIMING",
	"BEGINEXT",
	"MACRO",
	"END",
}

// ReadFile opens and parses a technology file.  A path without a dot
// gets ".lef" appended.  The returned value is the output precision,
// the rounded reciprocal of the manufacturing grid.
func (rd *Reader) ReadFile(path string) (int, error) {
	if !strings.ContainsRune(path, '.') {
		path += ".lef"
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("cannot open input file: %w", err)
	}
	defer f.Close()
	return rd.Parse(f), nil
}

// Parse reads technology data from r.  See ReadFile.
func (rd *Reader) Parse(r io.Reader) int {
	if rd.Diag == nil {
		rd.Diag = &lefdef.Diagnostics{Prefix: "LEF"}
	}
	p := &parser{
		tok:    lefdef.NewTokenizer(r),
		diag:   rd.Diag,
		reg:    rd.Reg,
		oscale: 1.0,
	}
	precision := p.run()
	p.finish(rd.AllowedVias)
	return precision
}

type parser struct {
	tok    *lefdef.Tokenizer
	diag   *lefdef.Diagnostics
	reg    *tech.Registry
	oscale float64
}

func parseFloat(tok string) (float64, bool) {
	v, err := strconv.ParseFloat(tok, 64)
	return v, err == nil
}

// run drives the top-level section loop and returns the output
// precision.
func (p *parser) run() int {
	precision := DefaultPrecision

	for {
		tok := p.tok.Next(true)
		if tok == "" {
			break
		}
		keyword := lefdef.Lookup(tok, sectionKeys)
		if keyword < 0 {
			p.diag.Warn(p.tok.Line, "Unknown keyword \"%s\" in LEF file; ignoring.\n", tok)
			p.tok.EndStatement()
			continue
		}
		switch keyword {
		case secVersion, secBusBitChars, secDividerChar, secClearanceMeasure,
			secUseMinSpacing, secNamesCaseSensitive, secNoWireExtensionAtPin:
			p.tok.EndStatement()

		case secManufacturingGrid:
			if grid, ok := parseFloat(p.tok.Next(true)); ok && grid > 0 {
				precision = int(1.0/grid + 0.5)
			}
			p.tok.EndStatement()

		case secPropertyDefs, secUnits, secSpacing, secNoiseTable,
			secCorrectionTable, secIRDrop, secArray, secTiming, secExtension:
			p.tok.SkipSection(p.diag, sectionKeys[keyword])

		case secNonDefaultRule, secSite:
			name := p.tok.Next(true)
			p.tok.SkipSection(p.diag, name)

		case secProperty:
			p.tok.SkipSection(p.diag, "")

		case secVia:
			name := p.tok.Next(true)
			lefl := p.reg.FindLayer(name)
			if lefl == nil {
				lefl = p.reg.NewVia(name)
			} else {
				p.diag.Warn(p.tok.Line, "Warning:  Cut type \"%s\" redefined.\n", name)
				lefl = p.reg.Redefine(lefl, name)
			}
			p.readLayerSection(name, modeVia, lefl)

		case secViaRule:
			name := p.tok.Next(true)
			// Only generate rules carry usable geometry; anything
			// else in a VIARULE section is skipped whole.
			if p.tok.Next(true) == "GENERATE" {
				lefl := p.reg.NewVia(name + "_0")
				p.readLayerSection(name, modeViaRule, lefl)
			} else {
				p.tok.SkipSection(p.diag, name)
			}

		case secLayer:
			name := p.tok.Next(true)
			lefl := p.reg.FindLayer(name)
			if lefl == nil {
				lefl = p.reg.NewRoute(name)
			} else if lefl.Index < 0 {
				p.diag.Error(p.tok.Line, "Layer %s is only defined for obstructions!\n", name)
				p.tok.SkipSection(p.diag, name)
				continue
			}
			p.readLayerSection(name, modeLayer, lefl)

		case secMacro:
			p.readMacro(p.tok.Next(true))

		case secEnd:
			if p.tok.ParseEndStatement(p.diag, "LIBRARY") {
				return precision
			}
			p.diag.Error(p.tok.Line, "END statement out of context.\n")
		}
	}
	return precision
}

// finish runs the post-read steps: the diagnostics report, the "pin"
// pseudo-macro used by design-file PINS, rotated variants of the
// generate-rule vias, and the via selection heuristic.
func (p *parser) finish(allowedVias []string) {
	p.diag.Report()

	if m := p.reg.FindMacro("pin"); m != nil {
		p.reg.PinMacro = m
	} else {
		pin := &tech.Macro{Name: "pin"}
		pin.Pins = append(pin.Pins, tech.Pin{
			Name: "pin",
			Taps: []geometry.Rect{{}},
		})
		p.reg.AddMacro(pin)
		p.reg.PinMacro = pin
	}

	p.reg.SynthesizeRotatedVias(p.diag, p.tok.Line)
	p.reg.AssignLayerVias(allowedVias, p.diag, p.tok.Line)
}
