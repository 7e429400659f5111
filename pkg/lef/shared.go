package lef

import (
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/lefdef"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/tech"
)

// The design-file format reuses technology-file geometry statements for
// track layer references, composite via definitions, and blockages.
// These wrappers expose the statement readers to the design reader,
// sharing one tokenizer position.

// ReadLayer resolves a layer name token against the registry, -1 when
// the name cannot be mapped to a layer number.
func ReadLayer(tok *lefdef.Tokenizer, diag *lefdef.Diagnostics, reg *tech.Registry) int {
	p := &parser{tok: tok, diag: diag, reg: reg, oscale: 1.0}
	return p.readLayer(false)
}

// ReadRect reads the four coordinates of a RECT statement, dividing
// them by scale.
func ReadRect(tok *lefdef.Tokenizer, diag *lefdef.Diagnostics, reg *tech.Registry,
	curlayer int, scale float64) (geometry.Rect, bool) {
	p := &parser{tok: tok, diag: diag, reg: reg, oscale: scale}
	return p.readRect(curlayer, scale)
}

// ReadGeometry collects the rectangles of a LAYER/RECT/POLYGON block up
// to its END line.
func ReadGeometry(tok *lefdef.Tokenizer, diag *lefdef.Diagnostics, reg *tech.Registry,
	oscale float64) []geometry.Rect {
	p := &parser{tok: tok, diag: diag, reg: reg, oscale: oscale}
	return p.readGeometry()
}

// AddViaGeometry reads one RECT statement into a via record.
func AddViaGeometry(tok *lefdef.Tokenizer, diag *lefdef.Diagnostics, reg *tech.Registry,
	lefl *tech.Layer, curlayer int, oscale float64) {
	p := &parser{tok: tok, diag: diag, reg: reg, oscale: oscale}
	p.addViaGeometry(lefl, curlayer)
}
