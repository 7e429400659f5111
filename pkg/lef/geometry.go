package lef

import (
	"errors"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/lefdef"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/tech"
)

// readLayer resolves a layer name token to a layer number, -1 when the
// name cannot be mapped.  With obstruct set, the obstruction mapping of
// the layer is preferred.  A cut layer referenced here for the first
// time is assigned its number now; by then all route layers have been
// read, so cut numbers stack above them.
func (p *parser) readLayer(obstruct bool) int {
	tok := p.tok.Next(true)
	if tok == "" || tok == ";" {
		p.diag.Error(p.tok.Line, "Bad Layer statement\n")
		return -1
	}

	curlayer := -1
	lefl := p.reg.FindLayer(tok)
	if lefl != nil {
		if obstruct {
			curlayer = lefl.ObsIndex
			if curlayer < 0 && lefl.Class != tech.ClassIgnore {
				curlayer = lefl.Index
			}
		} else if lefl.Class != tech.ClassIgnore {
			curlayer = lefl.Index
		}
	}
	if curlayer < 0 && (lefl == nil || lefl.Class != tech.ClassIgnore) {
		if lefl != nil && lefl.Class == tech.ClassCut {
			curlayer = p.reg.AssignCutIndex(lefl, p.diag, p.tok.Line)
		} else if lefl == nil || lefl.Class != tech.ClassVia {
			p.diag.Error(p.tok.Line, "Don't know how to parse layer \"%s\"\n", tok)
		}
	}
	return curlayer
}

// readPoint reads an x y pair, tolerating optional parentheses.
func (p *parser) readPoint() (x, y float64, ok bool) {
	tok := p.tok.Next(true)
	needMatch := false
	if tok == "(" {
		tok = p.tok.Next(true)
		needMatch = true
	}
	if x, ok = parseFloat(tok); !ok {
		return 0, 0, false
	}
	if y, ok = parseFloat(p.tok.Next(true)); !ok {
		return 0, 0, false
	}
	if needMatch && p.tok.Next(true) != ")" {
		return 0, 0, false
	}
	return x, y, true
}

// readRect reads the four coordinates of a RECT statement.  The format
// does not put parentheses around RECT points, but files exist that do,
// so they are tolerated.  Geometry on an unresolved layer is kept with
// a warning and a negative layer number.
func (p *parser) readRect(curlayer int, scale float64) (geometry.Rect, bool) {
	fail := func() (geometry.Rect, bool) {
		p.diag.Error(p.tok.Line, "Bad port geometry: RECT requires 4 values.\n")
		return geometry.Rect{}, false
	}

	tok := p.tok.Next(true)
	needMatch := false
	if tok == "(" {
		tok = p.tok.Next(true)
		needMatch = true
	}
	llx, ok := parseFloat(tok)
	if !ok {
		return fail()
	}
	lly, ok := parseFloat(p.tok.Next(true))
	if !ok {
		return fail()
	}
	tok = p.tok.Next(true)
	if needMatch {
		if tok != ")" {
			return fail()
		}
		tok = p.tok.Next(true)
		needMatch = false
	}
	if tok == "(" {
		tok = p.tok.Next(true)
		needMatch = true
	}
	urx, ok := parseFloat(tok)
	if !ok {
		return fail()
	}
	ury, ok := parseFloat(p.tok.Next(true))
	if !ok {
		return fail()
	}
	if needMatch && p.tok.Next(true) != ")" {
		return fail()
	}

	if curlayer < 0 {
		p.diag.Warn(p.tok.Line, "No layer defined for RECT.\n")
	}
	return geometry.Rect{
		Layer: curlayer,
		X1:    llx / scale,
		Y1:    lly / scale,
		X2:    urx / scale,
		Y2:    ury / scale,
	}, true
}

// readEnclosure reads the two ENCLOSURE dimensions and returns the
// bounding box they describe, centered on the origin and stored at
// twice the drawn size like all via geometry.
func (p *parser) readEnclosure(curlayer int) (geometry.Rect, bool) {
	x, ok := parseFloat(p.tok.Next(true))
	if !ok {
		p.diag.Error(p.tok.Line, "Bad enclosure geometry: ENCLOSURE requires 2 values.\n")
		return geometry.Rect{}, false
	}
	y, ok := parseFloat(p.tok.Next(true))
	if !ok {
		p.diag.Error(p.tok.Line, "Bad enclosure geometry: ENCLOSURE requires 2 values.\n")
		return geometry.Rect{}, false
	}
	if curlayer < 0 {
		p.diag.Error(p.tok.Line, "No layer defined for RECT.\n")
	}

	scale := p.oscale / 2.0
	return geometry.Rect{
		Layer: curlayer,
		X1:    -x / scale,
		Y1:    -y / scale,
		X2:    x / scale,
		Y2:    y / scale,
	}, true
}

// readPolygon reads POLYGON points up to the statement terminator.  A
// layer number past the route layer count yields no points.
func (p *parser) readPolygon(curlayer int) []geometry.Point {
	if curlayer >= p.reg.NumLayers() {
		return nil
	}

	var pts []geometry.Point
	for {
		tok := p.tok.Next(true)
		if tok == "" || tok == ";" {
			break
		}
		x, ok := parseFloat(tok)
		if !ok {
			p.diag.Error(p.tok.Line, "Bad X value in polygon.\n")
			p.tok.EndStatement()
			break
		}
		tok = p.tok.Next(true)
		if tok == "" || tok == ";" {
			p.diag.Error(p.tok.Line, "Missing Y value in polygon point!\n")
			break
		}
		y, ok := parseFloat(tok)
		if !ok {
			p.diag.Error(p.tok.Line, "Bad Y value in polygon.\n")
			p.tok.EndStatement()
			break
		}
		pts = append(pts, geometry.Point{
			Layer: curlayer,
			X:     x / p.oscale,
			Y:     y / p.oscale,
		})
	}
	return pts
}

// Geometry block keywords, in lookup-table order.
const (
	gkLayer = iota
	gkWidth
	gkPath
	gkRect
	gkPolygon
	gkVia
	gkClass
	gkEnd
)

var geometryKeys = []string{
	"LAYER",
	"WIDTH",
	"PATH",
	"RECT",
	"POLYGON",
	"VIA",
	"CLASS",
	"END",
}

// readGeometry collects the painted rectangles of a PORT or OBS block.
// Polygons are decomposed into rectangles; rects without a current
// layer are dropped.
func (p *parser) readGeometry() []geometry.Rect {
	curlayer := -1
	var rects []geometry.Rect

	for {
		tok := p.tok.Next(true)
		if tok == "" {
			break
		}
		keyword := lefdef.Lookup(tok, geometryKeys)
		if keyword < 0 {
			p.diag.Warn(p.tok.Line, "Unknown keyword \"%s\" in LEF file; ignoring.\n", tok)
			p.tok.EndStatement()
			continue
		}
		switch keyword {
		case gkLayer:
			curlayer = p.readLayer(false)
			p.tok.EndStatement()

		case gkWidth, gkPath, gkVia, gkClass:
			p.tok.EndStatement()

		case gkRect:
			if curlayer >= 0 {
				if r, ok := p.readRect(curlayer, p.oscale); ok {
					rects = append(rects, r)
				}
			}
			p.tok.EndStatement()

		case gkPolygon:
			pts := p.readPolygon(curlayer)
			if len(pts) > 0 {
				rs, err := geometry.DecomposePolygon(pts)
				switch {
				case err == nil:
					rects = append(rects, rs...)
				case errors.Is(err, geometry.ErrTooFewPoints):
					p.diag.Error(p.tok.Line, "Polygon with fewer than 4 points.\n")
				case errors.Is(err, geometry.ErrNonManhattan):
					p.diag.Error(p.tok.Line, "I can't handle non-manhattan polygons!\n")
				}
			}

		case gkEnd:
			if p.tok.ParseEndStatement(p.diag, "") {
				return rects
			}
			p.diag.Error(p.tok.Line, "Geometry (PORT or OBS) END statement missing.\n")
		}
	}
	return rects
}
