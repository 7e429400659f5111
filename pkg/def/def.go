// Package def reads design files into a layout.Database: die area and
// track grids, placed components, top-level pins, and nets with their
// pre-existing routes.  The technology registry must already be loaded;
// the reader treats it as read-only except for composite via
// definitions and the global pitch minima.  Parsing is permissive in
// the same way as the technology reader: malformed statements are
// counted and reported while the reader resynchronizes.
package def

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/layout"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/lef"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/lefdef"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/tech"
)

// Reader parses design files into a database.
type Reader struct {
	Reg *tech.Registry
	DB  *layout.Database

	// Power and Ground name the nets that take the reserved power and
	// ground net numbers.  Empty names match nothing.
	Power  string
	Ground string

	// Diag accumulates errors and warnings.  Left nil, a default set
	// prefixed "DEF" and reporting to stdout is installed.
	Diag *lefdef.Diagnostics

	// Scale is the UNITS distance scale of the last parsed file, for
	// converting routed output back to file coordinates.
	Scale float64

	// NumSpecial counts the fixed special nets of the last parsed
	// file, the nets to be copied verbatim from input to output.
	NumSpecial int
}

func NewReader(reg *tech.Registry, db *layout.Database) *Reader {
	return &Reader{Reg: reg, DB: db, Diag: &lefdef.Diagnostics{Prefix: "DEF"}}
}

// Read parses one design file into db with default diagnostics,
// returning the number of fatal errors encountered.
func Read(reg *tech.Registry, db *layout.Database, path string) (int, error) {
	return NewReader(reg, db).ReadFile(path)
}

// Top-level section keywords, in lookup-table order.
const (
	secVersion = iota
	secNamesCaseSensitive
	secUnits
	secDesign
	secRegions
	secRow
	secTracks
	secGCellGrid
	secDividerChar
	secBusBitChars
	secPropertyDefs
	secDefaultCap
	secTechnology
	secHistory
	secDieArea
	secComponents
	secVias
	secPins
	secPinProperties
	secSpecialNets
	secNets
	secIOTimings
	secScanChains
	secBlockages
	secConstraints
	secGroups
	secExtension
	secEnd
)

var sectionKeys = []string{
	"VERSION",
	"NAMESCASESENSITIVE",
	"UNITS",
	"DESIGN",
	"REGIONS",
	"ROW",
	"TRACKS",
	"GCELLGRID",
	"DIVIDERCHAR",
	"BUSBITCHARS",
	"PROPERTYDEFINITIONS",
	"DEFAULTCAP",
	"TECHNOLOGY",
	"HISTORY",
	"DIEAREA",
	"COMPONENTS",
	"VIAS",
	"PINS",
	"PINPROPERTIES",
	"SPECIALNETS",
	"NETS",
	"IOTIMINGS",
	"SCANCHAINS",
	"BLOCKAGES",
	"CONSTRAINTS",
	"GROUPS",
	"BEGINEXT",
	"END",
}

// ReadFile opens and parses a design file.  A path without a dot gets
// ".def" appended.  The returned count is the number of fatal errors;
// the caller decides whether a nonzero count invalidates the load.
func (rd *Reader) ReadFile(path string) (int, error) {
	if !strings.ContainsRune(path, '.') {
		path += ".def"
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("cannot open input file: %w", err)
	}
	defer f.Close()
	return rd.Parse(f), nil
}

// Parse reads design data from r.  See ReadFile.
func (rd *Reader) Parse(r io.Reader) int {
	if rd.Diag == nil {
		rd.Diag = &lefdef.Diagnostics{Prefix: "DEF"}
	}
	p := &parser{
		tok:    lefdef.NewTokenizer(r),
		diag:   rd.Diag,
		reg:    rd.Reg,
		db:     rd.DB,
		oscale: 1.0,
		vddnet: rd.Power,
		gndnet: rd.Ground,
		netidx: layout.MinNetNumber,
	}
	p.run()
	rd.Scale = p.oscale
	rd.NumSpecial = p.numSpecial
	return p.errFatal
}

type parser struct {
	tok  *lefdef.Tokenizer
	diag *lefdef.Diagnostics
	reg  *tech.Registry
	db   *layout.Database

	oscale float64
	vddnet string
	gndnet string

	netidx     int
	numSpecial int
	errFatal   int

	// trackLayer carries the TRACKS layer across statements that omit
	// the LAYER clause; corient likewise carries the axis.
	trackLayer int
	corient    byte

	// Grid extent and per-layer keepout halo, fixed once the first
	// connectivity section is reached.
	home               []float64
	numChanX, numChanY int
}

func parseFloat(tok string) (float64, bool) {
	v, err := strconv.ParseFloat(tok, 64)
	return v, err == nil
}

// sectionTotal reads the declared record count heading a section.
func (p *parser) sectionTotal() int {
	total, err := strconv.Atoi(p.tok.Next(true))
	if err != nil {
		total = 0
	}
	p.tok.EndStatement()
	return total
}

// run drives the top-level section loop.
func (p *parser) run() {
	p.trackLayer = -1
	p.corient = '.'
	var dieX1, dieY1, dieX2, dieY2 float64

	for {
		tok := p.tok.Next(true)
		if tok == "" {
			break
		}
		keyword := lefdef.Lookup(tok, sectionKeys)
		if keyword < 0 {
			p.diag.Warn(p.tok.Line, "Unknown keyword \"%s\" in DEF file; ignoring.\n", tok)
			p.tok.EndStatement()
			continue
		}
		if keyword != secTracks {
			p.corient = '.'
		}

		switch keyword {
		case secVersion, secNamesCaseSensitive, secRow, secGCellGrid,
			secDividerChar, secBusBitChars, secHistory:
			p.tok.EndStatement()

		case secDesign, secTechnology:
			p.tok.Next(true)
			p.tok.EndStatement()

		case secUnits:
			// UNITS DISTANCE MICRONS <scale>
			p.tok.Next(true)
			p.tok.Next(true)
			dscale, err := strconv.Atoi(p.tok.Next(true))
			if err != nil {
				p.diag.Error(p.tok.Line, "Invalid syntax for UNITS statement.\n")
				p.diag.Warn(p.tok.Line, "Assuming default value of 100\n")
				dscale = 100
			}
			p.oscale *= float64(dscale)
			p.tok.EndStatement()

		case secDieArea:
			if r, ok := lef.ReadRect(p.tok, p.diag, p.reg, 0, p.oscale); ok {
				dieX1, dieY1 = r.X1, r.Y1
				dieX2, dieY2 = r.X2, r.Y2
				// Seed the bounds at the midpoint so TRACKS
				// statements can widen them.
				p.db.XLower = (r.X1 + r.X2) / 2
				p.db.YLower = (r.Y1 + r.Y2) / 2
				p.db.XUpper = p.db.XLower
				p.db.YUpper = p.db.YLower
			}
			p.tok.EndStatement()

		case secTracks:
			p.readTracks()

		case secRegions, secPropertyDefs, secDefaultCap, secPinProperties,
			secIOTimings, secScanChains, secConstraints, secGroups, secExtension:
			p.tok.SkipSection(p.diag, sectionKeys[keyword])

		case secComponents:
			p.errFatal += p.readComponents(sectionKeys[keyword], p.sectionTotal())

		case secBlockages:
			p.readBlockages(sectionKeys[keyword], p.sectionTotal())

		case secVias:
			p.readVias(sectionKeys[keyword], p.sectionTotal())

		case secPins:
			p.readPins(sectionKeys[keyword], p.sectionTotal())

		case secSpecialNets:
			p.numSpecial = p.readNets(sectionKeys[keyword], true, p.sectionTotal())

		case secNets:
			p.readNets(sectionKeys[keyword], false, p.sectionTotal())

		case secEnd:
			if p.tok.ParseEndStatement(p.diag, "DESIGN") {
				p.finish(dieX1, dieY1, dieX2, dieY2)
				return
			}
			p.diag.Error(p.tok.Line, "END statement out of context.\n")
		}
	}
	p.finish(dieX1, dieY1, dieX2, dieY2)
}

func (p *parser) finish(dieX1, dieY1, dieX2, dieY2 float64) {
	p.diag.Report()

	// With no TRACKS statements the bounds are still parked at the die
	// midpoint; fall back to the die rectangle.
	if p.db.XLower == p.db.XUpper {
		p.db.XLower = dieX1
		p.db.XUpper = dieX2
	}
	if p.db.YLower == p.db.YUpper {
		p.db.YLower = dieY1
		p.db.YUpper = dieY2
	}
}

// readTracks handles one TRACKS statement: per-layer track origin,
// count, and pitch, plus the global pitch minima and routing bounds.
func (p *parser) readTracks() {
	tok := p.tok.Next(true)
	if len(tok) != 1 {
		p.diag.Error(p.tok.Line, "Problem parsing track orientation (X or Y).\n")
	}
	if tok != "" {
		p.corient = strings.ToLower(tok)[0]
	}
	start, ok := parseFloat(p.tok.Next(true))
	if !ok {
		p.diag.Error(p.tok.Line, "Problem parsing track start position.\n")
		p.errFatal++
	}
	if p.tok.Next(true) != "DO" {
		p.diag.Error(p.tok.Line, "TRACKS missing DO loop.\n")
		p.errFatal++
	}
	channels, err := strconv.Atoi(p.tok.Next(true))
	if err != nil {
		p.diag.Error(p.tok.Line, "Problem parsing number of track channels.\n")
		p.errFatal++
	}
	if p.tok.Next(true) != "STEP" {
		p.diag.Error(p.tok.Line, "TRACKS missing STEP size.\n")
		p.errFatal++
	}
	step, ok := parseFloat(p.tok.Next(true))
	if !ok {
		p.diag.Error(p.tok.Line, "Problem parsing track step size.\n")
		p.errFatal++
	}
	if p.tok.Next(true) == "LAYER" {
		p.trackLayer = lef.ReadLayer(p.tok, p.diag, p.reg)
	}
	if p.trackLayer < 0 {
		p.diag.Error(p.tok.Line, "Failed to read layer; cannot parse TRACKS.")
		p.tok.EndStatement()
		return
	}
	if p.trackLayer >= p.reg.NumLayers() {
		p.diag.Warn(p.tok.Line, "Ignoring TRACKS above number of specified route layers.")
		p.tok.EndStatement()
		return
	}
	if p.db.Tracks[p.trackLayer] != nil {
		p.diag.Error(p.tok.Line, "Only one TRACKS line per layer allowed; last one is used.")
	}
	p.db.Tracks[p.trackLayer] = &layout.TrackInfo{
		Start: start / p.oscale,
		Count: channels,
		Pitch: step / p.oscale,
	}

	locpitch := step / p.oscale
	lower := start / p.oscale
	upper := (start + step*float64(channels)) / p.oscale
	if p.corient == 'x' {
		p.db.Vertical[p.trackLayer] = true
		if p.reg.PitchX == 0 || locpitch < p.reg.PitchX {
			p.reg.PitchX = locpitch
		}
		if lower < p.db.XLower {
			p.db.XLower = lower
		}
		if upper > p.db.XUpper {
			p.db.XUpper = upper
		}
	} else {
		p.db.Vertical[p.trackLayer] = false
		if p.reg.PitchY == 0 || locpitch < p.reg.PitchY {
			p.reg.PitchY = locpitch
		}
		if lower < p.db.YLower {
			p.db.YLower = lower
		}
		if upper > p.db.YUpper {
			p.db.YUpper = upper
		}
	}
	p.tok.EndStatement()
}

// ensureGrid fixes the routing grid extent and the per-layer keepout
// halo once, before the first connectivity section is processed.  The
// halo must match the one used when gate terminals are analyzed.
func (p *parser) ensureGrid() {
	if p.home != nil {
		return
	}
	p.numChanX = p.db.NumChannelsX(p.reg.PitchX)
	p.numChanY = p.db.NumChannelsY(p.reg.PitchY)
	n := p.reg.NumLayers()
	p.home = make([]float64, n)
	for i := 0; i < n; i++ {
		p.home[i] = p.reg.ViaWidth(i, i, 0)/2.0 + p.reg.RouteSpacing(i)
	}
}

// Per-record section keys shared by VIAS, BLOCKAGES, COMPONENTS, PINS,
// NETS, and SPECIALNETS.
var recordKeys = []string{
	"-",
	"END",
}

const (
	recStart = iota
	recEnd
)

// readVias reads a VIAS section.  Composite vias defined in the design
// file are entered into the registry exactly like technology vias, so
// routes can reference them by name.
func (p *parser) readVias(sname string, total int) {
	processed := 0

	for {
		tok := p.tok.Next(true)
		if tok == "" {
			break
		}
		keyword := lefdef.Lookup(tok, recordKeys)
		if keyword < 0 {
			p.diag.Warn(p.tok.Line, "Unknown keyword \"%s\" in VIAS definition; ignoring.\n", tok)
			p.tok.EndStatement()
			continue
		}
		switch keyword {
		case recStart:
			processed++
			vianame := p.tok.Next(true)
			if vianame == "" || vianame == ";" {
				p.diag.Error(p.tok.Line, "Bad via statement:  Need via name\n")
				p.tok.EndStatement()
				continue
			}
			lefl := p.reg.FindLayer(vianame)
			if lefl == nil {
				lefl = p.reg.NewVia(vianame)
			} else {
				p.diag.Warn(p.tok.Line, "Warning:  Composite via \"%s\" redefined.\n", vianame)
				lefl = p.reg.Redefine(lefl, vianame)
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
				if tok != "RECT" {
					p.diag.Warn(p.tok.Line, "Unknown via property \"%s\" in VIAS definition; ignoring.\n", tok)
					continue
				}
				curlayer := lef.ReadLayer(p.tok, p.diag, p.reg)
				lef.AddViaGeometry(p.tok, p.diag, p.reg, lefl, curlayer, p.oscale)
			}

		case recEnd:
			if p.tok.ParseEndStatement(p.diag, sname) {
				p.countCheck("vias", processed, total)
				return
			}
			p.diag.Error(p.tok.Line, "Vias END statement missing.\n")
		}
	}
	p.countCheck("vias", processed, total)
}

// readBlockages reads a BLOCKAGES section into the free obstruction
// list.
func (p *parser) readBlockages(sname string, total int) {
	processed := 0

	for {
		tok := p.tok.Next(true)
		if tok == "" {
			break
		}
		keyword := lefdef.Lookup(tok, recordKeys)
		if keyword < 0 {
			p.diag.Warn(p.tok.Line, "Unknown keyword \"%s\" in BLOCKAGE definition; ignoring.\n", tok)
			p.tok.EndStatement()
			continue
		}
		switch keyword {
		case recStart:
			processed++
			tok = p.tok.Next(true)
			if p.reg.FindLayer(tok) == nil {
				p.diag.Error(p.tok.Line, "Bad blockage statement:  Need layer name\n")
				p.tok.EndStatement()
				continue
			}
			for _, r := range lef.ReadGeometry(p.tok, p.diag, p.reg, p.oscale) {
				p.db.AddObstruction(r)
			}

		case recEnd:
			if p.tok.ParseEndStatement(p.diag, sname) {
				p.countCheck("blockages", processed, total)
				return
			}
			p.diag.Error(p.tok.Line, "Blockage END statement missing.\n")
		}
	}
	p.countCheck("blockages", processed, total)
}

// countCheck warns when a section's parsed record count disagrees with
// the declared one.
func (p *parser) countCheck(what string, processed, total int) {
	if processed != total {
		p.diag.Warn(p.tok.Line, "Warning:  Number of %s read (%d) does not match "+
			"the number declared (%d).\n", what, processed, total)
	}
}
