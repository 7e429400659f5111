package def

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/layout"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/lef"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/lefdef"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/tech"
)

// Two route layers at 1.0 pitch, one via, one inverter cell.
const designLEF = `
VERSION 5.6 ;
NAMESCASESENSITIVE ON ;
LAYER metal1
  TYPE ROUTING ;
  WIDTH 0.4 ;
  SPACING 0.2 ;
  PITCH 1.0 ;
  DIRECTION HORIZONTAL ;
END metal1
LAYER via1
  TYPE CUT ;
END via1
LAYER metal2
  TYPE ROUTING ;
  WIDTH 0.4 ;
  SPACING 0.2 ;
  PITCH 1.0 ;
  DIRECTION VERTICAL ;
END metal2
VIA via12 DEFAULT
  LAYER via1 ;
  RECT -0.2 -0.2 0.2 0.2 ;
  LAYER metal1 ;
  RECT -0.3 -0.3 0.3 0.3 ;
  LAYER metal2 ;
  RECT -0.3 -0.3 0.3 0.3 ;
END via12
MACRO INVX1
  CLASS CORE ;
  ORIGIN 0 0 ;
  SIZE 2.0 BY 2.0 ;
  PIN A
    DIRECTION INPUT ;
    USE SIGNAL ;
    PORT
      LAYER metal1 ;
      RECT 0.8 0.8 1.2 1.2 ;
    END
  END A
  PIN Z
    DIRECTION OUTPUT ;
    PORT
      LAYER metal1 ;
      RECT 0.3 0.3 0.7 0.7 ;
    END
  END Z
END INVX1
END LIBRARY
`

const defHeader = `
VERSION 5.6 ;
DESIGN top ;
UNITS DISTANCE MICRONS 100 ;
DIEAREA ( 0 0 ) ( 2000 2000 ) ;
TRACKS Y 0 DO 20 STEP 100 LAYER metal1 ;
TRACKS X 0 DO 20 STEP 100 LAYER metal2 ;
`

// parseDesign loads the fixture technology and parses one design on
// top of it, with power and ground bound to vdd and gnd.
func parseDesign(t *testing.T, defSrc string) (*tech.Registry, *layout.Database, *Reader, *strings.Builder, int) {
	t.Helper()

	reg := tech.NewRegistry()
	lefOut := &strings.Builder{}
	lefRd := &lef.Reader{Reg: reg, Diag: &lefdef.Diagnostics{Prefix: "LEF", Out: lefOut}}
	lefRd.Parse(strings.NewReader(designLEF))
	if lefOut.Len() > 0 {
		t.Fatalf("technology fixture diagnostics:\n%s", lefOut)
	}

	db := layout.NewDatabase(false)
	out := &strings.Builder{}
	rd := &Reader{
		Reg:    reg,
		DB:     db,
		Power:  "vdd",
		Ground: "gnd",
		Diag:   &lefdef.Diagnostics{Prefix: "DEF", Out: out},
	}
	fatal := rd.Parse(strings.NewReader(defSrc))
	return reg, db, rd, out, fatal
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestReadDesign(t *testing.T) {
	src := defHeader + `
COMPONENTS 2 ;
- u1 INVX1 + PLACED ( 0 0 ) N ;
- u2 INVX1 + PLACED ( 400 400 ) FS ;
END COMPONENTS
PINS 1 ;
- in1 + NET input1 + DIRECTION INPUT + USE SIGNAL
  + LAYER metal1 ( -30 -30 ) ( 30 30 ) + PLACED ( 1000 1600 ) N ;
END PINS
NETS 2 ;
- input1 ( pin input1 ) ( u1 A )
  + ROUTED metal1 ( 0 800 ) ( 1000 * )
    NEW metal1 ( 1000 800 ) ( 1000 1600 ) ;
- w1 ( u1 Z ) ( u2 Z ) ;
END NETS
END DESIGN
`
	reg, db, rd, out, fatal := parseDesign(t, src)
	if fatal != 0 {
		t.Fatalf("fatal = %d, want 0", fatal)
	}
	if out.Len() > 0 {
		t.Fatalf("unexpected diagnostics:\n%s", out)
	}
	if rd.Scale != 100 {
		t.Errorf("Scale = %v, want 100", rd.Scale)
	}

	// TRACKS set the routing area, the grid pitch, and the per-layer
	// track records.
	if db.XLower != 0 || db.XUpper != 20 || db.YLower != 0 || db.YUpper != 20 {
		t.Errorf("bounds = (%v %v) (%v %v), want (0 0) (20 20)",
			db.XLower, db.YLower, db.XUpper, db.YUpper)
	}
	if reg.PitchX != 1 || reg.PitchY != 1 {
		t.Errorf("pitch = %v x %v, want 1 x 1", reg.PitchX, reg.PitchY)
	}
	if db.Vertical[0] || !db.Vertical[1] {
		t.Errorf("Vertical = %v, want metal2 only", db.Vertical)
	}
	wantTrack := &layout.TrackInfo{Start: 0, Count: 20, Pitch: 1}
	if diff := cmp.Diff(wantTrack, db.Tracks[0], approx); diff != "" {
		t.Errorf("Tracks[0] mismatch (-want +got):\n%s", diff)
	}

	if len(db.Gates) != 3 {
		t.Fatalf("len(Gates) = %d, want 3", len(db.Gates))
	}

	u1 := db.FindGate("u1")
	if u1 == nil {
		t.Fatal("gate u1 not found")
	}
	wantA := []geometry.Rect{{Layer: 0, X1: 0.8, Y1: 0.8, X2: 1.2, Y2: 1.2}}
	if diff := cmp.Diff(wantA, u1.Taps[0], approx); diff != "" {
		t.Errorf("u1/A taps mismatch (-want +got):\n%s", diff)
	}
	if u1.Netnums[0] != layout.MinNetNumber {
		t.Errorf("u1/A netnum = %d, want %d", u1.Netnums[0], layout.MinNetNumber)
	}

	// FS flips u2 about its own Y midline before translation.
	u2 := db.FindGate("u2")
	wantZ := []geometry.Rect{{Layer: 0, X1: 4.3, Y1: 5.3, X2: 4.7, Y2: 5.7}}
	if diff := cmp.Diff(wantZ, u2.Taps[1], approx); diff != "" {
		t.Errorf("u2/Z taps mismatch (-want +got):\n%s", diff)
	}

	// The top-level pin is a degenerate gate named after its net.
	pg := db.FindGate("input1")
	if pg == nil {
		t.Fatal("pin gate input1 not found")
	}
	if pg.Macro != reg.PinMacro {
		t.Error("pin gate not on the pin pseudo-macro")
	}
	if pg.Directions[0] != tech.PortClassInput {
		t.Errorf("pin direction = %v, want input", pg.Directions[0])
	}
	wantTap := []geometry.Rect{{Layer: 0, X1: 9.8, Y1: 15.8, X2: 10.2, Y2: 16.2}}
	if diff := cmp.Diff(wantTap, pg.Taps[0], approx); diff != "" {
		t.Errorf("pin tap mismatch (-want +got):\n%s", diff)
	}

	net := db.FindNet("input1")
	if net == nil {
		t.Fatal("net input1 not found")
	}
	if net.Number != layout.MinNetNumber {
		t.Errorf("input1 number = %d, want %d", net.Number, layout.MinNetNumber)
	}
	if net.NumNodes != 2 || len(net.Nodes) != 2 {
		t.Fatalf("input1 nodes = %d/%d, want 2/2", len(net.Nodes), net.NumNodes)
	}
	// Nodes are prepended as read: the gate connection first, then the
	// pin connection.
	if net.Nodes[0].Num != 1 || net.Nodes[1].Num != 0 {
		t.Errorf("node order = %d,%d, want 1,0", net.Nodes[0].Num, net.Nodes[1].Num)
	}
	for _, node := range net.Nodes {
		if node.NumNodes != 2 {
			t.Errorf("node %d NumNodes = %d, want 2", node.Num, node.NumNodes)
		}
		if node.Netnum != net.Number || node.Netname != "input1" {
			t.Errorf("node %d net identity = %d/%q", node.Num, node.Netnum, node.Netname)
		}
	}
	wantTaps := []layout.GridPoint{{Layer: 0, X: 1, Y: 1, GridX: 1, GridY: 1}}
	if diff := cmp.Diff(wantTaps, net.Nodes[0].Taps, approx); diff != "" {
		t.Errorf("u1/A grid taps mismatch (-want +got):\n%s", diff)
	}
	wantTaps = []layout.GridPoint{{Layer: 0, X: 10, Y: 16, GridX: 10, GridY: 16}}
	if diff := cmp.Diff(wantTaps, net.Nodes[1].Taps, approx); diff != "" {
		t.Errorf("pin grid taps mismatch (-want +got):\n%s", diff)
	}

	// Two NEW-delimited paths, segments in input order, the "*"
	// wildcard reusing the prior Y.
	wantRoutes := []*layout.Route{
		{Netnum: 3, Segments: []layout.Segment{{Layer: 0, X1: 0, Y1: 8, X2: 10, Y2: 8}}},
		{Netnum: 3, Segments: []layout.Segment{{Layer: 0, X1: 10, Y1: 8, X2: 10, Y2: 16}}},
	}
	if diff := cmp.Diff(wantRoutes, net.Routes); diff != "" {
		t.Errorf("routes mismatch (-want +got):\n%s", diff)
	}

	w1 := db.FindNet("w1")
	if w1.Number != layout.MinNetNumber+1 {
		t.Errorf("w1 number = %d, want %d", w1.Number, layout.MinNetNumber+1)
	}
	if w1.NumNodes != 2 {
		t.Errorf("w1 NumNodes = %d, want 2", w1.NumNodes)
	}
	// u1/Z sits between grid points; all four neighbors are within the
	// keepout halo.
	zNode := w1.Nodes[1]
	if len(zNode.Taps) != 0 || len(zNode.Extends) != 4 {
		t.Errorf("u1/Z taps/extends = %d/%d, want 0/4", len(zNode.Taps), len(zNode.Extends))
	}
}

func TestSpecialNetObstructions(t *testing.T) {
	src := defHeader + `
SPECIALNETS 3 ;
- vdd + ROUTED metal1 800 ( 0 400 ) ( 2000 400 ) ;
- blk + FIXED metal2 400 ( 400 0 ) ( 400 2000 ) ;
- sig + ROUTED metal1 0 ( 0 1200 ) ( 2000 1200 ) ;
END SPECIALNETS
END DESIGN
`
	_, db, rd, out, fatal := parseDesign(t, src)
	if fatal != 0 {
		t.Fatalf("fatal = %d, want 0\n%s", fatal, out)
	}

	if n := db.FindNet("vdd").Number; n != layout.VddNet {
		t.Errorf("vdd number = %d, want %d", n, layout.VddNet)
	}
	if !db.FindNet("blk").Ignored {
		t.Error("fixed special net not marked ignored")
	}
	if db.FindNet("sig").Ignored {
		t.Error("routed special net wrongly marked ignored")
	}

	// The power wire and the fixed net leave spacing-expanded
	// obstructions; the plain routed special net leaves nothing.
	want := []geometry.Rect{
		{Layer: 0, X1: -0.2, Y1: -0.2, X2: 20.2, Y2: 8.2},
		{Layer: 1, X1: 1.8, Y1: -0.2, X2: 6.2, Y2: 20.2},
	}
	if diff := cmp.Diff(want, db.Obstructions, approx); diff != "" {
		t.Errorf("obstructions mismatch (-want +got):\n%s", diff)
	}

	// vdd (routed power) and blk (fixed) count as verbatim nets.
	if rd.NumSpecial != 2 {
		t.Errorf("NumSpecial = %d, want 2", rd.NumSpecial)
	}
}

func TestStubRouteRemoval(t *testing.T) {
	src := defHeader + `
NETS 2 ;
- stub + ROUTED metal1 ( 450 400 ) ( 450 500 ) ;
- keep + ROUTED metal1 ( 400 400 ) ( 400 500 ) ;
END NETS
END DESIGN
`
	_, db, _, out, fatal := parseDesign(t, src)
	if fatal != 0 {
		t.Fatalf("fatal = %d, want 0\n%s", fatal, out)
	}

	// The off-grid single-segment one-track route is a stub to a
	// terminal and is dropped; the on-grid one survives.
	if n := len(db.FindNet("stub").Routes); n != 0 {
		t.Errorf("stub routes = %d, want 0", n)
	}
	keep := db.FindNet("keep")
	if len(keep.Routes) != 1 {
		t.Fatalf("keep routes = %d, want 1", len(keep.Routes))
	}
	if keep.Routes[0].Check {
		t.Error("on-grid route flagged for checking")
	}
}

func TestRouteViaSegment(t *testing.T) {
	src := defHeader + `
NETS 1 ;
- v1 + ROUTED metal1 ( 1000 400 ) ( 1200 400 ) via12 ;
END NETS
END DESIGN
`
	_, db, _, out, fatal := parseDesign(t, src)
	if fatal != 0 {
		t.Fatalf("fatal = %d, want 0\n%s", fatal, out)
	}

	net := db.FindNet("v1")
	if len(net.Routes) != 1 {
		t.Fatalf("routes = %d, want 1", len(net.Routes))
	}
	want := []layout.Segment{
		{Layer: 0, X1: 10, Y1: 4, X2: 12, Y2: 4},
		{Via: true, Layer: 0, X1: 12, Y1: 4, X2: 12, Y2: 4},
	}
	if diff := cmp.Diff(want, net.Routes[0].Segments); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
}

func TestCompositeVias(t *testing.T) {
	src := defHeader + `
VIAS 2 ;
- via_custom + RECT via1 ( -100 -100 ) ( 100 100 ) + RECT metal1 ( -150 -150 ) ( 150 150 ) ;
- via12 + RECT via1 ( -200 -200 ) ( 200 200 ) ;
END VIAS
END DESIGN
`
	reg, _, _, out, _ := parseDesign(t, src)

	vc := reg.FindLayer("via_custom")
	if vc == nil || vc.Class != tech.ClassVia {
		t.Fatal("via_custom not registered as a via")
	}
	wantArea := geometry.Rect{Layer: 2, X1: -2, Y1: -2, X2: 2, Y2: 2}
	if diff := cmp.Diff(wantArea, vc.Via.Area, approx); diff != "" {
		t.Errorf("via_custom area mismatch (-want +got):\n%s", diff)
	}
	wantLR := []geometry.Rect{{Layer: 0, X1: -3, Y1: -3, X2: 3, Y2: 3}}
	if diff := cmp.Diff(wantLR, vc.Via.LR, approx); diff != "" {
		t.Errorf("via_custom enclosures mismatch (-want +got):\n%s", diff)
	}
	if vc.Via.Generated {
		t.Error("design-file via marked generated")
	}

	// Redefining a technology via clears its geometry first.
	if !strings.Contains(out.String(), `Composite via "via12" redefined.`) {
		t.Errorf("missing redefinition warning, got:\n%s", out)
	}
	v12 := reg.FindLayer("via12")
	wantArea = geometry.Rect{Layer: 2, X1: -4, Y1: -4, X2: 4, Y2: 4}
	if diff := cmp.Diff(wantArea, v12.Via.Area, approx); diff != "" {
		t.Errorf("via12 area mismatch (-want +got):\n%s", diff)
	}
	if len(v12.Via.LR) != 0 {
		t.Errorf("via12 kept %d stale enclosures", len(v12.Via.LR))
	}
}

func TestBlockages(t *testing.T) {
	src := defHeader + `
BLOCKAGES 2 ;
- metal1
    LAYER metal1 ;
    RECT 100 100 300 300 ;
  END
- bogus ;
END BLOCKAGES
END DESIGN
`
	_, db, _, out, _ := parseDesign(t, src)

	want := []geometry.Rect{{Layer: 0, X1: 1, Y1: 1, X2: 3, Y2: 3}}
	if diff := cmp.Diff(want, db.Obstructions, approx); diff != "" {
		t.Errorf("obstructions mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.String(), "Bad blockage statement:  Need layer name") {
		t.Errorf("missing bad-blockage error, got:\n%s", out)
	}
}

func TestUnknownMacroIsFatal(t *testing.T) {
	src := defHeader + `
COMPONENTS 3 ;
- u1 INVX1 + PLACED ( 0 0 ) N ;
- u9 NOPE + PLACED ( 0 0 ) N ;
END COMPONENTS
END DESIGN
`
	_, db, _, out, fatal := parseDesign(t, src)

	if fatal != 1 {
		t.Errorf("fatal = %d, want 1", fatal)
	}
	if len(db.Gates) != 1 {
		t.Errorf("len(Gates) = %d, want 1", len(db.Gates))
	}
	if !strings.Contains(out.String(), `Could not find a macro definition for "NOPE"`) {
		t.Errorf("missing macro error, got:\n%s", out)
	}
	// Two records against three declared.
	if !strings.Contains(out.String(), "Number of subcells read (2) does not match the number declared (3)") {
		t.Errorf("missing count mismatch warning, got:\n%s", out)
	}
}

func TestPinOutsideRouteLayers(t *testing.T) {
	src := defHeader + `
PINS 1 ;
- p1 + NET n1 + LAYER via1 ( -30 -30 ) ( 30 30 ) + PLACED ( 1000 1000 ) N ;
END PINS
END DESIGN
`
	_, db, _, out, _ := parseDesign(t, src)

	if len(db.Gates) != 0 {
		t.Errorf("len(Gates) = %d, want 0", len(db.Gates))
	}
	if !strings.Contains(out.String(), "Pin p1 is defined outside of route layer area!") {
		t.Errorf("missing pin layer error, got:\n%s", out)
	}
}

func TestUnitsFallback(t *testing.T) {
	src := `
UNITS DISTANCE MICRONS abc ;
DIEAREA ( 0 0 ) ( 2000 2000 ) ;
END DESIGN
`
	_, _, rd, out, _ := parseDesign(t, src)

	if rd.Scale != 100 {
		t.Errorf("Scale = %v, want fallback 100", rd.Scale)
	}
	if !strings.Contains(out.String(), "Invalid syntax for UNITS statement.") ||
		!strings.Contains(out.String(), "Assuming default value of 100") {
		t.Errorf("missing units diagnostics, got:\n%s", out)
	}
}

func TestDieAreaFallbackBounds(t *testing.T) {
	src := `
UNITS DISTANCE MICRONS 100 ;
DIEAREA ( 0 0 ) ( 2000 1000 ) ;
END DESIGN
`
	_, db, _, _, _ := parseDesign(t, src)

	// With no TRACKS to widen the seeded midpoint, the bounds fall
	// back to the die rectangle.
	if db.XLower != 0 || db.XUpper != 20 || db.YLower != 0 || db.YUpper != 10 {
		t.Errorf("bounds = (%v %v) (%v %v), want (0 0) (20 10)",
			db.XLower, db.YLower, db.XUpper, db.YUpper)
	}
}
