package tech

import (
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/lefdef"
)

// addVia registers a via with the given half-extents (stored doubled) on
// its base and top metal layers.
func addVia(reg *Registry, name string, base int, bw, bh, tw, th float64, gen bool) *Layer {
	v := reg.NewVia(name)
	v.Via.Generated = gen
	v.Via.Area = geometry.Rect{Layer: -1, X1: -0.1, Y1: -0.1, X2: 0.1, Y2: 0.1}
	v.Via.LR = []geometry.Rect{
		{Layer: base, X1: -bw, Y1: -bh, X2: bw, Y2: bh},
		{Layer: base + 1, X1: -tw, Y1: -th, X2: tw, Y2: th},
	}
	return v
}

func testDiag() *lefdef.Diagnostics {
	return &lefdef.Diagnostics{Prefix: "LEF", Out: &strings.Builder{}}
}

func twoLayerRegistry() *Registry {
	reg := NewRegistry()
	reg.PitchX = 0.5
	reg.PitchY = 0.5
	addRoute(reg, "M1", 0, 0.2, 0.2, 0.5)
	addRoute(reg, "M2", 1, 0.2, 0.2, 0.5)
	return reg
}

func TestAssignElongatedVias(t *testing.T) {
	reg := twoLayerRegistry()
	addVia(reg, "via12_XX", 0, 0.3, 0.2, 0.3, 0.2, false)
	addVia(reg, "via12_XY", 0, 0.3, 0.2, 0.2, 0.3, false)
	addVia(reg, "via12_YX", 0, 0.2, 0.3, 0.3, 0.2, false)
	addVia(reg, "via12_YY", 0, 0.2, 0.3, 0.2, 0.3, false)
	reg.AssignLayerVias(nil, testDiag(), 0)

	v := reg.Vias[0]
	if v == nil {
		t.Fatal("no slots assigned for base layer 0")
	}
	if v.XX != "via12_XX" || v.XY != "via12_XY" || v.YX != "via12_YX" || v.YY != "via12_YY" {
		t.Fatalf("slots = %+v", v)
	}
}

func TestAssignAllSlotsFromSquareVia(t *testing.T) {
	// One square via must populate all four slots.
	reg := twoLayerRegistry()
	addVia(reg, "via12", 0, 0.25, 0.25, 0.25, 0.25, false)
	reg.AssignLayerVias(nil, testDiag(), 0)

	v := reg.Vias[0]
	if v == nil {
		t.Fatal("no slots assigned")
	}
	for _, name := range []string{v.XX, v.XY, v.YX, v.YY} {
		if name != "via12" {
			t.Fatalf("slots = %+v, want via12 in all four", v)
		}
	}
}

func TestAssignBackfillsEmptySlots(t *testing.T) {
	// Only an XX-elongated via exists; the other slots back-fill from it.
	reg := twoLayerRegistry()
	addVia(reg, "via12", 0, 0.3, 0.2, 0.3, 0.2, false)
	reg.AssignLayerVias(nil, testDiag(), 0)

	v := reg.Vias[0]
	if v == nil {
		t.Fatal("no slots assigned")
	}
	for _, name := range []string{v.XX, v.XY, v.YX, v.YY} {
		if name != "via12" {
			t.Fatalf("slots = %+v, want back-filled via12", v)
		}
	}
}

func TestAssignPrefersGeneratedVias(t *testing.T) {
	reg := twoLayerRegistry()
	addVia(reg, "via12_fixed", 0, 0.3, 0.2, 0.3, 0.2, false)
	addVia(reg, "via12_0", 0, 0.3, 0.2, 0.3, 0.2, true)
	reg.AssignLayerVias(nil, testDiag(), 0)

	if v := reg.Vias[0]; v.XX != "via12_0" {
		t.Fatalf("XX = %q, want generated via12_0", v.XX)
	}
}

func TestAssignAllowListWins(t *testing.T) {
	reg := twoLayerRegistry()
	addVia(reg, "via12_fixed", 0, 0.3, 0.2, 0.3, 0.2, false)
	addVia(reg, "via12_0", 0, 0.3, 0.2, 0.3, 0.2, true)
	reg.AssignLayerVias([]string{"via12_fixed"}, testDiag(), 0)

	if v := reg.Vias[0]; v.XX != "via12_fixed" {
		t.Fatalf("XX = %q, want allow-listed via12_fixed", v.XX)
	}
}

func TestAssignWarnsNonContiguousLayers(t *testing.T) {
	reg := NewRegistry()
	reg.PitchX = 0.5
	reg.PitchY = 0.5
	addRoute(reg, "M1", 0, 0.2, 0.2, 0.5)
	addRoute(reg, "M2", 1, 0.2, 0.2, 0.5)
	addRoute(reg, "M3", 2, 0.2, 0.2, 0.5)
	v := reg.NewVia("stack13")
	v.Via.Area = geometry.Rect{Layer: -1, X1: -0.1, Y1: -0.1, X2: 0.1, Y2: 0.1}
	v.Via.LR = []geometry.Rect{
		{Layer: 0, X1: -0.3, Y1: -0.2, X2: 0.3, Y2: 0.2},
		{Layer: 2, X1: -0.3, Y1: -0.2, X2: 0.3, Y2: 0.2},
	}
	var out strings.Builder
	diag := &lefdef.Diagnostics{Prefix: "LEF", Out: &out}
	reg.AssignLayerVias(nil, diag, 0)
	if diag.Warnings() == 0 || !strings.Contains(out.String(), "non-contiguous") {
		t.Fatalf("expected non-contiguous warning, got %q", out.String())
	}
}

func TestViaWidthUsesStoredDoubledDims(t *testing.T) {
	reg := twoLayerRegistry()
	addVia(reg, "via12", 0, 0.3, 0.2, 0.3, 0.2, false)
	reg.AssignLayerVias(nil, testDiag(), 0)

	if got := reg.ViaWidth(0, 0, 0); got != 0.3 {
		t.Errorf("base X width = %v, want 0.3", got)
	}
	if got := reg.ViaWidth(0, 0, 1); got != 0.2 {
		t.Errorf("base Y width = %v, want 0.2", got)
	}
	if got := reg.ViaWidth(0, 1, 0); got != 0.3 {
		t.Errorf("top X width = %v, want 0.3", got)
	}
}

func TestSynthesizeRotatedVias(t *testing.T) {
	reg := twoLayerRegistry()
	addVia(reg, "via12_0", 0, 0.3, 0.2, 0.3, 0.2, true)
	reg.SynthesizeRotatedVias(testDiag(), 0)

	rot := reg.FindLayer("via12_1")
	if rot == nil {
		t.Fatal("rotated via via12_1 not created")
	}
	if !rot.Via.Generated {
		t.Fatal("rotated via not marked generated")
	}
	// Both metal rects were non-square, so the mixed variants exist too.
	if reg.FindLayer("via12_2") == nil || reg.FindLayer("via12_3") == nil {
		t.Fatal("mixed-orientation variants not created")
	}
	// The rotated copy swaps X and Y extents.
	var base geometry.Rect
	for _, r := range rot.Via.LR {
		if r.Layer == 0 {
			base = r
		}
	}
	if base.Width() != 0.4 || base.Height() != 0.6 {
		t.Fatalf("rotated base rect %vx%v, want 0.4x0.6", base.Width(), base.Height())
	}
}

func TestSynthesizeEnforcesMinMetalWidth(t *testing.T) {
	// Metal enclosures thinner than twice the route width are widened.
	reg := twoLayerRegistry()
	v := addVia(reg, "via12_0", 0, 0.05, 0.3, 0.3, 0.3, true)
	reg.SynthesizeRotatedVias(testDiag(), 0)

	r := v.Via.LR[0]
	if r.Width() != 0.4 {
		t.Fatalf("base rect width = %v, want widened to 0.4", r.Width())
	}
}
