package layout

import (
	"fmt"
	"testing"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/tech"
)

func TestFinderImplementationsAgree(t *testing.T) {
	for _, indexed := range []bool{false, true} {
		t.Run(fmt.Sprintf("indexed=%v", indexed), func(t *testing.T) {
			db := NewDatabase(indexed)
			m := &tech.Macro{Name: "INV"}
			db.AddGate(&Gate{Name: "u42", Macro: m})
			db.AddNet(&Net{Name: "clk_in", Number: MinNetNumber})

			if g := db.FindGate("U42"); g == nil || g.Name != "u42" {
				t.Errorf("FindGate(U42) = %v", g)
			}
			if db.FindGate("u43") != nil {
				t.Error("FindGate(u43) should be nil")
			}
			if n := db.FindNet("CLK_IN"); n == nil || n.Number != MinNetNumber {
				t.Errorf("FindNet(CLK_IN) = %v", n)
			}
			if db.FindNet("vdd") != nil {
				t.Error("FindNet(vdd) should be nil")
			}
		})
	}
}

func TestRemoveLastRoute(t *testing.T) {
	n := &Net{Name: "n1", Number: MinNetNumber}
	first := &Route{Netnum: n.Number}
	second := &Route{Netnum: n.Number, Check: true}
	n.AddRoute(first)
	n.AddRoute(second)

	n.RemoveLastRoute()
	if len(n.Routes) != 1 || n.Routes[0] != first {
		t.Fatalf("routes after removal = %v", n.Routes)
	}
	n.RemoveLastRoute()
	n.RemoveLastRoute() // no-op on empty
	if len(n.Routes) != 0 {
		t.Fatalf("routes should be empty, got %d", len(n.Routes))
	}
}

func TestPowerNets(t *testing.T) {
	if !(&Net{Number: VddNet}).Power() || !(&Net{Number: GndNet}).Power() {
		t.Error("reserved numbers must report Power")
	}
	if (&Net{Number: MinNetNumber}).Power() {
		t.Error("regular net must not report Power")
	}
	if MinNetNumber <= VddNet || MinNetNumber <= GndNet {
		t.Error("regular numbering must start above the reserved numbers")
	}
}

func TestPinIndex(t *testing.T) {
	m := &tech.Macro{
		Name: "AND2",
		Pins: []tech.Pin{{Name: "A"}, {Name: "B"}, {Name: "Y"}},
	}
	g := &Gate{Name: "u1", Macro: m}
	if i := g.PinIndex("b"); i != 1 {
		t.Errorf("PinIndex(b) = %d, want 1", i)
	}
	if i := g.PinIndex("Z"); i != -1 {
		t.Errorf("PinIndex(Z) = %d, want -1", i)
	}
}

func TestNumChannels(t *testing.T) {
	db := NewDatabase(false)
	db.XLower, db.XUpper = 0, 50
	db.YLower, db.YUpper = 0, 20
	if got := db.NumChannelsX(0.5); got != 101 {
		t.Errorf("NumChannelsX = %d, want 101", got)
	}
	if got := db.NumChannelsY(0.5); got != 41 {
		t.Errorf("NumChannelsY = %d, want 41", got)
	}
	if got := db.NumChannelsX(0); got != 0 {
		t.Errorf("NumChannelsX with zero pitch = %d, want 0", got)
	}
}

func TestObstructionList(t *testing.T) {
	db := NewDatabase(false)
	db.AddObstruction(geometry.Rect{Layer: 0, X2: 1, Y2: 1})
	db.AddObstruction(geometry.Rect{Layer: 1, X2: 2, Y2: 2})
	if len(db.Obstructions) != 2 || db.Obstructions[1].Layer != 1 {
		t.Fatalf("obstructions = %v", db.Obstructions)
	}
}
