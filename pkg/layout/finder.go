package layout

import "strings"

// Finder resolves gate and net names.  Both implementations give the
// same case-insensitive answers; the index only changes lookup cost.
// It is a derived structure, never a second source of truth.
type Finder interface {
	FindGate(name string) *Gate
	FindNet(name string) *Net

	noteGate(g *Gate)
	noteNet(n *Net)
}

// linearFinder scans the canonical database slices.
type linearFinder struct {
	db *Database
}

func (f *linearFinder) FindGate(name string) *Gate {
	for _, g := range f.db.Gates {
		if strings.EqualFold(g.Name, name) {
			return g
		}
	}
	return nil
}

func (f *linearFinder) FindNet(name string) *Net {
	for _, n := range f.db.Nets {
		if strings.EqualFold(n.Name, name) {
			return n
		}
	}
	return nil
}

func (f *linearFinder) noteGate(*Gate) {}
func (f *linearFinder) noteNet(*Net)   {}

// mapFinder keeps lower-cased name indexes updated at every insertion.
type mapFinder struct {
	gates map[string]*Gate
	nets  map[string]*Net
}

func newMapFinder() *mapFinder {
	return &mapFinder{
		gates: make(map[string]*Gate),
		nets:  make(map[string]*Net),
	}
}

func (f *mapFinder) FindGate(name string) *Gate {
	return f.gates[strings.ToLower(name)]
}

func (f *mapFinder) FindNet(name string) *Net {
	return f.nets[strings.ToLower(name)]
}

func (f *mapFinder) noteGate(g *Gate) {
	f.gates[strings.ToLower(g.Name)] = g
}

func (f *mapFinder) noteNet(n *Net) {
	f.nets[strings.ToLower(n.Name)] = n
}
