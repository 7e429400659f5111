// Package layout holds the design database the router works from: placed
// gates, nets with their terminal nodes and pre-existing routes, track
// grids, and free obstructions.  The technology readers fill it in one
// pass; afterwards it is read-mostly.
package layout

import (
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
)

// Reserved net numbers.  Zero is never a valid net number; regular nets
// are numbered from MinNetNumber up.
const (
	GndNet       = 1
	VddNet       = 2
	MinNetNumber = 3
)

// TrackInfo records one TRACKS statement for a layer.  Layers without a
// record fall back to the global pitch.
type TrackInfo struct {
	Start float64
	Count int
	Pitch float64
}

// Database is the loaded design.  Gates and Nets are append-only; the
// finder index, when enabled, is kept in sync at every insertion.
type Database struct {
	Gates []*Gate
	Nets  []*Net

	// Tracks holds at most one record per route layer.
	Tracks map[int]*TrackInfo
	// Vertical marks layers whose tracks run in X (vertical wires).
	Vertical map[int]bool

	// Obstructions not belonging to any gate: blockages plus
	// spacing-expanded special-net geometry.
	Obstructions []geometry.Rect

	// Routing area bounds in microns, seeded from the die area and
	// widened by TRACKS statements.
	XLower, XUpper float64
	YLower, YUpper float64

	finder Finder
}

// NewDatabase returns an empty design database.  With indexed set, gate
// and net lookups go through a name index instead of a linear scan; the
// observable behavior is identical.
func NewDatabase(indexed bool) *Database {
	db := &Database{
		Tracks:   make(map[int]*TrackInfo),
		Vertical: make(map[int]bool),
	}
	if indexed {
		db.finder = newMapFinder()
	} else {
		db.finder = &linearFinder{db: db}
	}
	return db
}

// AddGate appends a placed instance and indexes it.
func (db *Database) AddGate(g *Gate) {
	db.Gates = append(db.Gates, g)
	db.finder.noteGate(g)
}

// AddNet appends a net and indexes it.
func (db *Database) AddNet(n *Net) {
	db.Nets = append(db.Nets, n)
	db.finder.noteNet(n)
}

// FindGate returns the placed instance with the given name, nil if
// absent.  Matching is case-insensitive.
func (db *Database) FindGate(name string) *Gate {
	return db.finder.FindGate(name)
}

// FindNet returns the net with the given name, nil if absent.  Matching
// is case-insensitive.
func (db *Database) FindNet(name string) *Net {
	return db.finder.FindNet(name)
}

// AddObstruction appends a free obstruction rectangle.
func (db *Database) AddObstruction(r geometry.Rect) {
	db.Obstructions = append(db.Obstructions, r)
}

// NumChannelsX returns the number of routing grid columns between the X
// bounds at the given pitch.
func (db *Database) NumChannelsX(pitch float64) int {
	if pitch <= 0 {
		return 0
	}
	return int((db.XUpper-db.XLower)/pitch) + 1
}

// NumChannelsY returns the number of routing grid rows between the Y
// bounds at the given pitch.
func (db *Database) NumChannelsY(pitch float64) int {
	if pitch <= 0 {
		return 0
	}
	return int((db.YUpper-db.YLower)/pitch) + 1
}
