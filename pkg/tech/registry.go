package tech

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/lefdef"
)

// maxCutTypes caps how many distinct layer numbers can be assigned,
// routing and cut layers combined.
const maxCutTypes = 64

// EPS is the comparison tolerance for micron coordinates.
const EPS = 1e-4

// entry binds one name to a layer record.  More than one entry may
// reference the same record (aliases).
type entry struct {
	name string
	rec  *Layer
}

// ViaSlots names the preferred via per orientation pair for one base
// routing layer: XX both metal layers horizontal, XY base horizontal and
// top vertical, YX the reverse, YY both vertical.
type ViaSlots struct {
	XX, XY, YX, YY string
}

// Registry is the technology database: an append-only list of named
// layer/via records, the macro catalog, and the derived via orientation
// tables.  It is mutated only while the technology file is read;
// afterwards the design reader treats it as read-only.
type Registry struct {
	entries []entry
	macros  []*Macro

	// PitchX, PitchY are the global minimum track pitches, used as the
	// fallback scale for every rule query that has no layer record.
	PitchX float64
	PitchY float64

	// LayerLimit caps the number of usable routing layers when nonzero.
	LayerLimit int

	// PathWidth holds per-layer default route widths from configuration,
	// used only by the keepout fallback.
	PathWidth map[int]float64

	// Vias maps each base routing layer to its orientation slots.
	Vias map[int]*ViaSlots

	// PinMacro is the degenerate one-pin cell used for top-level pins.
	PinMacro *Macro
}

func NewRegistry() *Registry {
	return &Registry{
		PathWidth: make(map[int]float64),
		Vias:      make(map[int]*ViaSlots),
	}
}

// FindLayer returns the record a name resolves to, or nil.  The most
// recently added binding wins.
func (reg *Registry) FindLayer(name string) *Layer {
	for i := len(reg.entries) - 1; i >= 0; i-- {
		if reg.entries[i].name == name {
			return reg.entries[i].rec
		}
	}
	return nil
}

// FindLayerByIndex returns the most recently added record with the given
// layer number, or nil.
func (reg *Registry) FindLayerByIndex(index int) *Layer {
	for i := len(reg.entries) - 1; i >= 0; i-- {
		if reg.entries[i].rec.Index == index {
			return reg.entries[i].rec
		}
	}
	return nil
}

// LayerIndex returns the layer number a name resolves to, or -1.
func (reg *Registry) LayerIndex(name string) int {
	if l := reg.FindLayer(name); l != nil {
		return l.Index
	}
	return -1
}

// Records returns every distinct layer record, oldest first.
func (reg *Registry) Records() []*Layer {
	seen := make(map[*Layer]bool)
	var out []*Layer
	for _, e := range reg.entries {
		if !seen[e.rec] {
			seen[e.rec] = true
			out = append(out, e.rec)
		}
	}
	return out
}

// MaxLayer returns one past the highest assigned layer number, route and
// cut layers combined.
func (reg *Registry) MaxLayer() int {
	max := -1
	for _, e := range reg.entries {
		if e.rec.Index > max {
			max = e.rec.Index
		}
	}
	return max + 1
}

// MaxRouteLayer returns one past the highest routing layer number.
func (reg *Registry) MaxRouteLayer() int {
	max := -1
	for _, e := range reg.entries {
		if e.rec.Class == ClassRoute && e.rec.Index > max {
			max = e.rec.Index
		}
	}
	return max + 1
}

// NumLayers returns the usable routing layer count, the defined count
// capped by LayerLimit.
func (reg *Registry) NumLayers() int {
	n := reg.MaxRouteLayer()
	if reg.LayerLimit > 0 && reg.LayerLimit < n {
		n = reg.LayerLimit
	}
	return n
}

// NewRoute registers a new unclassified record under the given name.
func (reg *Registry) NewRoute(name string) *Layer {
	l := &Layer{Name: name, Class: ClassIgnore, Index: -1, ObsIndex: -1}
	reg.entries = append(reg.entries, entry{name: name, rec: l})
	return l
}

// NewVia registers a new via record under the given name.
func (reg *Registry) NewVia(name string) *Layer {
	l := &Layer{Name: name, Class: ClassVia, Index: -1, ObsIndex: -1}
	l.resetVia()
	reg.entries = append(reg.entries, entry{name: name, rec: l})
	return l
}

// AddAlias binds an additional name to an existing record.
func (reg *Registry) AddAlias(name string, rec *Layer) {
	reg.entries = append(reg.entries, entry{name: name, rec: rec})
}

// Redefine prepares a record for redefinition under the given name.  If
// the record serves only that one name it is cleared in place.  If other
// aliases share it, a fresh record takes over the redefined name and the
// original keeps serving the rest, taking one of the surviving aliases
// as its canonical name.
func (reg *Registry) Redefine(rec *Layer, name string) *Layer {
	count := 0
	altName := ""
	for _, e := range reg.entries {
		if e.rec == rec {
			count++
			if altName == "" && e.name != name {
				altName = e.name
			}
		}
	}

	if count <= 1 {
		rec.resetVia()
		rec.Index = -1
		rec.ObsIndex = -1
		return rec
	}

	fresh := &Layer{Name: name, Class: ClassIgnore, Index: -1, ObsIndex: -1}
	fresh.resetVia()
	for i := len(reg.entries) - 1; i >= 0; i-- {
		if reg.entries[i].name == name && reg.entries[i].rec == rec {
			reg.entries[i].rec = fresh
			break
		}
	}
	if rec.Name == name && altName != "" {
		rec.Name = altName
	}
	return fresh
}

// AssignCutIndex gives a cut layer its number on first use from a via
// definition.  Routing layers are all defined by then, so cut numbers
// stack above them.  Returns the assigned number, or -1 with a warning
// when the type space is exhausted.
func (reg *Registry) AssignCutIndex(l *Layer, diag *lefdef.Diagnostics, line int) int {
	cut := reg.MaxLayer()
	if cut >= maxCutTypes {
		diag.Warn(line, "Too many cut types;  type \"%s\" ignored.\n", l.Name)
		return -1
	}
	l.Index = cut
	return cut
}

// MinPitch returns the smaller of the global track pitches.
func (reg *Registry) MinPitch() float64 {
	if reg.PitchX < reg.PitchY {
		return reg.PitchX
	}
	return reg.PitchY
}

// FindMacro looks a cell definition up by name, ignoring case.
func (reg *Registry) FindMacro(name string) *Macro {
	for _, m := range reg.macros {
		if strings.EqualFold(m.Name, name) {
			return m
		}
	}
	return nil
}

// Macros returns the macro catalog.
func (reg *Registry) Macros() []*Macro { return reg.macros }

// AddMacro registers a cell definition.  A name collision renames the
// existing cell with a numeric suffix so neither definition is lost.
// The caller is told the replaced name through the return value, "" when
// there was no collision.
func (reg *Registry) AddMacro(m *Macro) string {
	renamed := ""
	if old := reg.FindMacro(m.Name); old != nil {
		for suffix := 1; ; suffix++ {
			candidate := fmt.Sprintf("%s_%d", m.Name, suffix)
			if reg.FindMacro(candidate) == nil {
				old.Name = candidate
				renamed = candidate
				break
			}
		}
	}
	reg.macros = append(reg.macros, m)
	return renamed
}
