package layout

// GridPoint is a routing grid position inside or near a pin rectangle,
// in both micron and grid-index coordinates.
type GridPoint struct {
	Layer        int
	X, Y         float64
	GridX, GridY int
}

// Node is one terminal of a net at a specific gate pin.  Taps are grid
// points interior to the pin rectangle; Extends are nearby grid points
// within the keepout halo, usable for stub access.
type Node struct {
	Num     int
	Netnum  int
	Netname string

	Taps    []GridPoint
	Extends []GridPoint

	// NumNodes mirrors the owning net's total node count.
	NumNodes int
}

// Segment is one piece of a route: a wire between two grid points on
// one layer, or a via at a single grid point on the lower of the two
// layers it connects.
type Segment struct {
	Via            bool
	Layer          int
	X1, Y1, X2, Y2 int
}

// Route is one NEW-delimited path of a net.  Segments are stored in
// input order.  Check marks routes whose endpoints snapped to the grid
// with more than a third of a pitch of error; they need connectivity
// re-examination before use.
type Route struct {
	Netnum   int
	Segments []Segment
	Check    bool
}

// Net is a named connection.  Routes are appended as read; the most
// recently added route is the last element.
type Net struct {
	Name   string
	Number int

	// Ignored marks fixed or cover nets that the router must not
	// touch.
	Ignored bool

	Nodes  []*Node
	Routes []*Route

	// NumNodes is the total terminal count, settled once the whole
	// connectivity section has been read.
	NumNodes int
}

// AddRoute appends a route to the net.
func (n *Net) AddRoute(r *Route) {
	n.Routes = append(n.Routes, r)
}

// RemoveLastRoute drops the most recently added route.  Used to delete
// one-grid stub routes once a net statement has been fully read.
func (n *Net) RemoveLastRoute() {
	if len(n.Routes) > 0 {
		n.Routes = n.Routes[:len(n.Routes)-1]
	}
}

// Power reports whether the net carries one of the reserved power or
// ground numbers.
func (n *Net) Power() bool {
	return n.Number == VddNet || n.Number == GndNet
}
