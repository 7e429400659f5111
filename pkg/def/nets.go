package def

import (
	"math"
	"strings"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/layout"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/lefdef"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/tech"
)

// Net record properties, in lookup-table order.
const (
	netPropUse = iota
	netPropRouted
	netPropFixed
	netPropCover
	netPropShape
	netPropSource
	netPropWeight
	netPropProperty
)

var netPropKeys = []string{
	"USE",
	"ROUTED",
	"FIXED",
	"COVER",
	"SHAPE",
	"SOURCE",
	"WEIGHT",
	"PROPERTY",
}

// readNets reads a NETS or SPECIALNETS section.  Returns the number of
// fixed or cover nets, excluding power and ground: the count of nets to
// be copied verbatim from input to output.
func (p *parser) readNets(sname string, special bool, total int) int {
	p.ensureGrid()

	processed := 0
	fixed := 0

	for {
		tok := p.tok.Next(true)
		if tok == "" {
			break
		}
		keyword := lefdef.Lookup(tok, recordKeys)
		if keyword < 0 {
			p.diag.Warn(p.tok.Line, "Unknown keyword \"%s\" in NET definition; ignoring.\n", tok)
			p.tok.EndStatement()
			continue
		}
		switch keyword {
		case recStart:
			name := p.tok.Next(true)
			net := p.db.FindNet(name)
			isNew := net == nil
			var nodeidx int
			if isNew {
				net = &layout.Net{Name: name}
				switch {
				case p.vddnet != "" && name == p.vddnet:
					net.Number = layout.VddNet
				case p.gndnet != "" && name == p.gndnet:
					net.Number = layout.GndNet
				default:
					net.Number = p.netidx
					p.netidx++
				}
				p.db.AddNet(net)
			} else {
				nodeidx = net.NumNodes
			}
			processed++

			tok = p.tok.Next(true)
			for tok != "" && tok != ";" {
				if tok == "(" {
					inst := p.tok.Next(true)
					pin := p.tok.Next(true)
					if strings.EqualFold(inst, "pin") {
						inst, pin = pin, "pin"
					}
					node := &layout.Node{Num: nodeidx}
					nodeidx++
					p.readGatePin(net, node, inst, pin)
					tok = p.tok.Next(true) // closing paren
					continue
				}
				if tok != "+" {
					tok = p.tok.Next(true)
					continue
				}
				tok = p.tok.Next(true)
				subkey := lefdef.Lookup(tok, netPropKeys)
				if subkey < 0 {
					p.diag.Warn(p.tok.Line, "Unknown net property \"%s\" in NET definition; ignoring.\n", tok)
					tok = p.tok.Next(true)
					continue
				}
				switch subkey {
				case netPropUse:
					// Connectivity is derived, not declared.

				case netPropShape:
					p.tok.Next(true)

				case netPropFixed, netPropCover, netPropRouted:
					if subkey != netPropRouted && isNew {
						// Fixed nets are read like regular nets but
						// left alone by the router.  A net that
						// already exists unignored, power or ground
						// typically, keeps its routable status.
						net.Ignored = true
						fixed++
					}
					for tok != "" && tok != ";" {
						tok = p.addRoutes(net, special)
					}
					if special && (subkey == netPropRouted || subkey == netPropFixed) &&
						(net.Number == layout.VddNet || net.Number == layout.GndNet) {
						fixed++
					}
					continue
				}
				tok = p.tok.Next(true)
			}

		case recEnd:
			if !p.tok.ParseEndStatement(p.diag, sname) {
				p.diag.Error(p.tok.Line, "Net END statement missing.\n")
				continue
			}
			p.settleNodeCounts(special)
			p.countCheck("nets", processed, total)
			return fixed
		}
	}
	p.settleNodeCounts(special)
	p.countCheck("nets", processed, total)
	return fixed
}

// settleNodeCounts fills in the per-net node totals and mirrors them
// onto every node, once the regular net section has been read.
func (p *parser) settleNodeCounts(special bool) {
	if special {
		return
	}
	for _, net := range p.db.Nets {
		net.NumNodes = len(net.Nodes)
		for _, node := range net.Nodes {
			node.NumNodes = net.NumNodes
		}
	}
}

// readGatePin resolves one ( instance pin ) connection: finds the
// placed gate and the pin on it, then records every routing grid point
// inside the pin rectangles as a tap and every grid point within the
// keepout halo as an extension.
func (p *parser) readGatePin(net *layout.Net, node *layout.Node, instname, pinname string) {
	g := p.db.FindGate(instname)
	if g == nil {
		return
	}
	if g.Macro == nil {
		p.diag.Error(p.tok.Line, "Endpoint %s/%s of net %s not found\n",
			instname, pinname, net.Name)
		return
	}
	i := g.PinIndex(pinname)
	if i < 0 {
		return
	}

	for _, r := range g.Taps[i] {
		if r.Layer < 0 || r.Layer >= len(p.home) {
			continue
		}
		halo := p.home[r.Layer]

		gridx := int((r.X1-p.db.XLower)/p.reg.PitchX) - 1
		if gridx < 0 {
			gridx = 0
		}
		for gridx < p.numChanX {
			dx := float64(gridx)*p.reg.PitchX + p.db.XLower
			if dx > r.X2+halo-tech.EPS {
				break
			}
			if dx < r.X1-halo+tech.EPS {
				gridx++
				continue
			}
			gridy := int((r.Y1-p.db.YLower)/p.reg.PitchY) - 1
			if gridy < 0 {
				gridy = 0
			}
			for gridy < p.numChanY {
				dy := float64(gridy)*p.reg.PitchY + p.db.YLower
				if dy > r.Y2+halo-tech.EPS {
					break
				}
				if dy < r.Y1-halo+tech.EPS {
					gridy++
					continue
				}

				gp := layout.GridPoint{
					Layer: r.Layer,
					X:     dx,
					Y:     dy,
					GridX: gridx,
					GridY: gridy,
				}
				if dx >= r.X1-tech.EPS && dx <= r.X2+tech.EPS &&
					dy >= r.Y1-tech.EPS && dy <= r.Y2+tech.EPS {
					node.Taps = append(node.Taps, gp)
				} else {
					node.Extends = append(node.Extends, gp)
				}
				gridy++
			}
			gridx++
		}
	}

	node.Netnum = net.Number
	node.Netname = net.Name
	g.Netnums[i] = net.Number
	g.Nodes[i] = node
	net.Nodes = append([]*layout.Node{node}, net.Nodes...)
}

// addRoutes reads the route statements of one net property: a NEW
// record per path, ( x y ) points snapped to the routing grid, and via
// names emitting via segments.  Special nets produce no segments; the
// fixed and power/ground ones leave spacing-expanded obstructions
// instead.
// Returns the token that ended the route list.
func (p *parser) addRoutes(net *layout.Net, special bool) string {
	var (
		tok        string
		valid      bool // is there a valid reference point?
		refx, refy int
		x, y       float64
		lx, ly     float64
		w          float64
		routeLayer = -1
		paintLayer int
		routednet  *layout.Route
	)
	initial := true
	numLayers := p.reg.NumLayers()

	// Routed special net geometry becomes obstructions only for power
	// and ground nets.
	noobstruct := special && !net.Ignored &&
		net.Number != layout.VddNet && net.Number != layout.GndNet

	for {
		if !initial {
			tok = p.tok.Next(true)
			if tok == "" {
				break
			}
		}

		if initial || tok == "NEW" || tok == "new" {
			// The initial pass is a NEW record without the keyword.
			initial = false
			valid = false

			tok = p.tok.Next(true)
			routeLayer = p.reg.LayerIndex(tok)
			if routeLayer < 0 {
				p.diag.Error(p.tok.Line, "Unknown layer type \"%s\" for NEW route\n", tok)
				continue
			}
			if routeLayer >= numLayers {
				p.diag.Error(p.tok.Line, "DEF file contains layer \"%s\" which is"+
					" not allowed by the layer limit setting of %d\n", tok, numLayers)
				continue
			}
			paintLayer = routeLayer

			if special {
				// SPECIALNETS has an explicit width.
				wv, ok := parseFloat(p.tok.Next(true))
				if !ok {
					p.diag.Error(p.tok.Line, "Bad width in special net\n")
					continue
				}
				if wv != 0 {
					w = wv / p.oscale
				} else {
					w = p.reg.RouteWidth(paintLayer)
				}
			} else {
				w = p.reg.RouteWidth(paintLayer)
				routednet = &layout.Route{Netnum: net.Number}
				net.AddRoute(routednet)
			}
			continue
		}

		if tok != "(" {
			// A '+' or ';' record ends the route.
			if tok == ";" || tok == "+" {
				break
			}
			if !valid {
				p.diag.Error(p.tok.Line, "Route has via name \"%s\" but no points!\n", tok)
				continue
			}
			lefl := p.reg.FindLayer(tok)
			if lefl == nil {
				p.diag.Error(p.tok.Line, "Via name \"%s\" unknown in route.\n", tok)
				continue
			}

			// The area to paint is derived from the via definition.
			if lefl.Class == tech.ClassVia {
				// Via layers may be listed in any order, metal or
				// cut; cuts are the ones past the metal layer count.
				paintLayer = numLayers - 1
				routeLayer = -1
				if lefl.Via.Area.Layer < numLayers {
					routeLayer = lefl.Via.Area.Layer
					if routeLayer < paintLayer {
						paintLayer = routeLayer
					}
					if routeLayer >= 0 && special && !noobstruct {
						s := p.reg.RouteSpacing(routeLayer)
						p.db.AddObstruction(geometry.Rect{
							Layer: routeLayer,
							X1:    x + lefl.Via.Area.X1/2.0 - s,
							Y1:    y + lefl.Via.Area.Y1/2.0 - s,
							X2:    x + lefl.Via.Area.X2/2.0 + s,
							Y2:    y + lefl.Via.Area.Y2/2.0 + s,
						})
					}
				}
				for _, lr := range lefl.Via.LR {
					if lr.Layer >= numLayers {
						continue
					}
					routeLayer = lr.Layer
					if routeLayer < paintLayer {
						paintLayer = routeLayer
					}
					if routeLayer >= 0 && special && !noobstruct {
						s := p.reg.RouteSpacing(routeLayer)
						p.db.AddObstruction(geometry.Rect{
							Layer: routeLayer,
							X1:    x + lr.X1/2.0 - s,
							Y1:    y + lr.Y1/2.0 - s,
							X2:    x + lr.X2/2.0 + s,
							Y2:    y + lr.Y2/2.0 + s,
						})
					}
				}
				if routeLayer == -1 {
					paintLayer = lefl.Index
				}
			} else {
				paintLayer = lefl.Index
			}

			if !special && paintLayer >= 0 && paintLayer < numLayers-1 {
				if routednet == nil {
					routednet = &layout.Route{Netnum: net.Number}
					net.AddRoute(routednet)
				}
				routednet.Segments = append(routednet.Segments, layout.Segment{
					Via:   true,
					Layer: paintLayer,
					X1:    refx,
					Y1:    refy,
					X2:    refx,
					Y2:    refy,
				})
			} else if paintLayer >= numLayers-1 {
				// Predefined geometry above the route layer limit is
				// not necessarily an error.
				p.diag.Warn(p.tok.Line, "Via \"%s\" exceeds layer limit setting.\n", tok)
			} else if !special {
				p.diag.Error(p.tok.Line, "Via \"%s\" does not define a metal layer!\n", tok)
			}
			continue
		}

		// A coordinate pair.  Revert to the routing layer type, in
		// case the last segment painted a via.
		paintLayer = routeLayer
		lastx, lasty := refx, refy
		lx, ly = x, y

		bad := false
		tok = p.tok.Next(true) // X
		if tok == "*" {
			if !valid {
				p.diag.Error(p.tok.Line, "No reference point for \"*\" wildcard\n")
				bad = true
			}
		} else if xv, ok := parseFloat(tok); ok {
			x = xv / p.oscale
			// Offsets and stubs are always less than half a pitch, so
			// round to the nearest grid point.
			refx = int(0.5 + (x-p.db.XLower+tech.EPS)/p.reg.PitchX)

			// Offsets beyond a third of the pitch need the route
			// checked before use, to separate the main route from
			// the stub or offset.
			if !special && routednet != nil &&
				math.Abs(float64(refx)-(x-p.db.XLower)/p.reg.PitchX) > 0.33 {
				routednet.Check = true
			}
		} else {
			p.diag.Error(p.tok.Line, "Cannot parse X coordinate.\n")
			bad = true
		}
		if !bad {
			tok = p.tok.Next(true) // Y
			if tok == "*" {
				if !valid {
					p.diag.Error(p.tok.Line, "No reference point for \"*\" wildcard\n")
					bad = true
				}
			} else if yv, ok := parseFloat(tok); ok {
				y = yv / p.oscale
				refy = int(0.5 + (y-p.db.YLower+tech.EPS)/p.reg.PitchY)

				if !special && routednet != nil &&
					math.Abs(float64(refy)-(y-p.db.YLower)/p.reg.PitchY) > 0.33 {
					routednet.Check = true
				}
			} else {
				p.diag.Error(p.tok.Line, "Cannot parse Y coordinate.\n")
				bad = true
			}
		}

		if !bad {
			switch {
			case !valid:
				valid = true

			case lastx != refx && lasty != refy:
				// Skip nonmanhattan segments and reset the reference
				// point.
				p.diag.Error(p.tok.Line, "Can't deal with nonmanhattan geometry in route.\n")

			default:
				if special {
					if !noobstruct {
						s := p.reg.RouteSpacing(routeLayer)
						hw := w / 2.0
						r := geometry.Rect{Layer: routeLayer}
						switch {
						case lx > x:
							r.X1, r.X2 = x-s, lx+s
						case lx < x:
							r.X1, r.X2 = lx-s, x+s
						default:
							r.X1, r.X2 = x-hw-s, x+hw+s
						}
						switch {
						case ly > y:
							r.Y1, r.Y2 = y-s, ly+s
						case ly < y:
							r.Y1, r.Y2 = ly-s, y+s
						default:
							r.Y1, r.Y2 = y-hw-s, y+hw+s
						}
						p.db.AddObstruction(r)
					}
				} else if paintLayer >= 0 && paintLayer < numLayers {
					if routednet == nil {
						routednet = &layout.Route{Netnum: net.Number}
						net.AddRoute(routednet)
					}
					routednet.Segments = append(routednet.Segments, layout.Segment{
						Layer: paintLayer,
						X1:    lastx,
						Y1:    lasty,
						X2:    refx,
						Y2:    refy,
					})
				} else if paintLayer >= numLayers {
					p.diag.Error(p.tok.Line, "Route layer exceeds layer limit setting!\n")
				}
			}
		}

		// Find the closing parenthesis for the coordinate pair.
		for tok != ")" && tok != "" {
			tok = p.tok.Next(true)
		}
	}

	// Remove routes that are less than one track long; these are stub
	// routes to terminals that did not require their own entry.
	if routednet != nil && routednet.Check && len(net.Routes) > 0 &&
		net.Routes[len(net.Routes)-1] == routednet && len(routednet.Segments) == 1 {
		seg := routednet.Segments[0]
		ix := seg.X1 - seg.X2
		if ix < 0 {
			ix = -ix
		}
		iy := seg.Y1 - seg.Y2
		if iy < 0 {
			iy = -iy
		}
		if (ix == 0 && iy == 1) || (ix == 1 && iy == 0) {
			net.RemoveLastRoute()
		}
	}

	return tok
}
