package geometry

import (
	"errors"
	"sort"
)

// Edge directions for the decomposition sweep.
const (
	hEdge = iota // horizontal
	rEdge        // rising (low Y to high Y)
	fEdge        // falling
)

var (
	ErrTooFewPoints = errors.New("polygon with fewer than 4 points")
	ErrNonManhattan = errors.New("non-manhattan polygon")
)

// DecomposePolygon converts a closed Manhattan polygon into a set of
// non-overlapping rectangles covering the same area.  The path is closed
// automatically if the last point differs from the first.  Each minimal
// Y-range containing no vertex is swept left to right over the X-sorted
// edges, accumulating a wrap number (+1 for a rising edge, -1 falling);
// a rectangle is emitted each time the wrap number returns to zero.
// Zero-width spans are skipped.  A non-Manhattan edge or a degenerate
// point count aborts decomposition for the whole polygon.
func DecomposePolygon(poly []Point) ([]Rect, error) {
	if len(poly) == 0 {
		return nil, nil
	}
	// Drop an explicit closing point; the edge ring wraps on its own.
	n := len(poly)
	if n > 1 && poly[0].X == poly[n-1].X && poly[0].Y == poly[n-1].Y {
		poly = poly[:n-1]
		n--
	}
	if n < 4 {
		return nil, ErrTooFewPoints
	}

	// Each edge runs from poly[i] to poly[(i+1)%n].
	dir := make([]int, n)
	for i := 0; i < n; i++ {
		p, q := poly[i], poly[(i+1)%n]
		switch {
		case p.Y == q.Y:
			dir[i] = hEdge
		case p.X == q.X:
			if p.Y < q.Y {
				dir[i] = rEdge
			} else {
				dir[i] = fEdge
			}
		default:
			return nil, ErrNonManhattan
		}
	}

	ys := make([]float64, n)
	for i, p := range poly {
		ys[i] = p.Y
	}
	sort.Float64s(ys)

	edges := make([]int, n)
	for i := range edges {
		edges[i] = i
	}
	sort.Slice(edges, func(a, b int) bool {
		return poly[edges[a]].X < poly[edges[b]].X
	})

	crosses := func(e int, ybot, ytop float64) bool {
		p, q := poly[e], poly[(e+1)%n]
		switch dir[e] {
		case rEdge:
			return p.Y <= ybot && q.Y >= ytop
		case fEdge:
			return q.Y <= ybot && p.Y >= ytop
		}
		return false
	}

	var rects []Rect
	for curr := 1; curr < n; curr++ {
		ybot := ys[curr-1]
		for ybot == ys[curr] {
			curr++
			if curr >= n {
				return rects, nil
			}
		}
		ytop := ys[curr]

		wrap := 0
		var xbot float64
		for _, e := range edges {
			if wrap == 0 {
				xbot = poly[e].X
			}
			if !crosses(e, ybot, ytop) {
				continue
			}
			if dir[e] == rEdge {
				wrap++
			} else {
				wrap--
			}
			if wrap == 0 {
				xtop := poly[e].X
				if xbot == xtop {
					continue
				}
				rects = append(rects, Rect{
					Layer: poly[e].Layer,
					X1:    xbot,
					Y1:    ybot,
					X2:    xtop,
					Y2:    ytop,
				})
			}
		}
	}
	return rects, nil
}
