// Package geometry holds the rectangle and polygon math used by the
// technology and design readers: Manhattan polygon decomposition,
// placement transforms, and bounding boxes.  Coordinates are in microns
// unless a caller says otherwise; Layer is a routing-layer index.
package geometry

// Point is a vertex of a polygon or a via/tap reference point.
type Point struct {
	Layer int
	X, Y  float64
}

// Rect is an axis-aligned rectangle on one layer, lower-left (X1,Y1) to
// upper-right (X2,Y2).
type Rect struct {
	Layer int
	X1    float64
	Y1    float64
	X2    float64
	Y2    float64
}

// Width returns the X extent.
func (r Rect) Width() float64 { return r.X2 - r.X1 }

// Height returns the Y extent.
func (r Rect) Height() float64 { return r.Y2 - r.Y1 }

// Area returns the rectangle area.
func (r Rect) Area() float64 { return r.Width() * r.Height() }

// Normalize returns r with corners swapped as needed so X1<=X2 and Y1<=Y2.
func (r Rect) Normalize() Rect {
	if r.X1 > r.X2 {
		r.X1, r.X2 = r.X2, r.X1
	}
	if r.Y1 > r.Y2 {
		r.Y1, r.Y2 = r.Y2, r.Y1
	}
	return r
}

// BoundingBox returns the smallest rectangle covering all given rects.
// The layer of the result is taken from the first rect.  Returns the zero
// Rect for an empty input.
func BoundingBox(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	bb := rects[0]
	for _, r := range rects[1:] {
		if r.X1 < bb.X1 {
			bb.X1 = r.X1
		}
		if r.Y1 < bb.Y1 {
			bb.Y1 = r.Y1
		}
		if r.X2 > bb.X2 {
			bb.X2 = r.X2
		}
		if r.Y2 > bb.Y2 {
			bb.Y2 = r.Y2
		}
	}
	return bb
}
