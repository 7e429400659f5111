package geometry

// Orient is a placement orientation, a combination of an optional
// 90-degree rotation and X/Y mirrors.
type Orient uint8

const (
	North Orient = 0
	MX    Orient = 1 << 0
	MY    Orient = 1 << 1
	R90   Orient = 1 << 2
)

// OrientNames lists the eight placement orientation codes in the order
// they are looked up by the design reader.
var OrientNames = []string{"N", "S", "E", "W", "FN", "FS", "FE", "FW"}

// orientFlags maps an OrientNames index to its flag combination.
var orientFlags = [8]Orient{
	North,            // N
	MX | MY,          // S
	R90,              // E
	R90 | MX | MY,    // W
	MX,               // FN
	MY,               // FS
	R90 | MX,         // FE
	R90 | MY,         // FW
}

// OrientByIndex decodes an OrientNames index into rotation/mirror flags.
func OrientByIndex(i int) Orient {
	if i < 0 || i >= len(orientFlags) {
		return North
	}
	return orientFlags[i]
}

// Transform maps a rectangle from macro-local coordinates (origin already
// subtracted) to die coordinates under a placement.  The rotation is
// applied first, then the X mirror about the macro width, then the Y
// mirror about the macro height, then the translation to (placeX,placeY).
// Pin and obstruction geometry must use exactly this order to register
// with instance footprints.
func Transform(r Rect, o Orient, placeX, placeY, width, height float64) Rect {
	if o&R90 != 0 {
		r.X1, r.Y1 = r.Y1, -r.X1+width
		r.X2, r.Y2 = r.Y2, -r.X2+width
	}
	if o&MX != 0 {
		r.X1, r.X2 = -r.X2+placeX+width, -r.X1+placeX+width
	} else {
		r.X1 += placeX
		r.X2 += placeX
	}
	if o&MY != 0 {
		r.Y1, r.Y2 = -r.Y2+placeY+height, -r.Y1+placeY+height
	} else {
		r.Y1 += placeY
		r.Y2 += placeY
	}
	return r.Normalize()
}
