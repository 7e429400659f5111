package geometry

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func pts(layer int, xy ...float64) []Point {
	var out []Point
	for i := 0; i < len(xy); i += 2 {
		out = append(out, Point{Layer: layer, X: xy[i], Y: xy[i+1]})
	}
	return out
}

func totalArea(rects []Rect) float64 {
	var a float64
	for _, r := range rects {
		a += r.Area()
	}
	return a
}

func overlaps(a, b Rect) bool {
	return a.X1 < b.X2 && b.X1 < a.X2 && a.Y1 < b.Y2 && b.Y1 < a.Y2
}

func TestDecomposeRectangle(t *testing.T) {
	// A plain rectangle decomposes to itself, whether or not the path
	// repeats the first point at the end.
	closed := pts(1, 0, 0, 10, 0, 10, 10, 0, 10, 0, 0)
	open := pts(1, 0, 0, 10, 0, 10, 10, 0, 10)
	for _, poly := range [][]Point{closed, open} {
		rects, err := DecomposePolygon(poly)
		if err != nil {
			t.Fatal(err)
		}
		if len(rects) != 1 {
			t.Fatalf("got %d rects, want 1", len(rects))
		}
		want := Rect{Layer: 1, X1: 0, Y1: 0, X2: 10, Y2: 10}
		if diff := cmp.Diff(want, rects[0]); diff != "" {
			t.Fatalf("rect mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestDecomposeLShape(t *testing.T) {
	// 10x10 square with the top-right 5x5 corner removed; area 75.
	poly := pts(0, 0, 0, 10, 0, 10, 5, 5, 5, 5, 10, 0, 10)
	rects, err := DecomposePolygon(poly)
	if err != nil {
		t.Fatal(err)
	}
	if got := totalArea(rects); got != 75 {
		t.Fatalf("total area = %v, want 75", got)
	}
	for i := 0; i < len(rects); i++ {
		for j := i + 1; j < len(rects); j++ {
			if overlaps(rects[i], rects[j]) {
				t.Fatalf("rects %d and %d overlap: %+v %+v", i, j, rects[i], rects[j])
			}
		}
	}
}

func TestDecomposePlusShape(t *testing.T) {
	poly := pts(2,
		1, 0, 2, 0, 2, 1, 3, 1, 3, 2, 2, 2, 2, 3, 1, 3, 1, 2, 0, 2, 0, 1, 1, 1)
	rects, err := DecomposePolygon(poly)
	if err != nil {
		t.Fatal(err)
	}
	if len(rects) != 3 {
		t.Fatalf("got %d rects, want 3", len(rects))
	}
	if got := totalArea(rects); got != 5 {
		t.Fatalf("total area = %v, want 5", got)
	}
	// Sorted by Y the spans are the bottom stem, the wide bar, the top stem.
	sort.Slice(rects, func(i, j int) bool { return rects[i].Y1 < rects[j].Y1 })
	if rects[1].X1 != 0 || rects[1].X2 != 3 {
		t.Fatalf("middle bar = %+v, want X 0..3", rects[1])
	}
	for _, r := range rects {
		if r.Layer != 2 {
			t.Fatalf("layer = %d, want 2", r.Layer)
		}
	}
}

func TestDecomposeZeroWidthSkipped(t *testing.T) {
	// A degenerate notch pinches the outline to zero width; no sliver
	// rectangles may be emitted.
	poly := pts(0, 0, 0, 4, 0, 4, 2, 2, 2, 2, 4, 2, 2, 0, 2)
	rects, err := DecomposePolygon(poly)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rects {
		if r.Width() == 0 || r.Height() == 0 {
			t.Fatalf("zero-extent rect emitted: %+v", r)
		}
	}
	if got := totalArea(rects); got != 8 {
		t.Fatalf("total area = %v, want 8", got)
	}
}

func TestDecomposeErrors(t *testing.T) {
	if _, err := DecomposePolygon(pts(0, 0, 0, 1, 0, 1, 1)); !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("triangle-count path: err = %v, want ErrTooFewPoints", err)
	}
	diag := pts(0, 0, 0, 10, 0, 5, 5, 0, 5)
	if _, err := DecomposePolygon(diag); !errors.Is(err, ErrNonManhattan) {
		t.Fatalf("diagonal edge: err = %v, want ErrNonManhattan", err)
	}
	if rects, err := DecomposePolygon(nil); err != nil || rects != nil {
		t.Fatalf("empty input: got %v, %v", rects, err)
	}
}
