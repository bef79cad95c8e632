// Package geom provides 2D geometric primitives and affine transformations:
// - 2D affine transformations (translation, scaling, anchored scaling)
// - Decomposition of a transform into per-axis scale and translation
// - Bounding box and size operations
// - Transform composition and inversion
package geom

import (
	"fmt"
	"math"
)

// identityTolerance is the per-coefficient slack used by IsIdentity.
const identityTolerance = 1e-9

// Point represents a 2D point or vector in Cartesian coordinates.
type Point struct {
	X float64
	Y float64
}

// Size represents the width and height of a layout box.
type Size struct {
	W float64
	H float64
}

// Box represents an axis-aligned rectangle.
type Box struct {
	X float64
	Y float64
	W float64
	H float64
}

// Affine represents a 2D affine transform in row-major form:
// [ a b c ]
// [ d e f ]
// where (x', y') = (a*x + b*y + c, d*x + e*y + f)
type Affine struct {
	A float64
	B float64
	C float64
	D float64
	E float64
	F float64
}

func MakePoint(x, y float64) Point               { return Point{X: x, Y: y} }
func MakeSize(w, h float64) Size                 { return Size{W: w, H: h} }
func MakeBox(x, y, w, h float64) Box             { return Box{X: x, Y: y, W: w, H: h} }
func MakeAffine(a, b, c, d, e, f float64) Affine { return Affine{A: a, B: b, C: c, D: d, E: e, F: f} }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

func Dist(p, q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Empty reports whether the size has no usable area.
func (s Size) Empty() bool { return !(s.W > 0) || !(s.H > 0) }

// Size returns the box's dimensions.
func (b Box) Size() Size { return Size{W: b.W, H: b.H} }

// Origin returns the top-left corner of the box.
func (b Box) Origin() Point { return Point{X: b.X, Y: b.Y} }

// Contains reports whether p lies inside the box (edges inclusive).
func (b Box) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.W && p.Y >= b.Y && p.Y <= b.Y+b.H
}

// Identity returns the identity transform.
func Identity() Affine { return MakeAffine(1, 0, 0, 0, 1, 0) }

// Translate returns a pure translation.
func Translate(tx, ty float64) Affine { return MakeAffine(1, 0, tx, 0, 1, ty) }

// Scale returns a pure (possibly non-uniform) scale about the origin.
func Scale(sx, sy float64) Affine { return MakeAffine(sx, 0, 0, 0, sy, 0) }

// AnchoredScale returns a uniform scale that leaves anchor fixed: translate
// anchor to the origin, scale, translate back.
func AnchoredScale(scale float64, anchor Point) Affine {
	return Translate(anchor.X, anchor.Y).
		Mul(Scale(scale, scale)).
		Mul(Translate(-anchor.X, -anchor.Y))
}

// Compose returns the transform that applies inner first and then outer.
func Compose(inner, outer Affine) Affine {
	return outer.Mul(inner)
}

// MulPoint applies the affine transform to a point.
func (t Affine) MulPoint(p Point) Point {
	return Point{
		X: t.A*p.X + t.B*p.Y + t.C,
		Y: t.D*p.X + t.E*p.Y + t.F,
	}
}

// Mul composes two affine transforms (applies u then t).
func (t Affine) Mul(u Affine) Affine {
	return MakeAffine(
		t.A*u.A+t.B*u.D,
		t.A*u.B+t.B*u.E,
		t.A*u.C+t.B*u.F+t.C,
		t.D*u.A+t.E*u.D,
		t.D*u.B+t.E*u.E,
		t.D*u.C+t.E*u.F+t.F,
	)
}

// ScaleX returns the magnitude of the horizontal scale, recovered from the
// linear part even when the transform was built from several non-uniform
// operations.
func (t Affine) ScaleX() float64 { return math.Sqrt(t.A*t.A + t.B*t.B) }

// ScaleY returns the magnitude of the vertical scale.
func (t Affine) ScaleY() float64 { return math.Sqrt(t.D*t.D + t.E*t.E) }

// TX returns the horizontal translation.
func (t Affine) TX() float64 { return t.C }

// TY returns the vertical translation.
func (t Affine) TY() float64 { return t.F }

// WithTranslation returns a copy of t with its translation replaced.
func (t Affine) WithTranslation(tx, ty float64) Affine {
	t.C, t.F = tx, ty
	return t
}

// IsIdentity reports whether t is the identity, within a small tolerance.
func (t Affine) IsIdentity() bool {
	near := func(v, want float64) bool { return math.Abs(v-want) <= identityTolerance }
	return near(t.A, 1) && near(t.B, 0) && near(t.C, 0) &&
		near(t.D, 0) && near(t.E, 1) && near(t.F, 0)
}

// Inv returns the inverse of the affine transform.
// Returns an error if the transform is not invertible (determinant is zero).
func (t Affine) Inv() (Affine, error) {
	det := t.A*t.E - t.B*t.D
	if math.Abs(det) < 1e-10 {
		return Affine{}, fmt.Errorf("affine transform is not invertible (determinant ≈ 0)")
	}
	return MakeAffine(
		t.E/det, -t.B/det, (t.B*t.F-t.C*t.E)/det,
		-t.D/det, t.A/det, (t.C*t.D-t.A*t.F)/det,
	), nil
}

// FillBox returns a transform that maps box b1 into b2, preserving aspect
// ratio and centering the result (an aspect-fit).
func FillBox(b1, b2 Box) (Affine, error) {
	if b1.W <= 0 || b1.H <= 0 {
		return Affine{}, fmt.Errorf("source box must have positive width and height, got W=%v H=%v", b1.W, b1.H)
	}
	if b2.W <= 0 || b2.H <= 0 {
		return Affine{}, fmt.Errorf("destination box must have positive width and height, got W=%v H=%v", b2.W, b2.H)
	}

	sc := math.Min(b2.W/b1.W, b2.H/b1.H)
	centerDst := Translate(b2.X+0.5*b2.W, b2.Y+0.5*b2.H)
	centerSrc := Translate(-(b1.X + 0.5*b1.W), -(b1.Y + 0.5*b1.H))
	return centerDst.Mul(Scale(sc, sc)).Mul(centerSrc), nil
}

// FitBox returns the box that b1 occupies once aspect-fit into b2.
func FitBox(b1, b2 Box) (Box, error) {
	t, err := FillBox(b1, b2)
	if err != nil {
		return Box{}, err
	}
	tl := t.MulPoint(b1.Origin())
	br := t.MulPoint(MakePoint(b1.X+b1.W, b1.Y+b1.H))
	return MakeBox(tl.X, tl.Y, br.X-tl.X, br.Y-tl.Y), nil
}
