package graphics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	planeLeft = iota
	planeRight
	planeBottom
	planeTop
	planeNear
	planeFar
)

type plane struct {
	n mgl32.Vec3
	d float32
}

func (p plane) distance(v mgl32.Vec3) float32 {
	return p.n.Dot(v) + p.d
}

// Frustum is a view volume extracted from a projection*view matrix. It is
// immutable once built.
type Frustum struct {
	planes [6]plane
	points [8]mgl32.Vec3

	// apex is the eye position; hasApex is false for parallel projections.
	apex    mgl32.Vec3
	hasApex bool
}

// NewFrustum extracts the six clip planes (left, right, bottom, top, near,
// far) and the eight corner points of the volume described by projView.
func NewFrustum(projView mgl32.Mat4) *Frustum {
	// mgl32 is column-major: row i is (m[i], m[4+i], m[8+i], m[12+i]).
	row := func(i int) mgl32.Vec4 {
		return mgl32.Vec4{projView[i], projView[4+i], projView[8+i], projView[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	f := &Frustum{}
	f.planes[planeLeft] = normalizePlane(r3.Add(r0))
	f.planes[planeRight] = normalizePlane(r3.Sub(r0))
	f.planes[planeBottom] = normalizePlane(r3.Add(r1))
	f.planes[planeTop] = normalizePlane(r3.Sub(r1))
	f.planes[planeNear] = normalizePlane(r3.Add(r2))
	f.planes[planeFar] = normalizePlane(r3.Sub(r2))

	var crosses [15]mgl32.Vec3
	for i := range 6 {
		for j := i + 1; j < 6; j++ {
			crosses[pairIndex(i, j)] = f.planes[i].n.Cross(f.planes[j].n)
		}
	}

	f.points = [8]mgl32.Vec3{
		f.intersection(planeLeft, planeBottom, planeNear, &crosses),
		f.intersection(planeLeft, planeTop, planeNear, &crosses),
		f.intersection(planeRight, planeBottom, planeNear, &crosses),
		f.intersection(planeRight, planeTop, planeNear, &crosses),
		f.intersection(planeLeft, planeBottom, planeFar, &crosses),
		f.intersection(planeLeft, planeTop, planeFar, &crosses),
		f.intersection(planeRight, planeBottom, planeFar, &crosses),
		f.intersection(planeRight, planeTop, planeFar, &crosses),
	}
	if d := f.planes[planeLeft].n.Dot(crosses[pairIndex(planeRight, planeTop)]); math32.Abs(d) > 1e-6 {
		f.apex = f.intersection(planeLeft, planeRight, planeTop, &crosses)
		f.hasApex = true
	}
	return f
}

func normalizePlane(v mgl32.Vec4) plane {
	n := v.Vec3()
	l := n.Len()
	if l == 0 {
		return plane{n: n, d: v.W()}
	}
	return plane{n: n.Mul(1 / l), d: v.W() / l}
}

// pairIndex packs an ordered plane pair i < j into [0,15).
func pairIndex(i, j int) int {
	return i*(9-i)/2 + j - 1
}

// intersection returns the point shared by planes a, b and c (a < b < c).
func (f *Frustum) intersection(a, b, c int, crosses *[15]mgl32.Vec3) mgl32.Vec3 {
	bc := crosses[pairIndex(b, c)]
	ac := crosses[pairIndex(a, c)]
	ab := crosses[pairIndex(a, b)]
	d := f.planes[a].n.Dot(bc)
	res := bc.Mul(f.planes[a].d).
		Sub(ac.Mul(f.planes[b].d)).
		Add(ab.Mul(f.planes[c].d))
	return res.Mul(-1 / d)
}

// IsBoxVisible reports whether the box [min,max] may intersect the volume.
// A box is culled when all its corners lie outside a single plane, or when
// all frustum corners lie beyond one face of the box. The test can report
// false positives but never false negatives. A box holding the eye is
// always visible, even when it ends before the near plane.
func (f *Frustum) IsBoxVisible(minV, maxV mgl32.Vec3) bool {
	if f.hasApex && insideBox(f.apex, minV, maxV) {
		return true
	}
	corners := [8]mgl32.Vec3{
		{minV[0], minV[1], minV[2]},
		{maxV[0], minV[1], minV[2]},
		{minV[0], maxV[1], minV[2]},
		{maxV[0], maxV[1], minV[2]},
		{minV[0], minV[1], maxV[2]},
		{maxV[0], minV[1], maxV[2]},
		{minV[0], maxV[1], maxV[2]},
		{maxV[0], maxV[1], maxV[2]},
	}
	for _, pl := range f.planes {
		outside := true
		for _, c := range corners {
			if pl.distance(c) >= 0 {
				outside = false
				break
			}
		}
		if outside {
			return false
		}
	}

	for axis := range 3 {
		above, below := 0, 0
		for _, p := range f.points {
			if p[axis] > maxV[axis] {
				above++
			}
			if p[axis] < minV[axis] {
				below++
			}
		}
		if above == 8 || below == 8 {
			return false
		}
	}
	return true
}

// SphereVisible reports whether a sphere may intersect the volume.
func (f *Frustum) SphereVisible(center mgl32.Vec3, radius float32) bool {
	for _, pl := range f.planes {
		if pl.distance(center) < -math32.Abs(radius) {
			return false
		}
	}
	return true
}

func insideBox(p, minV, maxV mgl32.Vec3) bool {
	return p[0] >= minV[0] && p[0] <= maxV[0] &&
		p[1] >= minV[1] && p[1] <= maxV[1] &&
		p[2] >= minV[2] && p[2] <= maxV[2]
}
