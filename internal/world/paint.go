package world

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"titan/internal/voxel"
)

// Paint writes t into every cell whose integer offset (dx,dy,dz) from the
// cell containing pos satisfies dx²+dy²+dz² <= radius². Only resident
// chunks with data are written. It returns the number of cells written.
func (w *World) Paint(pos mgl32.Vec3, t voxel.Type, radius float32) int {
	return w.paint(pos, t, radius, true)
}

// PaintDisc is Paint restricted to the horizontal plane through pos.
func (w *World) PaintDisc(pos mgl32.Vec3, t voxel.Type, radius float32) int {
	return w.paint(pos, t, radius, false)
}

func (w *World) paint(pos mgl32.Vec3, t voxel.Type, radius float32, sphere bool) int {
	if radius < 0 {
		return 0
	}
	cx := int(math32.Floor(pos.X()))
	cy := int(math32.Floor(pos.Y()))
	cz := int(math32.Floor(pos.Z()))
	r := int(math32.Floor(radius))
	r2 := radius * radius

	ry := 0
	if sphere {
		ry = r
	}
	n := 0
	for dx := -r; dx <= r; dx++ {
		for dy := -ry; dy <= ry; dy++ {
			for dz := -r; dz <= r; dz++ {
				if float32(dx*dx+dy*dy+dz*dz) > r2 {
					continue
				}
				if w.SetBlock(cx+dx, cy+dy, cz+dz, t) {
					n++
				}
			}
		}
	}
	return n
}

// SetBlock writes a single world cell. It reports false when the owning
// chunk is not resident or has no data. Edits on a chunk border mark the
// touching neighbour dirty so its faces are rebuilt.
func (w *World) SetBlock(x, y, z int, t voxel.Type) bool {
	coord, lx, ly, lz := splitCell(x, y, z, w.dims)
	c := w.store.Get(coord)
	if c == nil || !c.State().HasData() {
		return false
	}
	if err := c.SetBlock(lx, ly, lz, t); err != nil {
		return false
	}

	touch := func(dx, dy, dz int) {
		if nb := w.store.Get(coord.Add(dx, dy, dz)); nb != nil && nb.State() == StateLoaded {
			_ = nb.MarkDirty()
		}
	}
	switch lx {
	case 0:
		touch(-1, 0, 0)
	case w.dims.X - 1:
		touch(1, 0, 0)
	}
	switch ly {
	case 0:
		touch(0, -1, 0)
	case w.dims.Y - 1:
		touch(0, 1, 0)
	}
	switch lz {
	case 0:
		touch(0, 0, -1)
	case w.dims.Z - 1:
		touch(0, 0, 1)
	}
	return true
}
