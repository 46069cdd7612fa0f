package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ObserverHalfWidth is the horizontal half extent of an observer's box.
const ObserverHalfWidth = 0.3

// Collides reports whether a box of the given height standing at pos overlaps
// any solid, non-liquid cell.
func Collides(pos mgl32.Vec3, height float32, q BlockQuery) bool {
	minX := int(math32.Floor(pos.X() - ObserverHalfWidth))
	maxX := int(math32.Floor(pos.X() + ObserverHalfWidth))
	minY := int(math32.Floor(pos.Y()))
	maxY := int(math32.Floor(pos.Y() + height))
	minZ := int(math32.Floor(pos.Z() - ObserverHalfWidth))
	maxZ := int(math32.Floor(pos.Z() + ObserverHalfWidth))

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				t := q.BlockAt(x, y, z)
				if !t.Solid() || t.Liquid() {
					continue
				}
				if pos.X()-ObserverHalfWidth < float32(x+1) && pos.X()+ObserverHalfWidth > float32(x) &&
					pos.Y() < float32(y+1) && pos.Y()+height > float32(y) &&
					pos.Z()-ObserverHalfWidth < float32(z+1) && pos.Z()+ObserverHalfWidth > float32(z) {
					return true
				}
			}
		}
	}
	return false
}

// GroundLevel returns the top of the highest solid cell under the box at
// (x, z), scanning down from fromY to floorY. ok is false when nothing was found.
func GroundLevel(x, z, fromY float32, floorY int, q BlockQuery) (level float32, ok bool) {
	minX := int(math32.Floor(x - ObserverHalfWidth))
	maxX := int(math32.Floor(x + ObserverHalfWidth))
	minZ := int(math32.Floor(z - ObserverHalfWidth))
	maxZ := int(math32.Floor(z + ObserverHalfWidth))

	for bx := minX; bx <= maxX; bx++ {
		for bz := minZ; bz <= maxZ; bz++ {
			for by := int(math32.Floor(fromY)); by >= floorY; by-- {
				t := q.BlockAt(bx, by, bz)
				if t.Solid() && !t.Liquid() {
					if top := float32(by + 1); !ok || top > level {
						level, ok = top, true
					}
					break
				}
			}
		}
	}
	return level, ok
}
