package voxel

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Type identifies what occupies a single grid cell.
type Type uint8

const (
	Air Type = iota
	Dirt
	Grass
	Stone
	Sand
	Water
	FlowingWater
	Log
	Leaf
	Glass
	Brick

	numTypes
)

// Face identifies one of the six axis-aligned faces of a cell.
type Face int

const (
	FaceNorth  Face = iota // +Z
	FaceSouth              // -Z
	FaceEast               // +X
	FaceWest               // -X
	FaceTop                // +Y
	FaceBottom             // -Y
)

// Faces lists every face in mesher emission order.
var Faces = [6]Face{FaceNorth, FaceSouth, FaceEast, FaceWest, FaceTop, FaceBottom}

// Offset returns the unit step towards the neighbouring cell behind the face.
func (f Face) Offset() (dx, dy, dz int) {
	switch f {
	case FaceNorth:
		return 0, 0, 1
	case FaceSouth:
		return 0, 0, -1
	case FaceEast:
		return 1, 0, 0
	case FaceWest:
		return -1, 0, 0
	case FaceTop:
		return 0, 1, 0
	case FaceBottom:
		return 0, -1, 0
	}
	return 0, 0, 0
}

// Normal returns the outward unit normal of the face.
func (f Face) Normal() mgl32.Vec3 {
	dx, dy, dz := f.Offset()
	return mgl32.Vec3{float32(dx), float32(dy), float32(dz)}
}

func (f Face) String() string {
	switch f {
	case FaceNorth:
		return "north"
	case FaceSouth:
		return "south"
	case FaceEast:
		return "east"
	case FaceWest:
		return "west"
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	}
	return fmt.Sprintf("Face(%d)", int(f))
}

// Atlas layout: tiles sit side by side in a single row.
const (
	AtlasColumns = 16
	TileStep     = float32(1.0) / AtlasColumns
)

type tiles struct {
	side, top, bottom uint8
}

type properties struct {
	name       string
	seeThrough bool
	family     Type
	tiles      tiles
}

var table = [numTypes]properties{
	Air:          {name: "air", seeThrough: true, family: Air},
	Dirt:         {name: "dirt", family: Dirt, tiles: tiles{side: 0, top: 0, bottom: 0}},
	Grass:        {name: "grass", family: Grass, tiles: tiles{side: 2, top: 1, bottom: 0}},
	Stone:        {name: "stone", family: Stone, tiles: tiles{side: 3, top: 3, bottom: 3}},
	Sand:         {name: "sand", family: Sand, tiles: tiles{side: 4, top: 4, bottom: 4}},
	Water:        {name: "water", seeThrough: true, family: Water, tiles: tiles{side: 5, top: 5, bottom: 5}},
	FlowingWater: {name: "flowing_water", seeThrough: true, family: Water, tiles: tiles{side: 5, top: 5, bottom: 5}},
	Log:          {name: "log", family: Log, tiles: tiles{side: 6, top: 7, bottom: 7}},
	Leaf:         {name: "leaf", family: Leaf, tiles: tiles{side: 8, top: 8, bottom: 8}},
	Glass:        {name: "glass", seeThrough: true, family: Glass, tiles: tiles{side: 9, top: 9, bottom: 9}},
	Brick:        {name: "brick", family: Brick, tiles: tiles{side: 10, top: 10, bottom: 10}},
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	return t < numTypes
}

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
	return table[t].name
}

// ParseType looks a type up by its lowercase name.
func ParseType(name string) (Type, error) {
	for i := range table {
		if table[i].name == name {
			return Type(i), nil
		}
	}
	return Air, fmt.Errorf("voxel: unknown type %q", name)
}

// Solid reports whether the cell holds anything at all.
func (t Type) Solid() bool {
	return t != Air
}

// SeeThrough reports whether faces behind a cell of this type can be seen.
func (t Type) SeeThrough() bool {
	return t.Valid() && table[t].seeThrough
}

// Family groups types that hide each other's shared faces, e.g. still and
// flowing water.
func (t Type) Family() Type {
	if !t.Valid() {
		return t
	}
	return table[t].family
}

// Liquid reports whether t is a water variant.
func (t Type) Liquid() bool {
	return t.Family() == Water
}

// Exposes reports whether a face of a cell of type t is visible when the
// neighbouring cell holds neighbor. Air always exposes; other see-through
// types expose only cells of a different family.
func (t Type) Exposes(neighbor Type) bool {
	if neighbor == Air {
		return true
	}
	if !neighbor.SeeThrough() {
		return false
	}
	return t.Family() != neighbor.Family()
}

// Tile returns the atlas tile index used for the given face.
func (t Type) Tile(f Face) uint32 {
	if !t.Valid() {
		return 0
	}
	ts := table[t].tiles
	switch f {
	case FaceTop:
		return uint32(ts.top)
	case FaceBottom:
		return uint32(ts.bottom)
	}
	return uint32(ts.side)
}

// TextureOffset returns the atlas origin of the tile drawn on face f.
func (t Type) TextureOffset(f Face) mgl32.Vec2 {
	return mgl32.Vec2{float32(t.Tile(f)) * TileStep, 0}
}
