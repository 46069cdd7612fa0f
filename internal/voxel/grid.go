package voxel

import "fmt"

// Dims is the size of a grid in cells along each axis.
type Dims struct {
	X, Y, Z int
}

// Volume returns the number of cells.
func (d Dims) Volume() int {
	return d.X * d.Y * d.Z
}

// Valid reports whether every axis is positive.
func (d Dims) Valid() bool {
	return d.X > 0 && d.Y > 0 && d.Z > 0
}

func (d Dims) String() string {
	return fmt.Sprintf("%dx%dx%d", d.X, d.Y, d.Z)
}

// OutOfBoundsError is the panic value for grid access outside its dimensions.
type OutOfBoundsError struct {
	X, Y, Z int
	Dims    Dims
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("voxel: (%d,%d,%d) out of bounds for %s grid", e.X, e.Y, e.Z, e.Dims)
}

// Grid is a dense chunk-local voxel array. It has no synchronisation of its
// own; the owning chunk serialises access.
type Grid struct {
	dims  Dims
	cells []Type
}

// NewGrid returns an all-Air grid. It panics if dims is not valid.
func NewGrid(dims Dims) *Grid {
	if !dims.Valid() {
		panic(fmt.Sprintf("voxel: invalid grid dimensions %s", dims))
	}
	return &Grid{
		dims:  dims,
		cells: make([]Type, dims.Volume()),
	}
}

// Dims returns the grid dimensions.
func (g *Grid) Dims() Dims {
	return g.dims
}

// InBounds reports whether (x,y,z) addresses a cell of the grid.
func (g *Grid) InBounds(x, y, z int) bool {
	return x >= 0 && x < g.dims.X && y >= 0 && y < g.dims.Y && z >= 0 && z < g.dims.Z
}

// Index converts local coordinates to the linear cell index
// z*(X*Y) + y*X + x.
func (g *Grid) Index(x, y, z int) int {
	if !g.InBounds(x, y, z) {
		panic(&OutOfBoundsError{X: x, Y: y, Z: z, Dims: g.dims})
	}
	return z*g.dims.X*g.dims.Y + y*g.dims.X + x
}

// Get returns the cell at (x,y,z).
func (g *Grid) Get(x, y, z int) Type {
	return g.cells[g.Index(x, y, z)]
}

// Set stores t at (x,y,z).
func (g *Grid) Set(x, y, z int, t Type) {
	g.cells[g.Index(x, y, z)] = t
}

// Fill overwrites every cell with t.
func (g *Grid) Fill(t Type) {
	for i := range g.cells {
		g.cells[i] = t
	}
}

// Count returns the number of cells matching pred.
func (g *Grid) Count(pred func(Type) bool) int {
	n := 0
	for _, c := range g.cells {
		if pred(c) {
			n++
		}
	}
	return n
}

