package model

import (
	"errors"
	"fmt"
	"sort"
)

// Base grid every supported size is an integer scaling of.
const (
	BaseWidth  = 16
	BaseHeight = 9
	// MaxScale bounds the board at 1024x576 cells.
	MaxScale = 64
)

var (
	ErrDimensionMismatch = errors.New("dimensions are not an integer scaling of the base grid")
	ErrOutOfBounds       = errors.New("cell out of bounds")
)

// Cell is a grid coordinate. Cells order by X, then Y.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NoCell is returned by coordinate translation for positions left of or above the grid.
var NoCell = Cell{X: -1, Y: -1}

func (c Cell) Less(o Cell) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	return c.Y < o.Y
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Grid holds the editable board: size, endpoints and obstacles.
// start != target and neither endpoint is ever an obstacle.
// Grid is not safe for concurrent use; the session serializes access.
type Grid struct {
	Width, Height int
	Start, Target Cell
	Obstacles     map[Cell]struct{}
	scale         int
}

// NewGrid returns a grid of the base size times scale, with start and
// target in opposite corners.
func NewGrid(scale int) (*Grid, error) {
	if err := CheckScale(scale); err != nil {
		return nil, err
	}
	g := &Grid{
		Width:     BaseWidth * scale,
		Height:    BaseHeight * scale,
		Obstacles: make(map[Cell]struct{}),
		scale:     scale,
	}
	g.Start = g.defaultStart()
	g.Target = g.defaultTarget()
	return g, nil
}

// CheckScale rejects factors outside 1..MaxScale.
func CheckScale(scale int) error {
	if scale <= 0 || scale > MaxScale {
		return fmt.Errorf("scale %d not in 1..%d: %w", scale, MaxScale, ErrDimensionMismatch)
	}
	return nil
}

func (g *Grid) Scale() int {
	return g.scale
}

func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.Width && c.Y < g.Height
}

func (g *Grid) ContainsObstacle(c Cell) bool {
	_, found := g.Obstacles[c]
	return found
}

func (g *Grid) IsOccupiedByEndpoint(c Cell) bool {
	return c == g.Start || c == g.Target
}

// ObstacleList returns the in-bounds obstacles in cell order.
func (g *Grid) ObstacleList() []Cell {
	cells := make([]Cell, 0, len(g.Obstacles))
	for c := range g.Obstacles {
		if g.InBounds(c) {
			cells = append(cells, c)
		}
	}
	SortCells(cells)
	return cells
}

// Clone returns a deep copy that shares nothing with g.
func (g *Grid) Clone() *Grid {
	obstacles := make(map[Cell]struct{}, len(g.Obstacles))
	for c := range g.Obstacles {
		obstacles[c] = struct{}{}
	}
	return &Grid{
		Width:     g.Width,
		Height:    g.Height,
		Start:     g.Start,
		Target:    g.Target,
		Obstacles: obstacles,
		scale:     g.scale,
	}
}

func (g *Grid) defaultStart() Cell {
	return Cell{0, 0}
}

func (g *Grid) defaultTarget() Cell {
	return Cell{g.Width - 1, g.Height - 1}
}

func SortCells(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool { return cells[i].Less(cells[j]) })
}
