package model

import (
	"errors"
	"fmt"
)

var ErrOccupied = errors.New("cell occupied")

// SetStart moves the start endpoint. The destination must be in bounds,
// not the target and not an obstacle.
func (g *Grid) SetStart(c Cell) error {
	if err := g.checkEndpoint(c, g.Target); err != nil {
		return err
	}
	g.Start = c
	return nil
}

// SetTarget moves the target endpoint under the same rules as SetStart.
func (g *Grid) SetTarget(c Cell) error {
	if err := g.checkEndpoint(c, g.Start); err != nil {
		return err
	}
	g.Target = c
	return nil
}

func (g *Grid) checkEndpoint(c, other Cell) error {
	if !g.InBounds(c) {
		return fmt.Errorf("endpoint %v: %w", c, ErrOutOfBounds)
	}
	if c == other || g.ContainsObstacle(c) {
		return fmt.Errorf("endpoint %v: %w", c, ErrOccupied)
	}
	return nil
}

// AddObstacles inserts cells and returns the ones actually inserted.
// Endpoints, out of bounds cells and existing obstacles are skipped.
func (g *Grid) AddObstacles(cells ...Cell) []Cell {
	added := make([]Cell, 0, len(cells))
	for _, c := range cells {
		if !g.InBounds(c) || g.IsOccupiedByEndpoint(c) || g.ContainsObstacle(c) {
			continue
		}
		g.Obstacles[c] = struct{}{}
		added = append(added, c)
	}
	return added
}

// RemoveObstacle reports whether c was an obstacle.
func (g *Grid) RemoveObstacle(c Cell) bool {
	if !g.ContainsObstacle(c) {
		return false
	}
	delete(g.Obstacles, c)
	return true
}

// ClearObstacles removes every obstacle and returns them in cell order.
func (g *Grid) ClearObstacles() []Cell {
	removed := g.ObstacleList()
	g.Obstacles = make(map[Cell]struct{})
	return removed
}

// SetScale resizes the grid to scale times the base grid. Obstacles that
// fall outside the new bounds are dropped and endpoints that fall outside
// are reset to their default corner.
func (g *Grid) SetScale(scale int) error {
	if err := CheckScale(scale); err != nil {
		return err
	}
	g.scale = scale
	g.Width = BaseWidth * scale
	g.Height = BaseHeight * scale

	for c := range g.Obstacles {
		if !g.InBounds(c) {
			delete(g.Obstacles, c)
		}
	}

	startReset, targetReset := false, false
	if !g.InBounds(g.Start) {
		g.Start = g.defaultStart()
		startReset = true
	}
	if !g.InBounds(g.Target) {
		g.Target = g.defaultTarget()
		targetReset = true
	}
	// a reset endpoint landing on the kept one takes the other corner
	if g.Start == g.Target {
		switch {
		case targetReset:
			g.Target = g.defaultStart()
		case startReset:
			g.Start = g.defaultTarget()
		}
	}
	delete(g.Obstacles, g.Start)
	delete(g.Obstacles, g.Target)
	return nil
}

// SetDimensions resizes the grid to w x h, which must be the base grid
// scaled by one integer factor.
func (g *Grid) SetDimensions(w, h int) error {
	if w <= 0 || h <= 0 || w%BaseWidth != 0 || h%BaseHeight != 0 || w/BaseWidth != h/BaseHeight {
		return fmt.Errorf("%dx%d: %w", w, h, ErrDimensionMismatch)
	}
	return g.SetScale(w / BaseWidth)
}

// CellSize returns the pixel length of one cell when the grid fills a
// surface of the given size. Both axes must yield the same length.
func (g *Grid) CellSize(surfaceW, surfaceH int) (int, error) {
	dx := surfaceW / g.Width
	dy := surfaceH / g.Height
	if dx != dy || dx <= 0 {
		return 0, fmt.Errorf("surface %dx%d for grid %dx%d: %w", surfaceW, surfaceH, g.Width, g.Height, ErrDimensionMismatch)
	}
	return dx, nil
}

// CellAt maps a pixel position to the cell under it. Negative positions
// and a non-positive cell size map to NoCell. The result may still be out
// of bounds on the right or bottom; callers check InBounds.
func CellAt(px, py, cellSize int) Cell {
	if px < 0 || py < 0 || cellSize <= 0 {
		return NoCell
	}
	return Cell{X: px / cellSize, Y: py / cellSize}
}
