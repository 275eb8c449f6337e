package model

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrLayout = errors.New("invalid layout")

// NewGridSize returns an empty grid of arbitrary size. Scale is 0 unless
// w x h is an integer scaling of the base grid.
func NewGridSize(w, h int, start, target Cell) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", w, h, ErrDimensionMismatch)
	}
	g := &Grid{Width: w, Height: h, Obstacles: make(map[Cell]struct{})}
	if w%BaseWidth == 0 && h%BaseHeight == 0 && w/BaseWidth == h/BaseHeight {
		g.scale = w / BaseWidth
	}
	if !g.InBounds(start) || !g.InBounds(target) {
		return nil, fmt.Errorf("endpoints %v %v: %w", start, target, ErrOutOfBounds)
	}
	if start == target {
		return nil, fmt.Errorf("start equals target %v: %w", start, ErrOccupied)
	}
	g.Start = start
	g.Target = target
	return g, nil
}

// ParseLayout reads a text board, one row per line:
//
//	S start, T target, # obstacle, . free
//
// Blank lines and lines starting with ';' are skipped.
func ParseLayout(reader io.Reader) (*Grid, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanLines)

	var (
		rows          []string
		start, target = NoCell, NoCell
		obstacles     []Cell
	)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		row := len(rows)
		if len(rows) > 0 && len(line) != len(rows[0]) {
			return nil, fmt.Errorf("row %d has width %d, want %d: %w", row, len(line), len(rows[0]), ErrLayout)
		}
		for col, char := range line {
			cell := Cell{X: col, Y: row}
			switch char {
			case '.':
			case '#':
				obstacles = append(obstacles, cell)
			case 'S':
				if start != NoCell {
					return nil, fmt.Errorf("second start at %v: %w", cell, ErrLayout)
				}
				start = cell
			case 'T':
				if target != NoCell {
					return nil, fmt.Errorf("second target at %v: %w", cell, ErrLayout)
				}
				target = cell
			default:
				return nil, fmt.Errorf("unknown tile %q at %v: %w", char, cell, ErrLayout)
			}
		}
		rows = append(rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty board: %w", ErrLayout)
	}
	if start == NoCell || target == NoCell {
		return nil, fmt.Errorf("board needs one S and one T: %w", ErrLayout)
	}

	g, err := NewGridSize(len(rows[0]), len(rows), start, target)
	if err != nil {
		return nil, err
	}
	g.AddObstacles(obstacles...)
	return g, nil
}

// Layout renders g in the ParseLayout format, with path cells drawn as '*'.
func (g *Grid) Layout(path []Cell) string {
	onPath := make(map[Cell]bool, len(path))
	for _, c := range path {
		onPath[c] = true
	}
	var b strings.Builder
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := Cell{x, y}
			switch {
			case c == g.Start:
				b.WriteByte('S')
			case c == g.Target:
				b.WriteByte('T')
			case g.ContainsObstacle(c):
				b.WriteByte('#')
			case onPath[c]:
				b.WriteByte('*')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
