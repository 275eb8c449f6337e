// Package session is the editing and simulation state machine that sits
// between an input layer and the grid, the edit history and the search
// engine.
//
// A Session is safe for concurrent use. Phase changes caused by the search
// finishing on its own are picked up the next time the session is touched.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/zucenko/pathviz/history"
	"github.com/zucenko/pathviz/model"
	"github.com/zucenko/pathviz/search"
)

var (
	// ErrInvalidEdit rejects a grid edit outside the Editing phase. The
	// grid is left untouched.
	ErrInvalidEdit = errors.New("edit rejected: session is not editing")
	// ErrInvalidTransition rejects a phase command the current phase does
	// not accept.
	ErrInvalidTransition = errors.New("phase transition not allowed")
)

type Phase int

const (
	Editing Phase = iota
	Simulating
	Finished
)

type Options struct {
	Scale     int
	TieBreak  float64
	StepDelay time.Duration
}

type Session struct {
	mu      sync.Mutex
	phase   Phase
	grid    *model.Grid
	history *history.Stack
	engine  *search.Engine
	stroke  *stroke
}

type strokeKind int

const (
	strokeStart strokeKind = iota
	strokeTarget
	strokePaint
	strokeErase
)

// stroke is a press-drag-release gesture in progress.
type stroke struct {
	kind  strokeKind
	from  model.Cell
	cells []model.Cell
}

func NewSession(opts Options) (*Session, error) {
	if opts.Scale == 0 {
		opts.Scale = 1
	}
	grid, err := model.NewGrid(opts.Scale)
	if err != nil {
		return nil, err
	}
	return NewSessionWithGrid(grid, opts), nil
}

// NewSessionWithGrid starts editing a copy of grid.
func NewSessionWithGrid(grid *model.Grid, opts Options) *Session {
	return &Session{
		phase:   Editing,
		grid:    grid.Clone(),
		history: history.NewStack(),
		engine: search.NewEngine(search.Options{
			TieBreak:  opts.TieBreak,
			StepDelay: opts.StepDelay,
		}),
	}
}
