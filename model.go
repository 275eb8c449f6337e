package main

import (
	"time"

	"github.com/zucenko/pathviz/model"
	"github.com/zucenko/pathviz/search"
	"github.com/zucenko/pathviz/session"
)

// Frame is what one update polled from the session. Drawing reads only
// the frame.
type Frame struct {
	Phase     session.Phase
	Grid      *model.Grid
	Search    search.Snapshot
	Path      []model.Cell
	CellSize  int
	UndoCount int
	RedoCount int
	StepDelay time.Duration
}

func (g *Game) poll() Frame {
	f := Frame{
		Phase:     g.Session.Phase(),
		Grid:      g.Session.Grid(),
		Search:    g.Session.Search(),
		Path:      g.Session.Path(),
		UndoCount: g.Session.UndoCount(),
		RedoCount: g.Session.RedoCount(),
		StepDelay: g.Session.StepDelay(),
	}
	cs, err := f.Grid.CellSize(g.Width, g.Height)
	if err == nil {
		f.CellSize = cs
	}
	return f
}
