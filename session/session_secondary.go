package session

import (
	"fmt"
	"time"

	"github.com/zucenko/pathviz/model"
	"github.com/zucenko/pathviz/search"
)

func (p Phase) Name() string {
	switch p {
	case Editing:
		return "Editing"
	case Simulating:
		return "Simulating"
	case Finished:
		return "Finished"
	default:
		return fmt.Sprintf("N/A(%d)", p)
	}
}

func (k strokeKind) Name() string {
	switch k {
	case strokeStart:
		return "start"
	case strokeTarget:
		return "target"
	case strokePaint:
		return "paint"
	case strokeErase:
		return "erase"
	default:
		return fmt.Sprintf("N/A(%d)", k)
	}
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconcileLocked()
	return s.phase
}

// Grid returns a copy of the grid.
func (s *Session) Grid() *model.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Clone()
}

// Search returns a copy of the current search state.
func (s *Session) Search() search.Snapshot {
	return s.engine.Snapshot()
}

// Path is the found path, start first, once the session is Finished with a
// path. Otherwise nil.
func (s *Session) Path() []model.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconcileLocked()
	if s.phase != Finished || s.engine.Outcome() != search.Found {
		return nil
	}
	return s.engine.Path()
}

func (s *Session) UndoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.UndoCount()
}

func (s *Session) RedoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.RedoCount()
}

// HeuristicAt is the estimate from c to the current target.
func (s *Session) HeuristicAt(c model.Cell) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return search.Heuristic(c, s.grid.Target)
}

func (s *Session) StepDelay() time.Duration {
	return s.engine.StepDelay()
}

// Message flattens the session and its search into one observer message.
func (s *Session) Message() model.ServerMessage {
	s.mu.Lock()
	s.reconcileLocked()
	phase := s.phase
	grid := s.grid.Clone()
	undos, redos := s.history.UndoCount(), s.history.RedoCount()
	s.mu.Unlock()

	snap := s.engine.Snapshot()
	msg := model.ServerMessage{
		Phase:     phase.Name(),
		Width:     grid.Width,
		Height:    grid.Height,
		Scale:     grid.Scale(),
		Start:     grid.Start,
		Target:    grid.Target,
		Obstacles: grid.ObstacleList(),
		Open:      snap.Open,
		Closed:    snap.Closed,
		Result:    snap.Outcome.Name(),
		RunID:     snap.RunID,
		Expanded:  snap.Expanded,
		UndoCount: undos,
		RedoCount: redos,
		StepDelay: int(s.engine.StepDelay() / time.Millisecond),
	}
	if snap.Outcome == search.Found {
		msg.Path = snap.Path
	}
	return msg
}
