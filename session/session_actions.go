package session

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/zucenko/pathviz/history"
	"github.com/zucenko/pathviz/model"
	"github.com/zucenko/pathviz/search"
)

func (s *Session) setPhaseLocked(p Phase) {
	if s.phase == p {
		return
	}
	log.Infof("session %s -> %s", s.phase.Name(), p.Name())
	s.phase = p
}

// reconcileLocked moves a Simulating session on once the engine has
// terminated by itself.
func (s *Session) reconcileLocked() {
	if s.phase != Simulating {
		return
	}
	switch s.engine.Status() {
	case search.Succeeded:
		s.setPhaseLocked(Finished)
	case search.Aborted:
		// the run context was cancelled from outside
		s.engine.Reset()
		s.setPhaseLocked(Editing)
	}
}

// Run starts a search over the current grid. The search outlives the call
// and is cancelled with ctx, Abort or Stop.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconcileLocked()
	if s.phase != Editing {
		return fmt.Errorf("run in %s: %w", s.phase.Name(), ErrInvalidTransition)
	}
	s.endStrokeLocked()
	s.engine.Reset()
	if err := s.engine.Start(ctx, s.grid); err != nil {
		return err
	}
	s.setPhaseLocked(Simulating)
	return nil
}

// Abort stops a running search and returns to Editing. The search state
// is cleared.
func (s *Session) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconcileLocked()
	return s.abortLocked()
}

func (s *Session) abortLocked() error {
	if s.phase != Simulating {
		return fmt.Errorf("abort in %s: %w", s.phase.Name(), ErrInvalidTransition)
	}
	status := s.engine.Abort()
	log.Debugf("search joined in %s", status.Name())
	s.engine.Reset()
	s.setPhaseLocked(Editing)
	return nil
}

// Reset leaves Finished for Editing, clearing the search state and keeping
// the grid.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconcileLocked()
	return s.resetLocked()
}

func (s *Session) resetLocked() error {
	if s.phase != Finished {
		return fmt.Errorf("reset in %s: %w", s.phase.Name(), ErrInvalidTransition)
	}
	s.engine.Reset()
	s.setPhaseLocked(Editing)
	return nil
}

// Stop aborts a running search or resets a finished one.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconcileLocked()
	switch s.phase {
	case Simulating:
		return s.abortLocked()
	case Finished:
		return s.resetLocked()
	}
	return fmt.Errorf("stop in %s: %w", s.phase.Name(), ErrInvalidTransition)
}

// Wait blocks until the running search terminates and returns the phase
// it left the session in.
func (s *Session) Wait(ctx context.Context) (Phase, error) {
	if err := s.engine.Wait(ctx); err != nil {
		return s.Phase(), err
	}
	return s.Phase(), nil
}

func (s *Session) SetStepDelay(d time.Duration) {
	s.engine.SetStepDelay(d)
}

func (s *Session) editableLocked(what string) error {
	s.reconcileLocked()
	if s.phase != Editing {
		log.Debugf("%s rejected in %s", what, s.phase.Name())
		return fmt.Errorf("%s in %s: %w", what, s.phase.Name(), ErrInvalidEdit)
	}
	return nil
}

func (s *Session) MoveStart(c model.Cell) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked("move start"); err != nil {
		return err
	}
	s.endStrokeLocked()
	return s.moveLocked(history.MoveStart, c)
}

func (s *Session) MoveTarget(c model.Cell) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked("move target"); err != nil {
		return err
	}
	s.endStrokeLocked()
	return s.moveLocked(history.MoveTarget, c)
}

func (s *Session) moveLocked(op history.Op, to model.Cell) error {
	from, set := s.grid.Start, s.grid.SetStart
	if op == history.MoveTarget {
		from, set = s.grid.Target, s.grid.SetTarget
	}
	if from == to {
		return nil
	}
	if err := set(to); err != nil {
		return err
	}
	s.history.Record(history.Record{Op: op, Cells: []model.Cell{from, to}})
	return nil
}

// AddObstacles returns the cells that became obstacles.
func (s *Session) AddObstacles(cells ...model.Cell) ([]model.Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked("add obstacles"); err != nil {
		return nil, err
	}
	s.endStrokeLocked()
	added := s.grid.AddObstacles(cells...)
	if len(added) > 0 {
		s.history.Record(history.Record{Op: history.InsertObstacles, Cells: added})
	}
	return added, nil
}

func (s *Session) RemoveObstacle(c model.Cell) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked("remove obstacle"); err != nil {
		return false, err
	}
	s.endStrokeLocked()
	if !s.grid.RemoveObstacle(c) {
		return false, nil
	}
	s.history.Record(history.Record{Op: history.DeleteObstacles, Cells: []model.Cell{c}})
	return true, nil
}

// ClearObstacles removes every obstacle as one undoable edit.
func (s *Session) ClearObstacles() ([]model.Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked("clear obstacles"); err != nil {
		return nil, err
	}
	s.endStrokeLocked()
	removed := s.grid.ClearObstacles()
	if len(removed) > 0 {
		s.history.Record(history.Record{Op: history.DeleteObstacles, Cells: removed})
	}
	return removed, nil
}

// SetScale resizes the grid. Edit records address cells of the old size,
// so a resize drops the history.
func (s *Session) SetScale(scale int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked("set scale"); err != nil {
		return err
	}
	s.endStrokeLocked()
	if scale == s.grid.Scale() {
		return nil
	}
	if err := s.grid.SetScale(scale); err != nil {
		return err
	}
	s.history.Clear()
	return nil
}

func (s *Session) SetDimensions(w, h int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked("set dimensions"); err != nil {
		return err
	}
	s.endStrokeLocked()
	if w == s.grid.Width && h == s.grid.Height {
		return nil
	}
	if err := s.grid.SetDimensions(w, h); err != nil {
		return err
	}
	s.history.Clear()
	return nil
}

// Undo reverts the latest edit. An empty history yields history.ErrEmpty.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked("undo"); err != nil {
		return err
	}
	s.endStrokeLocked()
	rec, err := s.history.PeekUndo()
	if err != nil {
		return err
	}
	// the record only changes stacks once the grid took it
	if err := s.applyLocked(rec.Invert()); err != nil {
		return err
	}
	_, err = s.history.Undo()
	return err
}

// Redo reapplies the latest undone edit.
func (s *Session) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked("redo"); err != nil {
		return err
	}
	s.endStrokeLocked()
	rec, err := s.history.PeekRedo()
	if err != nil {
		return err
	}
	if err := s.applyLocked(rec); err != nil {
		return err
	}
	_, err = s.history.Redo()
	return err
}

func (s *Session) applyLocked(rec history.Record) error {
	var err error
	switch rec.Op {
	case history.MoveStart:
		err = s.grid.SetStart(rec.To())
	case history.MoveTarget:
		err = s.grid.SetTarget(rec.To())
	case history.InsertObstacles:
		s.grid.AddObstacles(rec.Cells...)
	case history.DeleteObstacles:
		for _, c := range rec.Cells {
			s.grid.RemoveObstacle(c)
		}
	}
	if err != nil {
		log.WithError(err).Warnf("could not apply %s", rec)
		return err
	}
	return nil
}

// Press begins a gesture at c: on an endpoint it picks the endpoint up, on
// an obstacle it starts erasing, anywhere else it starts painting.
func (s *Session) Press(c model.Cell) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked("press"); err != nil {
		return err
	}
	s.endStrokeLocked()
	if !s.grid.InBounds(c) {
		return fmt.Errorf("press %v: %w", c, model.ErrOutOfBounds)
	}
	switch {
	case c == s.grid.Start:
		s.stroke = &stroke{kind: strokeStart, from: c}
	case c == s.grid.Target:
		s.stroke = &stroke{kind: strokeTarget, from: c}
	case s.grid.ContainsObstacle(c):
		s.stroke = &stroke{kind: strokeErase}
	default:
		s.stroke = &stroke{kind: strokePaint}
	}
	s.strokeToLocked(c)
	return nil
}

// Drag continues the gesture to c. Without a gesture it does nothing.
func (s *Session) Drag(c model.Cell) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked("drag"); err != nil {
		return err
	}
	if s.stroke != nil {
		s.strokeToLocked(c)
	}
	return nil
}

// Release ends the gesture at c and records it as one edit.
func (s *Session) Release(c model.Cell) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked("release"); err != nil {
		return err
	}
	if s.stroke != nil {
		s.strokeToLocked(c)
		s.endStrokeLocked()
	}
	return nil
}

func (s *Session) strokeToLocked(c model.Cell) {
	st := s.stroke
	switch st.kind {
	case strokeStart:
		// occupied or out of bounds cells leave the endpoint where it is
		_ = s.grid.SetStart(c)
	case strokeTarget:
		_ = s.grid.SetTarget(c)
	case strokePaint:
		st.cells = append(st.cells, s.grid.AddObstacles(c)...)
	case strokeErase:
		if s.grid.RemoveObstacle(c) {
			st.cells = append(st.cells, c)
		}
	}
}

func (s *Session) endStrokeLocked() {
	st := s.stroke
	if st == nil {
		return
	}
	s.stroke = nil

	var rec *history.Record
	switch st.kind {
	case strokeStart:
		if s.grid.Start != st.from {
			rec = &history.Record{Op: history.MoveStart, Cells: []model.Cell{st.from, s.grid.Start}}
		}
	case strokeTarget:
		if s.grid.Target != st.from {
			rec = &history.Record{Op: history.MoveTarget, Cells: []model.Cell{st.from, s.grid.Target}}
		}
	case strokePaint:
		if len(st.cells) > 0 {
			rec = &history.Record{Op: history.InsertObstacles, Cells: st.cells}
		}
	case strokeErase:
		if len(st.cells) > 0 {
			rec = &history.Record{Op: history.DeleteObstacles, Cells: st.cells}
		}
	}
	if rec == nil {
		return
	}
	s.history.Record(*rec)
	log.Debugf("%s stroke recorded: %s", st.kind.Name(), rec)
}
