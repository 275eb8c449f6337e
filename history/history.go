// Package history keeps the undo/redo log of grid edits.
//
// The log holds no reference to a grid. Undo and Redo hand the record back
// to the caller, which applies it: the inverse of Op after Undo, Op itself
// after Redo.
package history

import (
	"errors"
	"fmt"

	"github.com/zucenko/pathviz/model"
)

var ErrEmpty = errors.New("history stack is empty")

type Op int

const (
	MoveStart Op = iota
	MoveTarget
	InsertObstacles
	DeleteObstacles
)

func (o Op) Name() string {
	switch o {
	case MoveStart:
		return "MoveStart"
	case MoveTarget:
		return "MoveTarget"
	case InsertObstacles:
		return "InsertObstacles"
	case DeleteObstacles:
		return "DeleteObstacles"
	default:
		return fmt.Sprintf("N/A(%d)", o)
	}
}

func (o Op) String() string {
	return o.Name()
}

// Record is one user edit. Moves carry exactly [from, to]; obstacle edits
// carry every cell the gesture inserted or deleted.
type Record struct {
	Op    Op
	Cells []model.Cell
}

// Invert returns the record that undoes r: moves swap their two cells,
// insertions become deletions and the other way round.
func (r Record) Invert() Record {
	cells := append([]model.Cell(nil), r.Cells...)
	op := r.Op
	switch r.Op {
	case MoveStart, MoveTarget:
		if len(cells) == 2 {
			cells[0], cells[1] = cells[1], cells[0]
		}
	case InsertObstacles:
		op = DeleteObstacles
	case DeleteObstacles:
		op = InsertObstacles
	}
	return Record{Op: op, Cells: cells}
}

// From is the cell a move starts at.
func (r Record) From() model.Cell {
	if len(r.Cells) == 0 {
		return model.NoCell
	}
	return r.Cells[0]
}

// To is the cell a move ends at.
func (r Record) To() model.Cell {
	if len(r.Cells) < 2 {
		return model.NoCell
	}
	return r.Cells[1]
}

func (r Record) String() string {
	return fmt.Sprintf("%s%v", r.Op.Name(), r.Cells)
}

// Stack is the pair of undo and redo stacks. The top of each stack is the
// last element of its slice. Stack is not safe for concurrent use.
type Stack struct {
	undo []Record
	redo []Record
}

func NewStack() *Stack {
	return &Stack{
		undo: make([]Record, 0),
		redo: make([]Record, 0),
	}
}

// Record commits a new edit. A pending redo branch is folded into the undo
// stack first: its records go back on as they were applied, followed by
// their inverses in reverse order. Undoing from there walks back through
// every state the grid actually passed through.
func (s *Stack) Record(rec Record) {
	if len(s.redo) > 0 {
		reapplied := make([]Record, 0, len(s.redo))
		for len(s.redo) > 0 {
			top := s.redo[len(s.redo)-1]
			s.redo = s.redo[:len(s.redo)-1]
			s.undo = append(s.undo, top)
			reapplied = append(reapplied, top)
		}
		for i := len(reapplied) - 1; i >= 0; i-- {
			s.undo = append(s.undo, reapplied[i].Invert())
		}
	}
	s.undo = append(s.undo, copyRecord(rec))
}

// Undo pops the latest edit and moves it to the redo stack.
func (s *Stack) Undo() (Record, error) {
	if len(s.undo) == 0 {
		return Record{}, fmt.Errorf("undo: %w", ErrEmpty)
	}
	rec := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, rec)
	return copyRecord(rec), nil
}

// Redo pops the latest undone edit and moves it back to the undo stack.
func (s *Stack) Redo() (Record, error) {
	if len(s.redo) == 0 {
		return Record{}, fmt.Errorf("redo: %w", ErrEmpty)
	}
	rec := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, rec)
	return copyRecord(rec), nil
}

// PeekUndo returns the edit Undo would pop, leaving both stacks as they are.
func (s *Stack) PeekUndo() (Record, error) {
	if len(s.undo) == 0 {
		return Record{}, fmt.Errorf("undo: %w", ErrEmpty)
	}
	return copyRecord(s.undo[len(s.undo)-1]), nil
}

// PeekRedo returns the edit Redo would pop, leaving both stacks as they are.
func (s *Stack) PeekRedo() (Record, error) {
	if len(s.redo) == 0 {
		return Record{}, fmt.Errorf("redo: %w", ErrEmpty)
	}
	return copyRecord(s.redo[len(s.redo)-1]), nil
}

func (s *Stack) UndoCount() int {
	return len(s.undo)
}

func (s *Stack) RedoCount() int {
	return len(s.redo)
}

// Undos returns a copy of the undo stack, bottom first.
func (s *Stack) Undos() []Record {
	return copyRecords(s.undo)
}

// Redos returns a copy of the redo stack, bottom first.
func (s *Stack) Redos() []Record {
	return copyRecords(s.redo)
}

func (s *Stack) Clear() {
	s.undo = s.undo[:0]
	s.redo = s.redo[:0]
}

func copyRecord(r Record) Record {
	return Record{Op: r.Op, Cells: append([]model.Cell(nil), r.Cells...)}
}

func copyRecords(rs []Record) []Record {
	out := make([]Record, len(rs))
	for i, r := range rs {
		out[i] = copyRecord(r)
	}
	return out
}
