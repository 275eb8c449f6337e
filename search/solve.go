package search

import (
	"context"
	"fmt"

	"github.com/zucenko/pathviz/model"
)

// Result of a headless run.
type Result struct {
	Path     []model.Cell
	Expanded int
}

// Solve runs a search to completion and returns the path, start first. A
// board with no path yields ErrUnreachable; a cancelled ctx yields its error.
func Solve(ctx context.Context, grid *model.Grid, opts Options) (Result, error) {
	e := NewEngine(opts)
	if err := e.Start(ctx, grid); err != nil {
		return Result{}, err
	}
	defer e.Reset()

	<-e.Done()
	snap := e.Snapshot()
	switch {
	case snap.Status == Aborted:
		if err := ctx.Err(); err != nil {
			return Result{Expanded: snap.Expanded}, err
		}
		return Result{Expanded: snap.Expanded}, context.Canceled
	case snap.Outcome == Unreachable:
		return Result{Expanded: snap.Expanded}, fmt.Errorf("%v -> %v: %w", grid.Start, grid.Target, ErrUnreachable)
	}
	return Result{Path: snap.Path, Expanded: snap.Expanded}, nil
}
