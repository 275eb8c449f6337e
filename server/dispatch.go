package server

import (
	"context"
	"fmt"
	"time"

	"github.com/zucenko/pathviz/model"
	"github.com/zucenko/pathviz/session"
)

// Dispatch applies one client command to s. A run started here is
// cancelled with ctx.
func Dispatch(ctx context.Context, s *session.Session, cm model.ClientMessage) error {
	var err error
	switch cm.Command {
	case model.CmdRun:
		err = s.Run(ctx)
	case model.CmdAbort:
		err = s.Abort()
	case model.CmdStop:
		err = s.Stop()
	case model.CmdReset:
		err = s.Reset()
	case model.CmdMoveStart:
		err = s.MoveStart(cm.Cell)
	case model.CmdMoveTarget:
		err = s.MoveTarget(cm.Cell)
	case model.CmdAddObstacles:
		cells := cm.Cells
		if len(cells) == 0 {
			cells = []model.Cell{cm.Cell}
		}
		_, err = s.AddObstacles(cells...)
	case model.CmdRemoveObstacle:
		_, err = s.RemoveObstacle(cm.Cell)
	case model.CmdClearObstacles:
		_, err = s.ClearObstacles()
	case model.CmdScale:
		err = s.SetScale(cm.Scale)
	case model.CmdUndo:
		err = s.Undo()
	case model.CmdRedo:
		err = s.Redo()
	case model.CmdDelay:
		s.SetStepDelay(time.Duration(cm.DelayMs) * time.Millisecond)
	case model.CmdPress:
		err = s.Press(cm.Cell)
	case model.CmdDrag:
		err = s.Drag(cm.Cell)
	case model.CmdRelease:
		err = s.Release(cm.Cell)
	default:
		err = fmt.Errorf("%q: %w", cm.Command, ErrUnknownCommand)
	}
	return err
}
