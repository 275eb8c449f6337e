package server

import (
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/zucenko/pathviz/history"
	"github.com/zucenko/pathviz/model"
	"github.com/zucenko/pathviz/search"
	"github.com/zucenko/pathviz/session"
)

const HTTP_SUCCESS = 200
const HTTP_BAD_REQUEST = 400
const HTTP_TIMEOUT = 408
const HTTP_CONFLICT = 409
const HTTP_SERVER_ERR = 503

var ErrUnknownCommand = errors.New("unknown command")

// ToHttp maps a command error to a response status.
func ToHttp(err error) int {
	switch {
	case err == nil:
		return HTTP_SUCCESS
	case errors.Is(err, session.ErrInvalidEdit),
		errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, search.ErrBusy),
		errors.Is(err, history.ErrEmpty):
		return HTTP_CONFLICT
	case errors.Is(err, ErrUnknownCommand),
		errors.Is(err, model.ErrOutOfBounds),
		errors.Is(err, model.ErrOccupied),
		errors.Is(err, model.ErrDimensionMismatch):
		return HTTP_BAD_REQUEST
	default:
		return HTTP_SERVER_ERR
	}
}

func (st ObserverState) Name() string {
	switch st {
	case OS_NEW:
		return "NEW"
	case OS_WATCH:
		return "WATCH"
	case OS_OVER:
		return "OVER"
	case OS_ERR:
		return "ERR"
	default:
		return fmt.Sprintf("n/a:%d", st)
	}
}

type ObserverConnectRequest struct {
	Con    *websocket.Conn
	Closed chan struct{}
}

// Command is one client message waiting for Loop. Reply, when set,
// receives the result.
type Command struct {
	Observer int32
	Message  model.ClientMessage
	Reply    chan error
}
