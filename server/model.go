package server

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/zucenko/pathviz/model"
	"github.com/zucenko/pathviz/session"
)

// Hub shares one session between every connected observer. Commands from
// all observers are applied in order by Loop, which also pushes snapshots.
type Hub struct {
	Session      *session.Session
	Upgrader     *websocket.Upgrader
	PushInterval time.Duration

	Commands         chan Command
	ObserverConnects chan ObserverConnectRequest
	ObserverErrors   chan int32

	observers []*Observer
	nextId    int32
	done      chan struct{}
}

type ObserverState int

const (
	OS_NEW ObserverState = iota + 1
	OS_WATCH
	OS_OVER
	OS_ERR
)

// Observer is one websocket client. It reads commands and receives state
// pushes.
type Observer struct {
	State  ObserverState
	Id     int32
	Hub    *Hub
	Conn   *websocket.Conn
	Closed chan struct{}

	MessagesToSend chan model.ServerMessage

	DebugInMessages  int
	DebugOutMessages int
	DebugLastMessage time.Time
	DebugLastPing    time.Time
	DebugPings       int
}
