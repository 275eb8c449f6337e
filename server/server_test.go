package server

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zucenko/pathviz/history"
	"github.com/zucenko/pathviz/model"
	"github.com/zucenko/pathviz/search"
	"github.com/zucenko/pathviz/session"
)

func newSession(t *testing.T, delay time.Duration) *session.Session {
	t.Helper()
	s, err := session.NewSession(session.Options{Scale: 1, StepDelay: delay})
	require.NoError(t, err)
	return s
}

func startHub(t *testing.T, s *session.Session) *Hub {
	t.Helper()
	h := NewHub(s, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Loop(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.done
	})
	return h
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, time.Hour)
	cell := model.Cell{X: 3, Y: 3}

	require.NoError(t, Dispatch(ctx, s, model.ClientMessage{Command: model.CmdAddObstacles, Cell: cell}))
	require.NoError(t, Dispatch(ctx, s, model.ClientMessage{Command: model.CmdAddObstacles,
		Cells: []model.Cell{{X: 4, Y: 4}, {X: 5, Y: 5}}}))
	require.NoError(t, Dispatch(ctx, s, model.ClientMessage{Command: model.CmdRemoveObstacle, Cell: cell}))
	require.NoError(t, Dispatch(ctx, s, model.ClientMessage{Command: model.CmdMoveStart, Cell: model.Cell{X: 1, Y: 0}}))
	require.NoError(t, Dispatch(ctx, s, model.ClientMessage{Command: model.CmdMoveTarget, Cell: model.Cell{X: 9, Y: 0}}))
	require.NoError(t, Dispatch(ctx, s, model.ClientMessage{Command: model.CmdUndo}))
	require.NoError(t, Dispatch(ctx, s, model.ClientMessage{Command: model.CmdRedo}))
	require.NoError(t, Dispatch(ctx, s, model.ClientMessage{Command: model.CmdDelay, DelayMs: 20}))
	assert.Equal(t, 20*time.Millisecond, s.StepDelay())

	g := s.Grid()
	assert.Equal(t, []model.Cell{{X: 4, Y: 4}, {X: 5, Y: 5}}, g.ObstacleList())
	assert.Equal(t, model.Cell{X: 1, Y: 0}, g.Start)
	assert.Equal(t, model.Cell{X: 9, Y: 0}, g.Target)

	require.NoError(t, Dispatch(ctx, s, model.ClientMessage{Command: model.CmdPress, Cell: model.Cell{X: 7, Y: 7}}))
	require.NoError(t, Dispatch(ctx, s, model.ClientMessage{Command: model.CmdDrag, Cell: model.Cell{X: 8, Y: 7}}))
	require.NoError(t, Dispatch(ctx, s, model.ClientMessage{Command: model.CmdRelease, Cell: model.Cell{X: 9, Y: 7}}))
	assert.Len(t, s.Grid().ObstacleList(), 5)

	require.NoError(t, Dispatch(ctx, s, model.ClientMessage{Command: model.CmdClearObstacles}))
	require.NoError(t, Dispatch(ctx, s, model.ClientMessage{Command: model.CmdScale, Scale: 2}))
	assert.Equal(t, 32, s.Grid().Width)

	require.NoError(t, Dispatch(ctx, s, model.ClientMessage{Command: model.CmdRun}))
	err := Dispatch(ctx, s, model.ClientMessage{Command: model.CmdMoveStart, Cell: model.Cell{X: 2, Y: 2}})
	assert.ErrorIs(t, err, session.ErrInvalidEdit)
	require.NoError(t, Dispatch(ctx, s, model.ClientMessage{Command: model.CmdAbort}))
	require.NoError(t, Dispatch(ctx, s, model.ClientMessage{Command: model.CmdRun}))
	require.NoError(t, Dispatch(ctx, s, model.ClientMessage{Command: model.CmdStop}))
	assert.ErrorIs(t, Dispatch(ctx, s, model.ClientMessage{Command: model.CmdReset}), session.ErrInvalidTransition)

	err = Dispatch(ctx, s, model.ClientMessage{Command: "teleport"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestToHttp(t *testing.T) {
	assert.Equal(t, HTTP_SUCCESS, ToHttp(nil))
	assert.Equal(t, HTTP_CONFLICT, ToHttp(session.ErrInvalidEdit))
	assert.Equal(t, HTTP_CONFLICT, ToHttp(history.ErrEmpty))
	assert.Equal(t, HTTP_CONFLICT, ToHttp(search.ErrBusy))
	assert.Equal(t, HTTP_BAD_REQUEST, ToHttp(model.ErrOutOfBounds))
	assert.Equal(t, HTTP_BAD_REQUEST, ToHttp(ErrUnknownCommand))
	assert.Equal(t, HTTP_SERVER_ERR, ToHttp(assert.AnError))
}

func TestObserverStates(t *testing.T) {
	h := NewHub(newSession(t, 0), time.Second)
	h.observers = []*Observer{
		{Id: 1, State: OS_WATCH, Closed: make(chan struct{})},
		{Id: 2, State: OS_NEW, Closed: make(chan struct{})},
		{Id: 3, State: OS_WATCH, Closed: make(chan struct{})},
	}
	assert.Equal(t, 2, h.watching())

	gone := h.observers[2]
	h.removeObserver(3)
	assert.Equal(t, OS_ERR, gone.State)
	assert.Equal(t, 1, h.watching())
	assert.Len(t, h.observers, 2)
	select {
	case <-gone.Closed:
	default:
		t.Fatal("removed observer was not closed")
	}

	h.removeObserver(42)
	assert.Len(t, h.observers, 2)

	assert.Equal(t, "WATCH", OS_WATCH.Name())
	assert.Equal(t, "ERR", OS_ERR.Name())
	assert.Equal(t, "n/a:0", ObserverState(0).Name())
}

func TestHandleState(t *testing.T) {
	s := newSession(t, 0)
	h := NewHub(s, time.Second)

	rec := httptest.NewRecorder()
	h.HandleState()(rec, httptest.NewRequest(http.MethodGet, "/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var msg model.ServerMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, "Editing", msg.Phase)
	assert.Equal(t, model.Cell{X: 15, Y: 8}, msg.Target)
}

func TestHandleCommand(t *testing.T) {
	s := newSession(t, 0)
	h := startHub(t, s)

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.HandleCommand()(rec, httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(body)))
		return rec
	}

	rec := post(`{"command":"addObstacles","cells":[{"x":2,"y":3},{"x":0,"y":0}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var msg model.ServerMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, []model.Cell{{X: 2, Y: 3}}, msg.Obstacles)
	assert.Equal(t, 1, msg.UndoCount)

	assert.Equal(t, http.StatusBadRequest, post(`{"command":"moveStart","cell":{"x":40,"y":0}}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{"command":"fly"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`not json`).Code)
	assert.Equal(t, http.StatusConflict, post(`{"command":"redo"}`).Code)
	assert.Equal(t, http.StatusConflict, post(`{"command":"reset"}`).Code)
}

func TestWebsocketObserver(t *testing.T) {
	s := newSession(t, 0)
	h := startHub(t, s)
	srv := httptest.NewServer(h.HandleWebsocket())
	defer srv.Close()

	con, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer con.Close()

	read := func() model.ServerMessage {
		require.NoError(t, con.SetReadDeadline(time.Now().Add(5*time.Second)))
		messageType, r, err := con.NextReader()
		require.NoError(t, err)
		require.Equal(t, websocket.BinaryMessage, messageType)
		msg := model.ServerMessage{}
		require.NoError(t, gob.NewDecoder(r).Decode(&msg))
		return msg
	}
	write := func(cm model.ClientMessage) {
		var buf bytes.Buffer
		require.NoError(t, gob.NewEncoder(&buf).Encode(cm))
		require.NoError(t, con.WriteMessage(websocket.BinaryMessage, buf.Bytes()))
	}

	assert.Equal(t, "Editing", read().Phase)

	write(model.ClientMessage{Command: model.CmdAddObstacles, Cell: model.Cell{X: 6, Y: 6}})
	for msg := read(); len(msg.Obstacles) == 0; msg = read() {
	}

	write(model.ClientMessage{Command: model.CmdRun})
	var msg model.ServerMessage
	for msg = read(); msg.Phase != "Finished"; msg = read() {
	}
	assert.Equal(t, "Path", msg.Result)
	assert.Len(t, msg.Path, 24)
}

func TestLoadLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.txt")
	require.NoError(t, os.WriteFile(path, []byte("S.#.\n..#T\n"), 0o644))
	g, err := LoadLayout(path)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Width)
	assert.Equal(t, model.Cell{X: 3, Y: 1}, g.Target)
	assert.Len(t, g.Obstacles, 2)

	_, err = LoadLayout(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
