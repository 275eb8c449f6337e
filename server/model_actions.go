package server

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/zucenko/pathviz/model"
	"github.com/zucenko/pathviz/session"
)

const timeout = time.Second

func NewHub(s *session.Session, pushInterval time.Duration) *Hub {
	return &Hub{
		Session:          s,
		Upgrader:         &websocket.Upgrader{},
		PushInterval:     pushInterval,
		Commands:         make(chan Command, 64),
		ObserverConnects: make(chan ObserverConnectRequest),
		ObserverErrors:   make(chan int32),
		observers:        make([]*Observer, 0),
		done:             make(chan struct{}),
	}
}

// HandleWebsocket upgrades the request and keeps it open until the
// observer leaves or the hub stops.
func (h *Hub) HandleWebsocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		con, err := h.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warnf("HandleWebsocket upgrade err %v", err)
			return
		}
		defer con.Close()

		closed := make(chan struct{})
		select {
		case h.ObserverConnects <- ObserverConnectRequest{Con: con, Closed: closed}:
		case <-h.done:
			return
		case <-time.After(timeout):
			log.Warn("HandleWebsocket ObserverConnects TIMEOUTED")
			return
		}
		<-closed
	}
}

// HandleState serves the current snapshot as JSON.
func (h *Hub) HandleState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, HTTP_SUCCESS, h.Session.Message())
	}
}

// HandleCommand applies one JSON ClientMessage and answers with the
// resulting snapshot.
func (h *Hub) HandleCommand() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cm model.ClientMessage
		if err := json.NewDecoder(r.Body).Decode(&cm); err != nil {
			http.Error(w, err.Error(), HTTP_BAD_REQUEST)
			return
		}
		reply := make(chan error, 1)
		select {
		case h.Commands <- Command{Message: cm, Reply: reply}:
		case <-h.done:
			w.WriteHeader(HTTP_SERVER_ERR)
			return
		case <-time.After(timeout):
			log.Warn("HandleCommand Commands TIMEOUTED")
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}
		select {
		case err := <-reply:
			if err != nil {
				http.Error(w, err.Error(), ToHttp(err))
				return
			}
		case <-time.After(timeout):
			log.Warnf("HandleCommand %s reply TIMEOUTED", cm.Command)
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}
		writeJSON(w, HTTP_SUCCESS, h.Session.Message())
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("writeJSON %v", err)
	}
}

// Loop owns the observer list and applies commands until ctx is done.
// Searches started by commands run under ctx.
func (h *Hub) Loop(ctx context.Context) {
	log.Info("Hub.Loop starting")
	defer close(h.done)
	ticker := time.NewTicker(h.PushInterval)
	defer ticker.Stop()

	dirty := true
	lastPhase := ""
	for {
		select {
		case <-ctx.Done():
			for _, o := range h.observers {
				o.State = OS_OVER
				close(o.Closed)
			}
			log.Infof("Hub.Loop ended, %d observers %s", len(h.observers), OS_OVER.Name())
			h.observers = h.observers[:0]
			return
		case req := <-h.ObserverConnects:
			o := h.addObserver(req.Con, req.Closed)
			log.Infof("Hub.Loop observer %d %s, %d watching", o.Id, o.State.Name(), h.watching())
			o.send(h.Session.Message())
		case id := <-h.ObserverErrors:
			h.removeObserver(id)
		case cmd := <-h.Commands:
			err := Dispatch(ctx, h.Session, cmd.Message)
			if err != nil {
				log.WithError(err).Debugf("Hub.Loop command %s from %d rejected", cmd.Message.Command, cmd.Observer)
			}
			if cmd.Reply != nil {
				cmd.Reply <- err
			}
			dirty = true
		case <-ticker.C:
			if len(h.observers) == 0 {
				continue
			}
			msg := h.Session.Message()
			if !dirty && msg.Phase == lastPhase && msg.Phase != session.Simulating.Name() {
				continue
			}
			dirty = false
			lastPhase = msg.Phase
			for _, o := range h.observers {
				o.send(msg)
			}
		}
	}
}

func (h *Hub) addObserver(conn *websocket.Conn, closed chan struct{}) *Observer {
	h.nextId++
	o := &Observer{
		State:          OS_NEW,
		Id:             h.nextId,
		Hub:            h,
		Conn:           conn,
		Closed:         closed,
		MessagesToSend: make(chan model.ServerMessage, 10),
	}
	conn.SetPingHandler(
		func(message string) error {
			err := conn.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(time.Second))
			o.DebugLastPing = time.Now()
			o.DebugPings++
			if err == websocket.ErrCloseSent {
				return nil
			} else if e, ok := err.(net.Error); ok && e.Timeout() {
				return nil
			}
			return err
		})
	go o.LoopChannelRead()
	go o.LoopChannelWrite()
	o.State = OS_WATCH
	h.observers = append(h.observers, o)
	return o
}

// watching counts observers that still receive snapshots.
func (h *Hub) watching() int {
	n := 0
	for _, o := range h.observers {
		if o.State == OS_WATCH {
			n++
		}
	}
	return n
}

func (h *Hub) removeObserver(id int32) {
	for i, o := range h.observers {
		if o.Id != id {
			continue
		}
		o.State = OS_ERR
		close(o.Closed)
		h.observers = append(h.observers[:i], h.observers[i+1:]...)
		log.Infof("Hub.Loop observer %d %s, %d watching", id, o.State.Name(), h.watching())
		return
	}
}

// send never blocks the hub; a slow observer misses snapshots.
func (o *Observer) send(msg model.ServerMessage) {
	select {
	case o.MessagesToSend <- msg:
	default:
		log.Warnf("Observer %d MessagesToSend FULL, dropping snapshot", o.Id)
	}
}

// fail reports the observer to the hub unless it is already gone.
func (o *Observer) fail() {
	select {
	case o.Hub.ObserverErrors <- o.Id:
	case <-o.Closed:
	case <-o.Hub.done:
	}
}

func (o *Observer) LoopChannelRead() {
	log.Debugf("Observer %d LoopChannelRead STARTED", o.Id)
	for {
		_, r, err := o.Conn.NextReader()
		if err != nil {
			log.Debugf("Observer %d LoopChannelRead err %v", o.Id, err)
			o.fail()
			break
		}
		cm := model.ClientMessage{}
		if err := gob.NewDecoder(r).Decode(&cm); err != nil {
			log.Warnf("Observer %d LoopChannelRead cant decode %v", o.Id, err)
			o.fail()
			break
		}
		o.DebugLastMessage = time.Now()
		o.DebugInMessages++

		select {
		case o.Hub.Commands <- Command{Observer: o.Id, Message: cm}:
		default:
			log.Warnf("Observer %d dropping %s, Hub.Commands FULL", o.Id, cm.Command)
		}
	}
	log.Debugf("Observer %d LoopChannelRead ENDED after %d messages", o.Id, o.DebugInMessages)
}

// LoopChannelWrite only consumes, so the hub never waits on a socket.
func (o *Observer) LoopChannelWrite() {
	log.Debugf("Observer %d LoopChannelWrite STARTED", o.Id)
loop:
	for {
		select {
		case <-o.Closed:
			break loop
		case mes := <-o.MessagesToSend:
			w, err := o.Conn.NextWriter(websocket.BinaryMessage)
			if err != nil {
				log.Warnf("Observer %d LoopChannelWrite cant get writer %v", o.Id, err)
				o.fail()
				break loop
			}
			if err := gob.NewEncoder(w).Encode(mes); err != nil {
				log.Warnf("Observer %d LoopChannelWrite cant encode %v", o.Id, err)
				o.fail()
				break loop
			}
			if err := w.Close(); err != nil {
				log.Warnf("Observer %d LoopChannelWrite cant flush %v", o.Id, err)
				o.fail()
				break loop
			}
			o.DebugOutMessages++
		}
	}
	log.Debugf("Observer %d LoopChannelWrite ENDED after %d messages", o.Id, o.DebugOutMessages)
}
