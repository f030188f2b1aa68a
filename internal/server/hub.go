package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/conduit-lang/apidocs/internal/fragment"
	"github.com/conduit-lang/apidocs/internal/state"
)

const writeWait = 10 * time.Second

// StateMessage is pushed to websocket clients on every state change
type StateMessage struct {
	Type     string       `json:"type"`
	Session  string       `json:"session"`
	Fragment string       `json:"fragment"`
	View     ViewResponse `json:"view"`
}

func newStateMessage(sess *Session, st state.State) *StateMessage {
	return &StateMessage{
		Type:     "state",
		Session:  sess.ID,
		Fragment: fragment.Encode(st.Params()),
		View:     newViewResponse(sess.ID, st),
	}
}

// hub fans state messages out to the websocket clients of one session.
// Writes are serialized under mu since a connection allows one writer.
type hub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	logger *zap.Logger
}

func newHub(logger *zap.Logger) *hub {
	return &hub{
		conns:  make(map[*websocket.Conn]struct{}),
		logger: logger,
	}
}

// add registers conn and sends it the current state
func (h *hub) add(conn *websocket.Conn, snapshot func() *StateMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[conn] = struct{}{}
	h.logger.Debug("client connected", zap.Int("clients", len(h.conns)))
	if err := h.writeLocked(conn, snapshot()); err != nil {
		h.dropLocked(conn, err)
	}
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		conn.Close()
		h.logger.Debug("client disconnected", zap.Int("clients", len(h.conns)))
	}
}

func (h *hub) broadcast(snapshot func() *StateMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.conns) == 0 {
		return
	}
	msg := snapshot()
	for conn := range h.conns {
		if err := h.writeLocked(conn, msg); err != nil {
			h.dropLocked(conn, err)
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
			time.Now().Add(time.Second))
		conn.Close()
		delete(h.conns, conn)
	}
}

func (h *hub) writeLocked(conn *websocket.Conn, msg *StateMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (h *hub) dropLocked(conn *websocket.Conn, err error) {
	h.logger.Debug("dropping client", zap.Error(err))
	delete(h.conns, conn)
	conn.Close()
}
