package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// CreateRequest is the body of POST /sessions
type CreateRequest struct {
	Fragment string `json:"fragment"`
}

// UpdateRequest is the body of PUT /sessions/{id}/{field}
type UpdateRequest struct {
	Value *string `json:"value"`
}

// Handler serves the session API
type Handler struct {
	sessions *Sessions
	origins  []string
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler creates a handler over sessions. Browser requests and
// websocket upgrades are admitted from allowedOrigins; nil means
// DefaultAllowedOrigins.
func NewHandler(sessions *Sessions, allowedOrigins []string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if allowedOrigins == nil {
		allowedOrigins = DefaultAllowedOrigins
	}

	h := &Handler{
		sessions: sessions,
		origins:  allowedOrigins,
		logger:   logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r.Header.Get("Origin"), h.origins)
		},
	}
	return h
}

// Routes builds the chi router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID, h.recovery, h.logging, cors(h.origins))

	r.Get("/healthz", h.health)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Delete("/", h.delete)
			r.Put("/entrypoint", h.updateEntrypoint)
			r.Put("/query", h.updateQuery)
			r.Put("/role", h.updateRole)
			r.Put("/element", h.updateElement)
			r.Get("/events", h.events)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "The requested resource was not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Method "+r.Method+" is not allowed for this resource", nil)
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": h.sessions.Len(),
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}

	sess, err := h.sessions.Create(r.Context(), req.Fragment)
	resp := sess.View()
	if err != nil {
		// The session exists; the failed load is reported alongside it
		resp.LoadError = err.Error()
	}
	w.Header().Set("Location", "/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		renderError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateEntrypoint(w http.ResponseWriter, r *http.Request) {
	sess, value, ok := h.sessionValue(w, r)
	if !ok {
		return
	}
	if err := sess.Engine.UpdateWithEntrypointURI(r.Context(), value); err != nil {
		view := sess.View()
		renderError(w, err, &view)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (h *Handler) updateQuery(w http.ResponseWriter, r *http.Request) {
	sess, value, ok := h.sessionValue(w, r)
	if !ok {
		return
	}
	sess.Engine.UpdateWithQuery(value)
	writeJSON(w, http.StatusOK, sess.View())
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	sess, value, ok := h.sessionValue(w, r)
	if !ok {
		return
	}
	sess.Engine.UpdateWithSelectedAccessRole(value)
	writeJSON(w, http.StatusOK, sess.View())
}

func (h *Handler) updateElement(w http.ResponseWriter, r *http.Request) {
	sess, value, ok := h.sessionValue(w, r)
	if !ok {
		return
	}
	sess.Engine.UpdateWithSelectedElement(value)
	writeJSON(w, http.StatusOK, sess.View())
}

func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sess.hub.add(conn, sess.message)
	defer sess.hub.remove(conn)

	// Drain reads so close frames are processed
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
	}
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, err, nil)
		return nil, false
	}
	return sess, true
}

func (h *Handler) sessionValue(w http.ResponseWriter, r *http.Request) (*Session, string, bool) {
	sess, ok := h.session(w, r)
	if !ok {
		return nil, "", false
	}

	var req UpdateRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return nil, "", false
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "missing \"value\"", nil)
		return nil, "", false
	}
	return sess, *req.Value, true
}

// decodeBody reads a JSON object into v. An empty body is accepted only
// when allowEmpty is set.
func decodeBody(r *http.Request, v interface{}, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}
