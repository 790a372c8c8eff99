package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/tale-engine/pkg/content"
	"github.com/jwebster45206/tale-engine/pkg/engine"
	"github.com/jwebster45206/tale-engine/pkg/narrator"
	"github.com/jwebster45206/tale-engine/pkg/state"
	"github.com/jwebster45206/tale-engine/pkg/storage"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateSessionRequest starts a new game.
type CreateSessionRequest struct {
	PlayerName    string `json:"player_name"`
	StartLocation string `json:"start_location,omitempty"`
}

// SessionResponse wraps the session ID with the core's reply.
type SessionResponse struct {
	ID    uuid.UUID     `json:"id"`
	Reply *engine.Reply `json:"reply,omitempty"`
}

// SessionHandler serves the game session API. Sessions live in memory; the
// durable part is the snapshot each session writes through its storage.
type SessionHandler struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*engine.Session

	tables        *content.Tables
	storage       storage.Storage
	embellisher   narrator.Embellisher
	startLocation string
	logger        *slog.Logger
}

func NewSessionHandler(tables *content.Tables, storage storage.Storage, embellisher narrator.Embellisher, startLocation string, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:      make(map[uuid.UUID]*engine.Session),
		tables:        tables,
		storage:       storage,
		embellisher:   embellisher,
		startLocation: startLocation,
		logger:        logger,
	}
}

// ServeHTTP handles HTTP requests for game sessions
// Routes:
// POST /v1/sessions               - Create a new session and start the game
// GET /v1/sessions/{id}           - Read session state by ID
// POST /v1/sessions/{id}/command  - Apply one command to the session
// DELETE /v1/sessions/{id}        - End a session and drop its snapshot
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/v1/sessions")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.Split(path, "/")
	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	if len(parts) == 2 && parts[1] == "command" {
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCommand(w, r, sessionID)
		return
	}
	if len(parts) > 1 {
		h.writeError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleRead(w, sessionID)
	case http.MethodDelete:
		h.handleDelete(w, r, sessionID)
	default:
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlayerName == "" {
		h.writeError(w, http.StatusBadRequest, "player_name is required")
		return
	}
	start := req.StartLocation
	if start == "" {
		start = h.startLocation
	}

	sess, err := engine.NewSession(req.PlayerName, start, h.tables, h.storage, h.embellisher, h.logger)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	reply, err := sess.Start(r.Context())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	id := sess.State().ID
	h.mu.Lock()
	h.sessions[id] = sess
	h.mu.Unlock()

	h.logger.Info("Session created", "session", id, "player", req.PlayerName)

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(SessionResponse{ID: id, Reply: reply}); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, sessionID uuid.UUID) {
	sess, ok := h.session(sessionID)
	if !ok {
		h.writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err := json.NewEncoder(w).Encode(sess.State()); err != nil {
		h.logger.Error("Failed to encode game state", "error", err)
	}
}

func (h *SessionHandler) handleCommand(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	sess, ok := h.session(sessionID)
	if !ok {
		h.writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var cmd state.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reply, err := sess.HandleCommand(r.Context(), cmd)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(SessionResponse{ID: sessionID, Reply: reply}); err != nil {
		h.logger.Error("Failed to encode command response", "error", err)
	}
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	h.mu.Lock()
	_, ok := h.sessions[sessionID]
	delete(h.sessions, sessionID)
	h.mu.Unlock()
	if !ok {
		h.writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if err := h.storage.DeleteSnapshot(r.Context(), sessionID.String()); err != nil {
		h.logger.Warn("Failed to delete snapshot", "session", sessionID, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) session(id uuid.UUID) (*engine.Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sess, ok := h.sessions[id]
	return sess, ok
}

func (h *SessionHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}

// writeEngineError maps core errors onto HTTP status codes. Dangling content
// references and authoring mistakes are server faults and logged loudly;
// illegal transitions are the client's.
func (h *SessionHandler) writeEngineError(w http.ResponseWriter, err error) {
	var refErr *content.ReferenceError
	var authErr *engine.AuthoringError

	switch {
	case errors.Is(err, engine.ErrIllegalTransition):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &refErr):
		h.logger.Error("Content reference error", "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
	case errors.As(err, &authErr):
		h.logger.Error("Content authoring error", "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
	default:
		h.logger.Error("Command failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
