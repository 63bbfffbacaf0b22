package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/cueroom/go/internal/roomstate"
)

// snapshotMessage is pushed to a viewer right after connect so late joiners
// converge without waiting for the next event.
type snapshotMessage struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"room_id"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WebSocketHandler upgrades viewer requests and seeds them with the current
// room playback status.
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	store             roomstate.Store
}

// NewWebSocketHandler creates a WebSocket handler.
func NewWebSocketHandler(cm *ConnectionManager, store roomstate.Store) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		store:             store,
	}
}

// HandleRoomConnection handles GET /ws/rooms/{roomID}.
func (h *WebSocketHandler) HandleRoomConnection(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}

	conn, err := h.connectionManager.UpgradeConnection(w, r, roomID)
	if err != nil {
		log.Error().
			Err(err).
			Str("room_id", roomID.String()).
			Msg("failed to upgrade WebSocket connection")
		return
	}

	h.sendSnapshot(r, conn, roomID)
}

// sendSnapshot pushes the stored playback status to a fresh connection.
// Viewers that join mid-run reconcile from this; there is no event replay.
func (h *WebSocketHandler) sendSnapshot(r *http.Request, conn *Connection, roomID uuid.UUID) {
	status, ok, err := h.store.GetPlaybackStatus(r.Context(), roomID)
	if err != nil {
		log.Warn().Err(err).Str("room_id", roomID.String()).Msg("failed to load snapshot for new connection")
		return
	}

	msg := snapshotMessage{Type: "status_snapshot", RoomID: roomID.String()}
	if ok {
		payload, err := json.Marshal(status)
		if err != nil {
			log.Error().Err(err).Msg("failed to marshal playback status snapshot")
			return
		}
		msg.Payload = payload
	}
	if err := conn.SendJSON(msg); err != nil {
		log.Warn().
			Err(err).
			Str("connection_id", conn.ID).
			Msg("failed to queue snapshot")
	}
}

// HandleConnectionStats handles GET /ws/stats.
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	total, rooms := h.connectionManager.ConnectionStats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"total_connections": total,
		"active_rooms":      len(rooms),
		"room_connections":  rooms,
	})
}
