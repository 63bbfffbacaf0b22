package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mcdev12/cueroom/go/internal/events"
	"github.com/mcdev12/cueroom/go/internal/models"
)

// maxRoomDataBytes bounds ad-hoc room data payloads.
const maxRoomDataBytes = 64 << 10

// GetPlaybackStatus handles GET /v1/playback/status/{roomID}.
func (h *Handler) GetPlaybackStatus(w http.ResponseWriter, r *http.Request) {
	roomID, err := urlUUID(r, "roomID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	status, ok, err := h.gateway.ReadStatus(r.Context(), roomID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no playback status for room")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// PutPlaybackStatus handles PUT /v1/playback/status/{roomID}. The body fully
// replaces the stored status.
func (h *Handler) PutPlaybackStatus(w http.ResponseWriter, r *http.Request) {
	roomID, err := urlUUID(r, "roomID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	if !h.authorizeRoom(w, r, roomID) {
		return
	}

	var status models.PlaybackStatus
	if err := json.NewDecoder(r.Body).Decode(&status); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	status.RoomID = roomID

	if err := h.gateway.SetStatus(r.Context(), roomID, &status); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// DeletePlaybackStatus handles DELETE /v1/playback/status/{roomID}.
func (h *Handler) DeletePlaybackStatus(w http.ResponseWriter, r *http.Request) {
	roomID, err := urlUUID(r, "roomID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	if !h.authorizeRoom(w, r, roomID) {
		return
	}

	if err := h.gateway.DeleteStatus(r.Context(), roomID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostPlaybackEvent handles POST /v1/playback/event/{roomID}: an ad-hoc
// custom event published to the room's channel without touching stored state.
func (h *Handler) PostPlaybackEvent(w http.ResponseWriter, r *http.Request) {
	roomID, err := urlUUID(r, "roomID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	if !h.authorizeRoom(w, r, roomID) {
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxRoomDataBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	// A bodyless event is a pure signal; carry a JSON null so the envelope
	// stays marshalable end to end.
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	if !json.Valid(payload) {
		writeError(w, http.StatusBadRequest, "payload must be json")
		return
	}

	if err := h.gateway.PublishEvent(r.Context(), roomID, events.EventTypeCustom, payload); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// PutRoomData handles PUT /v1/playback/data/{roomID}/{key}.
func (h *Handler) PutRoomData(w http.ResponseWriter, r *http.Request) {
	roomID, err := urlUUID(r, "roomID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	key := chi.URLParam(r, "key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	if !h.authorizeRoom(w, r, roomID) {
		return
	}

	value, err := io.ReadAll(io.LimitReader(r.Body, maxRoomDataBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	if !json.Valid(value) {
		writeError(w, http.StatusBadRequest, "value must be json")
		return
	}

	if err := h.gateway.SetRoomData(r.Context(), roomID, key, value); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRoomData handles GET /v1/playback/data/{roomID}/{key}.
func (h *Handler) GetRoomData(w http.ResponseWriter, r *http.Request) {
	roomID, err := urlUUID(r, "roomID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	key := chi.URLParam(r, "key")

	value, ok, err := h.gateway.GetRoomData(r.Context(), roomID, key)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "key not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(value)
}

// GetRoomKeys handles GET /v1/playback/keys/{roomID}.
func (h *Handler) GetRoomKeys(w http.ResponseWriter, r *http.Request) {
	roomID, err := urlUUID(r, "roomID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	keys, err := h.gateway.ListRoomKeys(r.Context(), roomID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"keys": keys})
}
