package api

import (
	"encoding/json"
	"net/http"

	"github.com/mcdev12/cueroom/go/internal/rooms"
)

// CreateRoom handles POST /v1/rooms. The owner comes from the trusted
// header, not the body.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req rooms.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	req.OwnerID = owner

	rm, err := h.rooms.CreateRoom(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rm)
}

// ListRooms handles GET /v1/rooms: the caller's own rooms.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	list, err := h.rooms.ListRoomsByOwner(r.Context(), owner)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetRoom handles GET /v1/rooms/{roomID}.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := urlUUID(r, "roomID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	rm, err := h.rooms.GetRoom(r.Context(), roomID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rm)
}

// UpdateRoom handles PATCH /v1/rooms/{roomID}.
func (h *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := urlUUID(r, "roomID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	if !h.authorizeRoom(w, r, roomID) {
		return
	}

	var req rooms.UpdateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	rm, err := h.rooms.UpdateRoom(r.Context(), roomID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rm)
}

// DeleteRoom handles DELETE /v1/rooms/{roomID}. The room's playback status
// is cleared along with the record.
func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := urlUUID(r, "roomID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	if !h.authorizeRoom(w, r, roomID) {
		return
	}

	if err := h.rooms.DeleteRoom(r.Context(), roomID); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.gateway.DeleteStatus(r.Context(), roomID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EraseRoom handles DELETE /v1/rooms/{roomID}/db: the hard-delete variant.
// Timers and displays go with the row by cascade, and the room's playback
// status is cleared.
func (h *Handler) EraseRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := urlUUID(r, "roomID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	if !h.authorizeRoom(w, r, roomID) {
		return
	}

	if err := h.rooms.EraseRoom(r.Context(), roomID); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.gateway.DeleteStatus(r.Context(), roomID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
