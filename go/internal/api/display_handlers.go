package api

import (
	"encoding/json"
	"net/http"

	"github.com/mcdev12/cueroom/go/internal/displays"
)

// CreateDisplay handles POST /v1/displays.
func (h *Handler) CreateDisplay(w http.ResponseWriter, r *http.Request) {
	var req displays.CreateDisplayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !h.authorizeRoom(w, r, req.RoomID) {
		return
	}

	d, err := h.displays.CreateDisplay(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// GetDisplay handles GET /v1/displays/{displayID}.
func (h *Handler) GetDisplay(w http.ResponseWriter, r *http.Request) {
	displayID, err := urlUUID(r, "displayID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid display id")
		return
	}

	d, err := h.displays.GetDisplay(r.Context(), displayID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// ListRoomDisplays handles GET /v1/rooms/{roomID}/displays.
func (h *Handler) ListRoomDisplays(w http.ResponseWriter, r *http.Request) {
	roomID, err := urlUUID(r, "roomID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	list, err := h.displays.ListDisplaysByRoom(r.Context(), roomID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// UpdateDisplay handles PATCH /v1/displays/{displayID}.
func (h *Handler) UpdateDisplay(w http.ResponseWriter, r *http.Request) {
	displayID, err := urlUUID(r, "displayID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid display id")
		return
	}
	d, err := h.displays.GetDisplay(r.Context(), displayID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !h.authorizeRoom(w, r, d.RoomID) {
		return
	}

	var req displays.UpdateDisplayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	updated, err := h.displays.UpdateDisplay(r.Context(), displayID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteDisplay handles DELETE /v1/displays/{displayID}.
func (h *Handler) DeleteDisplay(w http.ResponseWriter, r *http.Request) {
	displayID, err := urlUUID(r, "displayID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid display id")
		return
	}
	d, err := h.displays.GetDisplay(r.Context(), displayID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !h.authorizeRoom(w, r, d.RoomID) {
		return
	}

	if err := h.displays.DeleteDisplay(r.Context(), displayID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
