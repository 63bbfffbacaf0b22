package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mcdev12/cueroom/go/internal/timer"
	"github.com/mcdev12/cueroom/go/internal/timers"
)

// adjustRequest is the body of POST /v1/timers/{timerID}/adjust.
type adjustRequest struct {
	DeltaSeconds int `json:"delta_seconds"`
}

// CreateTimer handles POST /v1/timers.
func (h *Handler) CreateTimer(w http.ResponseWriter, r *http.Request) {
	var req timers.CreateTimerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !h.authorizeRoom(w, r, req.RoomID) {
		return
	}

	tm, err := h.timers.CreateTimer(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tm)
}

// GetTimer handles GET /v1/timers/{timerID}.
func (h *Handler) GetTimer(w http.ResponseWriter, r *http.Request) {
	timerID, err := urlUUID(r, "timerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid timer id")
		return
	}

	tm, err := h.timers.GetTimer(r.Context(), timerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tm)
}

// GetTimerByShare handles GET /v1/timers/share/{shareUUID}: the read-only
// viewer lookup by share token.
func (h *Handler) GetTimerByShare(w http.ResponseWriter, r *http.Request) {
	shareUUID := chi.URLParam(r, "shareUUID")
	if shareUUID == "" {
		writeError(w, http.StatusBadRequest, "share uuid is required")
		return
	}

	tm, err := h.timers.GetTimerByShareUUID(r.Context(), shareUUID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tm)
}

// ListRoomTimers handles GET /v1/rooms/{roomID}/timers.
func (h *Handler) ListRoomTimers(w http.ResponseWriter, r *http.Request) {
	roomID, err := urlUUID(r, "roomID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	list, err := h.timers.ListTimersByRoom(r.Context(), roomID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// UpdateTimer handles PATCH /v1/timers/{timerID}.
func (h *Handler) UpdateTimer(w http.ResponseWriter, r *http.Request) {
	timerID, err := urlUUID(r, "timerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid timer id")
		return
	}
	tm, err := h.timers.GetTimer(r.Context(), timerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !h.authorizeRoom(w, r, tm.RoomID) {
		return
	}

	var req timers.UpdateTimerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	updated, err := h.timers.UpdateTimer(r.Context(), timerID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteTimer handles DELETE /v1/timers/{timerID}.
func (h *Handler) DeleteTimer(w http.ResponseWriter, r *http.Request) {
	timerID, err := urlUUID(r, "timerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid timer id")
		return
	}
	tm, err := h.timers.GetTimer(r.Context(), timerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !h.authorizeRoom(w, r, tm.RoomID) {
		return
	}

	if err := h.timers.DeleteTimer(r.Context(), timerID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EraseTimer handles DELETE /v1/timers/{timerID}/db: the hard-delete variant
// that removes the row outright instead of soft-deleting it.
func (h *Handler) EraseTimer(w http.ResponseWriter, r *http.Request) {
	if _, err := ownerID(r); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	timerID, err := urlUUID(r, "timerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid timer id")
		return
	}
	tm, err := h.timers.GetTimer(r.Context(), timerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !h.authorizeRoom(w, r, tm.RoomID) {
		return
	}

	if err := h.timers.EraseTimer(r.Context(), timerID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TimerTransition handles POST /v1/timers/{timerID}/{start|pause|resume|stop|adjust}.
// It returns the playback status written by the transition.
func (h *Handler) TimerTransition(tr timer.Transition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timerID, err := urlUUID(r, "timerID")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid timer id")
			return
		}

		tm, err := h.timers.GetTimer(r.Context(), timerID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if !h.authorizeRoom(w, r, tm.RoomID) {
			return
		}

		var delta int
		if tr == timer.TransitionAdjust {
			var req adjustRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid json")
				return
			}
			if req.DeltaSeconds == 0 {
				writeError(w, http.StatusBadRequest, "delta_seconds must be non-zero")
				return
			}
			delta = req.DeltaSeconds
		}

		status, err := h.gateway.ApplyTransition(r.Context(), tm.RoomID, timerID, tr, delta)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}
