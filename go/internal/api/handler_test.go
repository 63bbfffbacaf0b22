package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/cueroom/go/internal/displays"
	"github.com/mcdev12/cueroom/go/internal/events"
	"github.com/mcdev12/cueroom/go/internal/gateway"
	"github.com/mcdev12/cueroom/go/internal/models"
	"github.com/mcdev12/cueroom/go/internal/rooms"
	"github.com/mcdev12/cueroom/go/internal/roomstate"
	"github.com/mcdev12/cueroom/go/internal/timer"
	"github.com/mcdev12/cueroom/go/internal/timers"
)

type fakeGateway struct {
	publishedKinds    []events.EventType
	publishedPayloads []json.RawMessage
	statusDeleted     []uuid.UUID
}

func (f *fakeGateway) ApplyTransition(ctx context.Context, roomID, timerID uuid.UUID, tr timer.Transition, deltaSeconds int) (*models.PlaybackStatus, error) {
	return &models.PlaybackStatus{RoomID: roomID, TimerID: &timerID}, nil
}

func (f *fakeGateway) ReadStatus(ctx context.Context, roomID uuid.UUID) (*models.PlaybackStatus, bool, error) {
	return nil, false, nil
}

func (f *fakeGateway) SetStatus(ctx context.Context, roomID uuid.UUID, status *models.PlaybackStatus) error {
	return nil
}

func (f *fakeGateway) DeleteStatus(ctx context.Context, roomID uuid.UUID) error {
	f.statusDeleted = append(f.statusDeleted, roomID)
	return nil
}

func (f *fakeGateway) SetRoomData(ctx context.Context, roomID uuid.UUID, key string, value json.RawMessage) error {
	return nil
}

func (f *fakeGateway) GetRoomData(ctx context.Context, roomID uuid.UUID, key string) (json.RawMessage, bool, error) {
	return nil, false, nil
}

func (f *fakeGateway) ListRoomKeys(ctx context.Context, roomID uuid.UUID) ([]string, error) {
	return nil, nil
}

func (f *fakeGateway) PublishEvent(ctx context.Context, roomID uuid.UUID, kind events.EventType, payload json.RawMessage) error {
	f.publishedKinds = append(f.publishedKinds, kind)
	f.publishedPayloads = append(f.publishedPayloads, payload)
	return nil
}

type fakeTimerService struct {
	byID        map[uuid.UUID]*models.Timer
	softDeleted []uuid.UUID
	erased      []uuid.UUID
}

func (f *fakeTimerService) CreateTimer(ctx context.Context, req timers.CreateTimerRequest) (*models.Timer, error) {
	return nil, timers.ErrTimerNotFound
}

func (f *fakeTimerService) GetTimer(ctx context.Context, id uuid.UUID) (*models.Timer, error) {
	tm, ok := f.byID[id]
	if !ok {
		return nil, timers.ErrTimerNotFound
	}
	return tm, nil
}

func (f *fakeTimerService) GetTimerByShareUUID(ctx context.Context, shareUUID string) (*models.Timer, error) {
	return nil, timers.ErrTimerNotFound
}

func (f *fakeTimerService) ListTimersByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Timer, error) {
	return nil, nil
}

func (f *fakeTimerService) UpdateTimer(ctx context.Context, id uuid.UUID, req timers.UpdateTimerRequest) (*models.Timer, error) {
	return f.GetTimer(ctx, id)
}

func (f *fakeTimerService) DeleteTimer(ctx context.Context, id uuid.UUID) error {
	f.softDeleted = append(f.softDeleted, id)
	return nil
}

func (f *fakeTimerService) EraseTimer(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return timers.ErrTimerNotFound
	}
	delete(f.byID, id)
	f.erased = append(f.erased, id)
	return nil
}

type fakeRoomService struct {
	owners      map[uuid.UUID]uuid.UUID
	softDeleted []uuid.UUID
	erased      []uuid.UUID
}

func (f *fakeRoomService) CreateRoom(ctx context.Context, req rooms.CreateRoomRequest) (*models.Room, error) {
	return nil, rooms.ErrRoomNotFound
}

func (f *fakeRoomService) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	owner, ok := f.owners[id]
	if !ok {
		return nil, rooms.ErrRoomNotFound
	}
	return &models.Room{ID: id, OwnerID: owner, Name: "greenroom", CreatedAt: time.Now()}, nil
}

func (f *fakeRoomService) ListRoomsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Room, error) {
	return nil, nil
}

func (f *fakeRoomService) UpdateRoom(ctx context.Context, id uuid.UUID, req rooms.UpdateRoomRequest) (*models.Room, error) {
	return f.GetRoom(ctx, id)
}

func (f *fakeRoomService) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	f.softDeleted = append(f.softDeleted, id)
	return nil
}

func (f *fakeRoomService) EraseRoom(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.owners[id]; !ok {
		return rooms.ErrRoomNotFound
	}
	delete(f.owners, id)
	f.erased = append(f.erased, id)
	return nil
}

func (f *fakeRoomService) AuthorizeOwner(ctx context.Context, roomID, ownerID uuid.UUID) error {
	owner, ok := f.owners[roomID]
	if !ok {
		return rooms.ErrRoomNotFound
	}
	if owner != ownerID {
		return rooms.ErrNotOwner
	}
	return nil
}

type fakeDisplayService struct{}

func (fakeDisplayService) CreateDisplay(ctx context.Context, req displays.CreateDisplayRequest) (*models.Display, error) {
	return nil, displays.ErrDisplayNotFound
}

func (fakeDisplayService) GetDisplay(ctx context.Context, id uuid.UUID) (*models.Display, error) {
	return nil, displays.ErrDisplayNotFound
}

func (fakeDisplayService) ListDisplaysByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Display, error) {
	return nil, nil
}

func (fakeDisplayService) UpdateDisplay(ctx context.Context, id uuid.UUID, req displays.UpdateDisplayRequest) (*models.Display, error) {
	return nil, displays.ErrDisplayNotFound
}

func (fakeDisplayService) DeleteDisplay(ctx context.Context, id uuid.UUID) error {
	return nil
}

type apiFixture struct {
	router  http.Handler
	gw      *fakeGateway
	timers  *fakeTimerService
	rooms   *fakeRoomService
	ownerID uuid.UUID
	roomID  uuid.UUID
	timerID uuid.UUID
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	f := &apiFixture{
		gw:      &fakeGateway{},
		ownerID: uuid.New(),
		roomID:  uuid.New(),
		timerID: uuid.New(),
	}
	f.rooms = &fakeRoomService{owners: map[uuid.UUID]uuid.UUID{f.roomID: f.ownerID}}
	f.timers = &fakeTimerService{byID: map[uuid.UUID]*models.Timer{
		f.timerID: {
			ID:        f.timerID,
			RoomID:    f.roomID,
			Title:     "keynote",
			TimerType: models.TimerTypeCountdown,
		},
	}}

	h := NewHandler(f.gw, f.timers, f.rooms, fakeDisplayService{})
	cm := gateway.NewConnectionManager(events.NewMemoryChannel(), gateway.DefaultConnectionConfig())
	ws := gateway.NewWebSocketHandler(cm, roomstate.NewMemoryStore())
	f.router = NewRouter(h, ws)
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, body string, asOwner bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if asOwner {
		req.Header.Set("X-Owner-ID", f.ownerID.String())
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestEraseTimerHardDeletes(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodDelete, "/v1/timers/"+f.timerID.String()+"/db", "", true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rec.Code, rec.Body.String())
	}
	if len(f.timers.erased) != 1 || f.timers.erased[0] != f.timerID {
		t.Errorf("erased = %v, want [%s]", f.timers.erased, f.timerID)
	}
	if len(f.timers.softDeleted) != 0 {
		t.Errorf("hard delete must not soft-delete: %v", f.timers.softDeleted)
	}
}

func TestEraseTimerRequiresOwnerHeader(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodDelete, "/v1/timers/"+f.timerID.String()+"/db", "", false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if len(f.timers.erased) != 0 {
		t.Errorf("timer erased without authorization: %v", f.timers.erased)
	}
}

func TestEraseRoomHardDeletesAndClearsStatus(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodDelete, "/v1/rooms/"+f.roomID.String()+"/db", "", true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rec.Code, rec.Body.String())
	}
	if len(f.rooms.erased) != 1 || f.rooms.erased[0] != f.roomID {
		t.Errorf("erased = %v, want [%s]", f.rooms.erased, f.roomID)
	}
	if len(f.gw.statusDeleted) != 1 || f.gw.statusDeleted[0] != f.roomID {
		t.Errorf("playback status not cleared: %v", f.gw.statusDeleted)
	}
}

func TestEraseRoomForbiddenForNonOwner(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodDelete, "/v1/rooms/"+f.roomID.String()+"/db", nil)
	req.Header.Set("X-Owner-ID", uuid.New().String())
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if len(f.rooms.erased) != 0 {
		t.Errorf("room erased by non-owner: %v", f.rooms.erased)
	}
}

func TestCustomEventEmptyBodyCarriesJSONNull(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/playback/event/"+f.roomID.String(), "", true)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	if len(f.gw.publishedPayloads) != 1 {
		t.Fatalf("published %d events, want 1", len(f.gw.publishedPayloads))
	}
	payload := f.gw.publishedPayloads[0]
	if string(payload) != "null" {
		t.Errorf("payload = %q, want JSON null", payload)
	}

	// The envelope built from that payload must survive marshaling on the
	// way to the wire.
	env := events.NewEnvelope(f.roomID, events.EventTypeCustom, time.Now(), payload)
	if _, err := json.Marshal(env); err != nil {
		t.Errorf("envelope with normalized payload failed to marshal: %v", err)
	}
}
