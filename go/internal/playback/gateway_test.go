package playback

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/cueroom/go/internal/events"
	"github.com/mcdev12/cueroom/go/internal/models"
	"github.com/mcdev12/cueroom/go/internal/roomstate"
	"github.com/mcdev12/cueroom/go/internal/timer"
)

// fakeTimerStore is an in-memory durable boundary for gateway tests.
type fakeTimerStore struct {
	mu     sync.Mutex
	timers map[uuid.UUID]*models.Timer
}

func newFakeTimerStore() *fakeTimerStore {
	return &fakeTimerStore{timers: make(map[uuid.UUID]*models.Timer)}
}

func (s *fakeTimerStore) put(t *models.Timer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.timers[t.ID] = &cp
}

func (s *fakeTimerStore) LoadTimer(ctx context.Context, id uuid.UUID) (*models.Timer, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[id]
	if !ok {
		return nil, false, nil
	}
	cp := *t
	return &cp, true, nil
}

func (s *fakeTimerStore) UpdateTimerRunState(ctx context.Context, t *models.Timer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.timers[t.ID] = &cp
	return nil
}

// orderRecorder notes whether the store write or the publish happened first.
type orderRecorder struct {
	mu  sync.Mutex
	ops []string
}

func (r *orderRecorder) record(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

type recordingStore struct {
	roomstate.Store
	rec *orderRecorder
}

func (s *recordingStore) SetPlaybackStatus(ctx context.Context, roomID uuid.UUID, status *models.PlaybackStatus) error {
	err := s.Store.SetPlaybackStatus(ctx, roomID, status)
	if err == nil {
		s.rec.record("store")
	}
	return err
}

type recordingChannel struct {
	events.Channel
	rec *orderRecorder
}

func (c *recordingChannel) Publish(ctx context.Context, roomID uuid.UUID, env events.Envelope) error {
	err := c.Channel.Publish(ctx, roomID, env)
	if err == nil {
		c.rec.record("publish")
	}
	return err
}

type failingChannel struct{}

func (failingChannel) Publish(ctx context.Context, roomID uuid.UUID, env events.Envelope) error {
	return events.ErrChannelUnavailable
}

func (failingChannel) Subscribe(ctx context.Context, roomID uuid.UUID) (events.Subscription, error) {
	return nil, events.ErrChannelUnavailable
}

type gatewayFixture struct {
	gw      *Gateway
	store   *roomstate.MemoryStore
	channel *events.MemoryChannel
	timers  *fakeTimerStore
	clock   *clockwork.FakeClock
	roomID  uuid.UUID
	timerID uuid.UUID
}

func newFixture(t *testing.T) *gatewayFixture {
	t.Helper()
	clock := clockwork.NewFakeClock()
	store := roomstate.NewMemoryStore()
	channel := events.NewMemoryChannel()
	timers := newFakeTimerStore()

	roomID := uuid.New()
	duration := 600
	tm := &models.Timer{
		ID:              uuid.New(),
		RoomID:          roomID,
		ShareUUID:       uuid.New().String(),
		Title:           "keynote",
		TimerType:       models.TimerTypeCountdown,
		DurationSeconds: &duration,
	}
	timers.put(tm)

	return &gatewayFixture{
		gw:      NewGateway(store, channel, timers, clock),
		store:   store,
		channel: channel,
		timers:  timers,
		clock:   clock,
		roomID:  roomID,
		timerID: tm.ID,
	}
}

func TestApplyTransitionStart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status, err := f.gw.ApplyTransition(ctx, f.roomID, f.timerID, timer.TransitionStart, 0)
	if err != nil {
		t.Fatalf("ApplyTransition(start): %v", err)
	}
	if !status.IsActive || status.IsPaused {
		t.Fatalf("status after start: %+v", status)
	}
	if status.CurrentTimeSeconds != 600 {
		t.Fatalf("CurrentTimeSeconds = %d, want 600", status.CurrentTimeSeconds)
	}

	// The store must hold exactly the returned document.
	stored, found, err := f.gw.ReadStatus(ctx, f.roomID)
	if err != nil || !found {
		t.Fatalf("ReadStatus: found=%v err=%v", found, err)
	}
	if stored.TimerID == nil || *stored.TimerID != f.timerID {
		t.Fatalf("stored status points at %v, want %s", stored.TimerID, f.timerID)
	}

	// The durable record carries the same run state.
	tm, _, _ := f.timers.LoadTimer(ctx, f.timerID)
	if !tm.IsActive || tm.StartedAt == nil {
		t.Fatalf("durable timer not updated: %+v", tm)
	}
}

func TestApplyTransitionUnknownTimer(t *testing.T) {
	f := newFixture(t)

	_, err := f.gw.ApplyTransition(context.Background(), f.roomID, uuid.New(), timer.TransitionStart, 0)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestApplyTransitionWrongRoom(t *testing.T) {
	f := newFixture(t)

	_, err := f.gw.ApplyTransition(context.Background(), uuid.New(), f.timerID, timer.TransitionStart, 0)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("timer must not be reachable through another room: err = %v", err)
	}
}

func TestInvalidTransitionHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sub, err := f.channel.Subscribe(ctx, f.roomID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	// Pause an idle timer: must fail fast, before store or channel.
	_, err = f.gw.ApplyTransition(ctx, f.roomID, f.timerID, timer.TransitionPause, 0)
	if !errors.Is(err, timer.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}

	if _, found, _ := f.gw.ReadStatus(ctx, f.roomID); found {
		t.Fatal("failed transition wrote a playback status")
	}
	select {
	case env := <-sub.C():
		t.Fatalf("failed transition published an event: %+v", env)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestConcurrentPauseExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.gw.ApplyTransition(ctx, f.roomID, f.timerID, timer.TransitionStart, 0); err != nil {
		t.Fatalf("start: %v", err)
	}

	const callers = 2
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.gw.ApplyTransition(ctx, f.roomID, f.timerID, timer.TransitionPause, 0)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, invalid int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, timer.ErrInvalidTransition):
			invalid++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || invalid != 1 {
		t.Fatalf("ok=%d invalid=%d, want exactly one of each", ok, invalid)
	}

	tm, _, _ := f.timers.LoadTimer(ctx, f.timerID)
	if !tm.IsPaused || tm.PausedAt == nil {
		t.Fatalf("timer not paused exactly once: %+v", tm)
	}
}

func TestWriteHappensBeforePublish(t *testing.T) {
	f := newFixture(t)
	rec := &orderRecorder{}
	gw := NewGateway(
		&recordingStore{Store: f.store, rec: rec},
		&recordingChannel{Channel: f.channel, rec: rec},
		f.timers,
		f.clock,
	)

	if _, err := gw.ApplyTransition(context.Background(), f.roomID, f.timerID, timer.TransitionStart, 0); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if err := gw.SetRoomData(context.Background(), f.roomID, "cue", json.RawMessage(`{}`)); err != nil {
		t.Fatalf("SetRoomData: %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.ops) < 2 || rec.ops[0] != "store" || rec.ops[1] != "publish" {
		t.Fatalf("ops = %v, want store before publish", rec.ops)
	}
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	gw := NewGateway(f.store, failingChannel{}, f.timers, f.clock)
	ctx := context.Background()

	status, err := gw.ApplyTransition(ctx, f.roomID, f.timerID, timer.TransitionStart, 0)
	if err != nil {
		t.Fatalf("publish failure leaked to the caller: %v", err)
	}
	if status == nil || !status.IsActive {
		t.Fatalf("status = %+v", status)
	}

	// The store remains authoritative.
	stored, found, err := gw.ReadStatus(ctx, f.roomID)
	if err != nil || !found {
		t.Fatalf("ReadStatus: found=%v err=%v", found, err)
	}
	if !stored.IsActive {
		t.Fatalf("stored status = %+v", stored)
	}
}

func TestSetRoomDataPublishesAndPersists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sub, err := f.channel.Subscribe(ctx, f.roomID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	value := json.RawMessage(`{"text":"intro"}`)
	if err := f.gw.SetRoomData(ctx, f.roomID, "cue", value); err != nil {
		t.Fatalf("SetRoomData: %v", err)
	}

	select {
	case env := <-sub.C():
		if env.Type != events.EventTypeRoomDataChanged {
			t.Fatalf("event type = %s", env.Type)
		}
		var change RoomDataChange
		if err := json.Unmarshal(env.Payload, &change); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if change.Key != "cue" || string(change.Value) != `{"text":"intro"}` {
			t.Fatalf("change = %+v", change)
		}
	case <-time.After(time.Second):
		t.Fatal("no room_data_changed event delivered")
	}

	got, found, err := f.gw.GetRoomData(ctx, f.roomID, "cue")
	if err != nil || !found {
		t.Fatalf("GetRoomData: found=%v err=%v", found, err)
	}
	if string(got) != `{"text":"intro"}` {
		t.Fatalf("value = %s", got)
	}
}

func TestLockContentionTimesOut(t *testing.T) {
	f := newFixture(t)

	// Hold the timer's lock so the transition cannot acquire it.
	release, err := f.gw.locks.acquire(context.Background(), f.timerID)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = f.gw.ApplyTransition(ctx, f.roomID, f.timerID, timer.TransitionStart, 0)
	if !errors.Is(err, ErrConcurrentModification) {
		t.Fatalf("err = %v, want ErrConcurrentModification", err)
	}
}

func TestNaturalCompletionObservedOnTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.gw.ApplyTransition(ctx, f.roomID, f.timerID, timer.TransitionStart, 0); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.clock.Advance(601 * time.Second)

	// The countdown ran out; pausing it must now be invalid.
	_, err := f.gw.ApplyTransition(ctx, f.roomID, f.timerID, timer.TransitionPause, 0)
	if !errors.Is(err, timer.ErrInvalidTransition) {
		t.Fatalf("pause after expiry: err = %v, want ErrInvalidTransition", err)
	}
}
