package roomstate

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/cueroom/go/internal/models"
)

func TestPlaybackStatusRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	roomID := uuid.New()
	timerID := uuid.New()

	if _, found, err := s.GetPlaybackStatus(ctx, roomID); err != nil || found {
		t.Fatalf("fresh room: found=%v err=%v, want absent with no error", found, err)
	}

	status := &models.PlaybackStatus{
		RoomID:             roomID,
		TimerID:            &timerID,
		TimerType:          models.TimerTypeCountdown,
		IsActive:           true,
		CurrentTimeSeconds: 120,
		UpdatedAt:          time.Now().UTC(),
	}
	if err := s.SetPlaybackStatus(ctx, roomID, status); err != nil {
		t.Fatalf("SetPlaybackStatus: %v", err)
	}

	got, found, err := s.GetPlaybackStatus(ctx, roomID)
	if err != nil || !found {
		t.Fatalf("GetPlaybackStatus: found=%v err=%v", found, err)
	}
	if *got != *status {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, status)
	}

	if err := s.DeletePlaybackStatus(ctx, roomID); err != nil {
		t.Fatalf("DeletePlaybackStatus: %v", err)
	}
	if _, found, _ := s.GetPlaybackStatus(ctx, roomID); found {
		t.Fatal("status still present after delete")
	}
}

func TestFullReplaceDropsStaleFields(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	roomID := uuid.New()
	timerID := uuid.New()

	started := time.Now().UTC()
	first := &models.PlaybackStatus{RoomID: roomID, TimerID: &timerID, IsActive: true, StartedAt: &started}
	if err := s.SetPlaybackStatus(ctx, roomID, first); err != nil {
		t.Fatalf("SetPlaybackStatus: %v", err)
	}

	second := &models.PlaybackStatus{RoomID: roomID, IsStopped: true}
	if err := s.SetPlaybackStatus(ctx, roomID, second); err != nil {
		t.Fatalf("SetPlaybackStatus: %v", err)
	}

	got, _, err := s.GetPlaybackStatus(ctx, roomID)
	if err != nil {
		t.Fatalf("GetPlaybackStatus: %v", err)
	}
	if got.TimerID != nil || got.StartedAt != nil || got.IsActive {
		t.Fatalf("replace leaked fields from the previous document: %+v", got)
	}
}

func TestRoomDataScoping(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	roomA := uuid.New()
	roomB := uuid.New()

	if err := s.SetRoomData(ctx, roomA, "cue", json.RawMessage(`{"text":"intro"}`)); err != nil {
		t.Fatalf("SetRoomData: %v", err)
	}

	if _, found, _ := s.GetRoomData(ctx, roomB, "cue"); found {
		t.Fatal("room B can observe room A's data")
	}
	value, found, err := s.GetRoomData(ctx, roomA, "cue")
	if err != nil || !found {
		t.Fatalf("GetRoomData: found=%v err=%v", found, err)
	}
	if string(value) != `{"text":"intro"}` {
		t.Fatalf("value = %s", value)
	}
}

func TestLastWriterWins(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	roomID := uuid.New()

	if err := s.SetRoomData(ctx, roomID, "cue", json.RawMessage(`"one"`)); err != nil {
		t.Fatalf("SetRoomData: %v", err)
	}
	if err := s.SetRoomData(ctx, roomID, "cue", json.RawMessage(`"two"`)); err != nil {
		t.Fatalf("SetRoomData: %v", err)
	}

	value, _, err := s.GetRoomData(ctx, roomID, "cue")
	if err != nil {
		t.Fatalf("GetRoomData: %v", err)
	}
	if string(value) != `"two"` {
		t.Fatalf("value = %s, want the later write", value)
	}
}

func TestListRoomKeys(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	roomID := uuid.New()

	keys, err := s.ListRoomKeys(ctx, roomID)
	if err != nil {
		t.Fatalf("ListRoomKeys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("fresh room has keys: %v", keys)
	}

	for _, k := range []string{"cue", "overlay", "next_speaker"} {
		if err := s.SetRoomData(ctx, roomID, k, json.RawMessage(`{}`)); err != nil {
			t.Fatalf("SetRoomData(%s): %v", k, err)
		}
	}
	if err := s.SetRoomData(ctx, uuid.New(), "other_room", json.RawMessage(`{}`)); err != nil {
		t.Fatalf("SetRoomData: %v", err)
	}

	keys, err = s.ListRoomKeys(ctx, roomID)
	if err != nil {
		t.Fatalf("ListRoomKeys: %v", err)
	}
	sort.Strings(keys)
	want := []string{"cue", "next_speaker", "overlay"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}

func TestStoredValuesAreIsolated(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	roomID := uuid.New()

	raw := json.RawMessage(`{"n":1}`)
	if err := s.SetRoomData(ctx, roomID, "k", raw); err != nil {
		t.Fatalf("SetRoomData: %v", err)
	}
	raw[1] = 'x' // caller mutates its buffer after the write

	value, _, err := s.GetRoomData(ctx, roomID, "k")
	if err != nil {
		t.Fatalf("GetRoomData: %v", err)
	}
	if string(value) != `{"n":1}` {
		t.Fatalf("stored value aliased the caller's buffer: %s", value)
	}
}
