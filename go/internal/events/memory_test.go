package events

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

func publishN(t *testing.T, c *MemoryChannel, roomID uuid.UUID, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		payload := json.RawMessage(fmt.Sprintf(`{"seq":%d}`, i))
		env := NewEnvelope(roomID, EventTypeCustom, time.Now().UTC(), payload)
		if err := c.Publish(context.Background(), roomID, env); err != nil {
			t.Fatalf("Publish %d: %v", i, err)
		}
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	c := NewMemoryChannel()
	roomID := uuid.New()

	done := make(chan error, 1)
	go func() {
		env := NewEnvelope(roomID, EventTypeCustom, time.Now().UTC(), json.RawMessage(`{}`))
		done <- c.Publish(context.Background(), roomID, env)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Publish with zero subscribers: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with zero subscribers")
	}
}

func TestDeliveryInPublishOrder(t *testing.T) {
	c := NewMemoryChannel()
	roomID := uuid.New()

	sub, err := c.Subscribe(context.Background(), roomID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	publishN(t, c, roomID, 10)

	for i := 0; i < 10; i++ {
		select {
		case env := <-sub.C():
			var got struct {
				Seq int `json:"seq"`
			}
			if err := json.Unmarshal(env.Payload, &got); err != nil {
				t.Fatalf("unmarshal payload: %v", err)
			}
			if got.Seq != i {
				t.Fatalf("event %d arrived with seq %d, want %d", i, got.Seq, i)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestNoCrossRoomDelivery(t *testing.T) {
	c := NewMemoryChannel()
	roomA := uuid.New()
	roomB := uuid.New()

	subB, err := c.Subscribe(context.Background(), roomB)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer subB.Unsubscribe()

	publishN(t, c, roomA, 3)

	select {
	case env := <-subB.C():
		t.Fatalf("room B received room A's event: %+v", env)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLateJoinerSeesNothing(t *testing.T) {
	c := NewMemoryChannel()
	roomID := uuid.New()

	publishN(t, c, roomID, 5)

	sub, err := c.Subscribe(context.Background(), roomID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	select {
	case env := <-sub.C():
		t.Fatalf("late joiner replayed history: %+v", env)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeClosesStream(t *testing.T) {
	c := NewMemoryChannel()
	roomID := uuid.New()

	sub, err := c.Subscribe(context.Background(), roomID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := sub.Unsubscribe(); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	if err := sub.Unsubscribe(); err != nil {
		t.Fatalf("second Unsubscribe: %v", err)
	}

	if _, open := <-sub.C(); open {
		t.Fatal("stream still open after Unsubscribe")
	}

	// Publishing after the last unsubscribe must not block or panic.
	publishN(t, c, roomID, 1)
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	c := NewMemoryChannel()
	roomID := uuid.New()

	sub, err := c.Subscribe(context.Background(), roomID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	done := make(chan struct{})
	go func() {
		// Overflow the subscriber buffer without ever reading from it.
		publishN(t, c, roomID, 200)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
}
