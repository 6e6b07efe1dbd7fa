package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/vicinity/internal/interfaces"
)

func TestSubscribePublishDelivers(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	received := make(chan interfaces.Event, 1)
	err := svc.Subscribe(interfaces.EventSearchStarted, func(ctx context.Context, event interfaces.Event) error {
		received <- event
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error: %v", err)
	}

	err = svc.Publish(context.Background(), interfaces.Event{
		Type:    interfaces.EventSearchStarted,
		Payload: "req-1",
	})
	if err != nil {
		t.Fatalf("Publish() error: %v", err)
	}

	select {
	case event := <-received:
		if event.Payload != "req-1" {
			t.Errorf("handler received payload %v, want req-1", event.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("handler not invoked within 1s")
	}
}

func TestPublishSyncWaitsForAllHandlers(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		if err := svc.Subscribe(interfaces.EventSearchCompleted, func(ctx context.Context, event interfaces.Event) error {
			calls.Add(1)
			return nil
		}); err != nil {
			t.Fatalf("Subscribe() error: %v", err)
		}
	}

	if err := svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventSearchCompleted}); err != nil {
		t.Fatalf("PublishSync() error: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("PublishSync() invoked %d handlers, want 3", got)
	}
}

func TestPublishSyncAggregatesHandlerErrors(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	svc.Subscribe(interfaces.EventProviderSkipped, func(ctx context.Context, event interfaces.Event) error {
		return errors.New("handler failed")
	})
	svc.Subscribe(interfaces.EventProviderSkipped, func(ctx context.Context, event interfaces.Event) error {
		return nil
	})

	if err := svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventProviderSkipped}); err == nil {
		t.Error("PublishSync() should report handler failures")
	}
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	if err := svc.Publish(context.Background(), interfaces.Event{Type: interfaces.EventSearchStarted}); err != nil {
		t.Errorf("Publish() with no subscribers error: %v", err)
	}
}

func TestSubscribeRejectsNilHandler(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	if err := svc.Subscribe(interfaces.EventSearchStarted, nil); err == nil {
		t.Error("Subscribe() should reject a nil handler")
	}
}

func TestCloseDropsSubscribers(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	invoked := make(chan struct{}, 1)
	svc.Subscribe(interfaces.EventSearchStarted, func(ctx context.Context, event interfaces.Event) error {
		invoked <- struct{}{}
		return nil
	})

	if err := svc.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventSearchStarted})

	select {
	case <-invoked:
		t.Error("handler invoked after Close()")
	default:
	}
}

func TestRegisterAuditLogConsumesLifecycleEvents(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	if err := RegisterAuditLog(svc, arbor.NewLogger()); err != nil {
		t.Fatalf("RegisterAuditLog() error: %v", err)
	}

	ctx := context.Background()
	for _, eventType := range []interfaces.EventType{
		interfaces.EventSearchStarted,
		interfaces.EventSearchCompleted,
		interfaces.EventProviderSkipped,
	} {
		if err := svc.PublishSync(ctx, interfaces.Event{Type: eventType, Payload: "audit"}); err != nil {
			t.Errorf("PublishSync(%s) after audit registration error: %v", eventType, err)
		}
	}
}
