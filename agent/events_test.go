package agent

import (
	"testing"
)

func TestEmitterDeliversEvents(t *testing.T) {
	emitter := NewEventEmitter("s1", 8)
	emitter.Emit(EventAssistantText, map[string]interface{}{"text": "hi"})
	emitter.Close()

	var events []Event
	for event := range emitter.Events() {
		events = append(events, event)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].SessionID != "s1" || events[0].Kind != EventAssistantText {
		t.Errorf("unexpected event: %+v", events[0])
	}
}

func TestEmitterDropsWhenFull(t *testing.T) {
	emitter := NewEventEmitter("s1", 2)
	for i := 0; i < 10; i++ {
		emitter.Emit(EventToolCallStart, nil)
	}
	emitter.Close()

	count := 0
	for range emitter.Events() {
		count++
	}
	if count != 2 {
		t.Errorf("expected buffer-size events, got %d", count)
	}
}

func TestEmitterCloseIsIdempotent(t *testing.T) {
	emitter := NewEventEmitter("s1", 2)
	emitter.Close()
	emitter.Close()
	emitter.Emit(EventError, nil) // must not panic after close
}
