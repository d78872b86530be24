// Package events implements the orchestrator's event bus contract:
// review.started, review.issue_found, review.completed and
// capture_mode.changed, published in spec order. Delivery is
// best-effort: an event is dropped for a subscriber whose buffer is
// full. Adapted from the teacher's UI event bus.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// Type names the four contract events an orchestrator emits.
type Type string

const (
	TypeReviewStarted       Type = "review.started"
	TypeReviewIssueFound    Type = "review.issue_found"
	TypeReviewCompleted     Type = "review.completed"
	TypeCaptureModeChanged  Type = "capture_mode.changed"
)

// Event is one published occurrence on the bus.
type Event struct {
	ID        int64       `json:"id"`
	Type      Type        `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Bus fans out published events to subscribers over buffered
// channels; a slow or dead subscriber never blocks or fails a
// publish.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
	nextID      int64
}

// NewBus constructs an empty event bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string]chan Event)}
}

// Subscribe registers a new subscriber under id, returning a buffered
// channel of events. Re-subscribing under the same id replaces the
// previous channel.
func (b *Bus) Subscribe(id string) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, 100)
	b.subscribers[id] = ch
	return ch
}

// Unsubscribe removes and closes the subscriber's channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
}

// Publish delivers an event of the given type to every current
// subscriber, skipping (never blocking on) any whose buffer is full.
// Subscriber panics recovered from elsewhere never reach Publish since
// this is a pure non-blocking send.
func (b *Bus) Publish(eventType Type, data interface{}) Event {
	event := Event{
		ID:        atomic.AddInt64(&b.nextID, 1),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}

	b.mu.RLock()
	channels := make([]chan Event, 0, len(b.subscribers))
	for _, ch := range b.subscribers {
		channels = append(channels, ch)
	}
	b.mu.RUnlock()

	for _, ch := range channels {
		select {
		case ch <- event:
		default:
			// subscriber is slow/full; drop rather than block, per the
			// at-least-once-but-best-effort-delivery contract.
		}
	}

	return event
}

// ReviewStartedPayload is the data carried by review.started.
type ReviewStartedPayload struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
	Spec      string `json:"spec"`
}

// ReviewCompletedPayload is the data carried by review.completed.
type ReviewCompletedPayload struct {
	SessionID    string                 `json:"sessionId"`
	Summary      map[string]int         `json:"summary"`
	PillarGrades map[string]interface{} `json:"pillarGrades"`
}

// CaptureModeChangedPayload is the data carried by capture_mode.changed.
type CaptureModeChangedPayload struct {
	Enabled bool `json:"enabled"`
}

// PublishReviewStarted emits review.started with its documented shape.
func (b *Bus) PublishReviewStarted(url, sessionID, spec string) Event {
	return b.Publish(TypeReviewStarted, ReviewStartedPayload{URL: url, SessionID: sessionID, Spec: spec})
}

// PublishIssueFound emits review.issue_found carrying the issue record
// itself as Data.
func (b *Bus) PublishIssueFound(issue interface{}) Event {
	return b.Publish(TypeReviewIssueFound, issue)
}

// PublishReviewCompleted emits review.completed with its documented
// shape.
func (b *Bus) PublishReviewCompleted(sessionID string, summary map[string]int, pillarGrades map[string]interface{}) Event {
	return b.Publish(TypeReviewCompleted, ReviewCompletedPayload{SessionID: sessionID, Summary: summary, PillarGrades: pillarGrades})
}

// PublishCaptureModeChanged emits capture_mode.changed so overlays can
// hide their chrome before a screenshot is taken.
func (b *Bus) PublishCaptureModeChanged(enabled bool) Event {
	return b.Publish(TypeCaptureModeChanged, CaptureModeChangedPayload{Enabled: enabled})
}
