package fixtures

import (
	"sync"

	"github.com/goliatone/go-estate/internal/di"
)

// RecordingDispatcher captures handlers registered through the container.
type RecordingDispatcher struct {
	mu            sync.Mutex
	Handlers      []any
	Subscriptions []*RecordingSubscription
	Err           error
}

// NewRecordingDispatcher constructs a dispatcher recorder.
func NewRecordingDispatcher() *RecordingDispatcher {
	return &RecordingDispatcher{
		Handlers:      make([]any, 0),
		Subscriptions: make([]*RecordingSubscription, 0),
	}
}

// RegisterCommand satisfies di.CommandDispatcher while recording the handler.
func (d *RecordingDispatcher) RegisterCommand(handler any) (di.CommandSubscription, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	d.Handlers = append(d.Handlers, handler)
	sub := &RecordingSubscription{Handler: handler}
	d.Subscriptions = append(d.Subscriptions, sub)
	return sub, nil
}

// Released reports how many subscriptions were unsubscribed.
func (d *RecordingDispatcher) Released() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	count := 0
	for _, sub := range d.Subscriptions {
		if sub.Unsubscribed {
			count++
		}
	}
	return count
}

// RecordingSubscription tracks unsubscribe calls.
type RecordingSubscription struct {
	Handler      any
	Unsubscribed bool
}

// Unsubscribe marks the subscription as released.
func (s *RecordingSubscription) Unsubscribe() {
	s.Unsubscribed = true
}
