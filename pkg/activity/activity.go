package activity

import (
	"context"
	"errors"
	"maps"
	"strings"
	"time"
)

// Event describes a domain change worth recording in an activity feed.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Hook receives emitted events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// Hooks fans a single event out to several hooks.
type Hooks []Hook

// Notify delivers event to every hook and joins their errors.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Config toggles emission and sets the default channel.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter stamps events with defaults and forwards them to hooks.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
	now     func() time.Time
}

// NewEmitter builds an emitter. It is disabled when cfg.Enabled is false or no
// hooks are registered.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	return &Emitter{
		hooks:   hooks,
		enabled: cfg.Enabled,
		channel: strings.TrimSpace(cfg.Channel),
		now:     time.Now,
	}
}

// Enabled reports whether Emit will deliver events.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled && len(e.hooks) > 0
}

// Emit fills Channel and OccurredAt when missing and notifies every hook.
// Events without a verb are dropped.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() || strings.TrimSpace(event.Verb) == "" {
		return nil
	}
	if event.Channel == "" {
		event.Channel = e.channel
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now().UTC()
	}
	if event.Metadata != nil {
		event.Metadata = maps.Clone(event.Metadata)
	}
	return e.hooks.Notify(ctx, event)
}

// CaptureHook records events in memory.
type CaptureHook struct {
	Events []Event
}

func (c *CaptureHook) Notify(_ context.Context, event Event) error {
	c.Events = append(c.Events, event)
	return nil
}
