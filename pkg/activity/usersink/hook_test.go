package usersink_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-estate/pkg/activity"
	"github.com/goliatone/go-estate/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 6, 3, 10, 30, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()
	objectID := uuid.New().String()

	event := activity.Event{
		Verb:           "transition",
		ActorID:        actorID.String(),
		TenantID:       tenantID.String(),
		ObjectType:     "contract",
		ObjectID:       objectID,
		Channel:        "estate",
		DefinitionCode: "contract:transition",
		Recipients:     []string{"agent@example.com"},
		Metadata: map[string]any{
			"from": "CONTRACTED",
			"to":   "IN_PROGRESS",
		},
		OccurredAt: now,
	}

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.TenantID != tenantID {
		t.Fatalf("unexpected identities: %+v", record)
	}
	if record.UserID != uuid.Nil {
		t.Fatalf("expected empty user to map to nil uuid, got %s", record.UserID)
	}
	if record.Verb != "transition" || record.ObjectType != "contract" || record.ObjectID != objectID {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "estate" || !record.OccurredAt.Equal(now) {
		t.Fatalf("unexpected channel/time: %q %v", record.Channel, record.OccurredAt)
	}
	if record.Data["definition_code"] != "contract:transition" || record.Data["to"] != "IN_PROGRESS" {
		t.Fatalf("unexpected data: %v", record.Data)
	}
	recipients, ok := record.Data["recipients"].([]string)
	if !ok || len(recipients) != 1 || recipients[0] != "agent@example.com" {
		t.Fatalf("expected recipients metadata got %v", record.Data["recipients"])
	}
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}
