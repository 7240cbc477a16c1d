package contracts

import (
	"time"

	"github.com/google/uuid"
)

func cloneContract(src *Contract) *Contract {
	if src == nil {
		return nil
	}
	cloned := *src
	cloned.PropertyID = cloneUUIDPtr(src.PropertyID)
	cloned.CustomerID = cloneUUIDPtr(src.CustomerID)
	cloned.ExpiresAt = cloneTimePtr(src.ExpiresAt)
	cloned.History = cloneHistory(src.History)
	return &cloned
}

func cloneHistory(src []*StatusHistoryEntry) []*StatusHistoryEntry {
	if src == nil {
		return nil
	}
	out := make([]*StatusHistoryEntry, 0, len(src))
	for _, entry := range src {
		if entry == nil {
			continue
		}
		out = append(out, cloneHistoryEntry(entry))
	}
	return out
}

func cloneHistoryEntry(src *StatusHistoryEntry) *StatusHistoryEntry {
	cloned := *src
	if src.PreviousStatus != nil {
		prev := *src.PreviousStatus
		cloned.PreviousStatus = &prev
	}
	return &cloned
}

func cloneUUIDPtr(src *uuid.UUID) *uuid.UUID {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func cloneTimePtr(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
