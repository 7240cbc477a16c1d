package contracts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Status is a contract lifecycle code.
type Status string

const (
	StatusListed       Status = "LISTED"
	StatusNegotiating  Status = "NEGOTIATING"
	StatusIntentSigned Status = "INTENT_SIGNED"
	StatusContracted   Status = "CONTRACTED"
	StatusInProgress   Status = "IN_PROGRESS"
	StatusPaidComplete Status = "PAID_COMPLETE"
	StatusRegistered   Status = "REGISTERED"
	StatusMovedIn      Status = "MOVED_IN"
	StatusClosed       Status = "CLOSED"

	StatusCancelled  Status = "CANCELLED"
	StatusTerminated Status = "TERMINATED"
)

// DefaultInitialStatus is assigned to new contracts when no status is supplied.
const DefaultInitialStatus = StatusInProgress

// ErrUnknownStatus indicates a status code outside the known set.
var ErrUnknownStatus = errors.New("contracts: unknown status")

// Statuses lists every known status, linear path first, terminal statuses last.
func Statuses() []Status {
	return []Status{
		StatusListed,
		StatusNegotiating,
		StatusIntentSigned,
		StatusContracted,
		StatusInProgress,
		StatusPaidComplete,
		StatusRegistered,
		StatusMovedIn,
		StatusClosed,
		StatusCancelled,
		StatusTerminated,
	}
}

// ParseStatus normalizes raw input ("moved in", "moved-in", "MOVED_IN") into a Status.
func ParseStatus(raw string) (Status, error) {
	normalized := NormalizeStatus(raw)
	for _, status := range Statuses() {
		if status == normalized {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// NormalizeStatus upper-cases and trims the input, mapping separators to underscores.
// It does not check membership.
func NormalizeStatus(raw string) Status {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	trimmed = strings.NewReplacer("-", "_", " ", "_").Replace(trimmed)
	return Status(trimmed)
}

func (s Status) String() string {
	return string(s)
}

// Contract is a brokerage contract tracked through the status workflow.
type Contract struct {
	bun.BaseModel `bun:"table:contracts,alias:ct"`

	ID            uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Reference     string     `bun:"reference,notnull,unique" json:"reference"`
	Title         string     `bun:"title" json:"title,omitempty"`
	PropertyID    *uuid.UUID `bun:"property_id,type:uuid" json:"property_id,omitempty"`
	CustomerID    *uuid.UUID `bun:"customer_id,type:uuid" json:"customer_id,omitempty"`
	CurrentStatus Status     `bun:"current_status,notnull" json:"current_status"`
	ExpiresAt     *time.Time `bun:"expires_at,nullzero" json:"expires_at,omitempty"`
	CreatedBy     uuid.UUID  `bun:"created_by,type:uuid" json:"created_by"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	History []*StatusHistoryEntry `bun:"rel:has-many,join:id=contract_id" json:"history"`
}

// StatusHistoryEntry records a single status change. Entries are append-only and
// ordered by Sequence.
type StatusHistoryEntry struct {
	bun.BaseModel `bun:"table:contract_status_history,alias:csh"`

	ID             uuid.UUID `bun:",pk,type:uuid" json:"id"`
	ContractID     uuid.UUID `bun:"contract_id,notnull,type:uuid" json:"contract_id"`
	Sequence       int       `bun:"sequence,notnull" json:"sequence"`
	PreviousStatus *Status   `bun:"previous_status" json:"previous_status"`
	CurrentStatus  Status    `bun:"current_status,notnull" json:"current_status"`
	ChangedAt      time.Time `bun:"changed_at,notnull" json:"changed_at"`
	ActorID        uuid.UUID `bun:"actor_id,type:uuid" json:"actor_id"`
}
