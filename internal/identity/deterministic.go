package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ContractUUID derives the contract identifier from its normalized reference.
func ContractUUID(reference string) uuid.UUID {
	return UUID("go-estate:contract:" + strings.ToLower(strings.TrimSpace(reference)))
}

// HistoryEntryUUID derives the identifier of the n-th status history entry of a contract.
func HistoryEntryUUID(contractID uuid.UUID, sequence int) uuid.UUID {
	return UUID("go-estate:contract_status_history:" + contractID.String() + ":" + strconv.Itoa(sequence))
}
