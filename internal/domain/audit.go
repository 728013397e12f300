package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry is an immutable record of one successful ticket operation.
// The history of a ticket is append-only; entries are never rewritten or
// reordered, so its length equals the number of successful operations
// (creation included).
type AuditEntry struct {
	ID        string
	Timestamp time.Time
	Action    string
	Actor     UserRef
	Note      string
}

// NewAuditEntry builds an entry for the given action. Note defaults to the
// empty string when absent.
func NewAuditEntry(action string, actor UserRef, note string) AuditEntry {
	return AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Action:    action,
		Actor:     actor,
		Note:      note,
	}
}
