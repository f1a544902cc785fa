package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageAssociation links an outbound analysis message to the ledger entry
// it reported. The snapshot is taken at creation time and is not refreshed
// when the entry is later corrected; the entry ID keeps repeated corrections
// working regardless.
type MessageAssociation struct {
	MessageID  string    `json:"message_id"`
	ScopeID    string    `json:"scope_id"`
	EntryID    uuid.UUID `json:"entry_id"`
	Snapshot   FoodEntry `json:"snapshot"`
	RecordedAt time.Time `json:"recorded_at"`
}
