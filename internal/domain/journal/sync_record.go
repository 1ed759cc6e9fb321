// Package journal holds the sync journal: one record per webhook event the
// connector attempted to apply against the logistics provider.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SyncOutcome classifies what happened to one event
type SyncOutcome string

const (
	// OutcomeApplied means the change was written to the provider
	OutcomeApplied SyncOutcome = "applied"
	// OutcomeSkipped means the change was dropped by a mapping rule
	// (write gating, admission rejection, duplicate suppression)
	OutcomeSkipped SyncOutcome = "skipped"
	// OutcomeFailed means the provider call failed
	OutcomeFailed SyncOutcome = "failed"
)

// SyncRecord is one journal entry
type SyncRecord struct {
	ID         uuid.UUID
	ObjectType string
	ObjectID   string
	Action     string
	UserName   string
	Comment    string
	Outcome    SyncOutcome
	// ErrorMessage is set only when Outcome is failed
	ErrorMessage string
	ProcessedAt  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewSyncRecord creates a journal entry for a processed event
func NewSyncRecord(objectType, objectID, action, userName, comment string, outcome SyncOutcome, errMsg string) *SyncRecord {
	now := time.Now()
	return &SyncRecord{
		ID:           uuid.New(),
		ObjectType:   objectType,
		ObjectID:     objectID,
		Action:       action,
		UserName:     userName,
		Comment:      comment,
		Outcome:      outcome,
		ErrorMessage: errMsg,
		ProcessedAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ListFilter narrows a journal listing. Zero values mean "no constraint".
type ListFilter struct {
	ObjectType string
	ObjectID   string
	Outcome    SyncOutcome
	Since      *time.Time
}

// SyncRecordRepository is the persistence port for the journal
type SyncRecordRepository interface {
	Save(ctx context.Context, record *SyncRecord) error
	FindByObject(ctx context.Context, objectType, objectID string) ([]*SyncRecord, error)
	List(ctx context.Context, filter ListFilter, offset, limit int) ([]*SyncRecord, int64, error)
}
