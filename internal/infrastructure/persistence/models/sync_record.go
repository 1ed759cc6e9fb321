// Package models holds the GORM persistence models.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/erp/optilog-connector/internal/domain/journal"
)

// SyncRecordModel is the persistence model for a journal.SyncRecord
type SyncRecordModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	ObjectType   string    `gorm:"type:varchar(10);not null;index:idx_sync_records_object"`
	ObjectID     string    `gorm:"type:varchar(64);not null;index:idx_sync_records_object"`
	Action       string    `gorm:"type:varchar(10);not null"`
	UserName     string    `gorm:"type:varchar(128);not null"`
	Comment      string    `gorm:"type:text"`
	Outcome      string    `gorm:"type:varchar(10);not null;index"`
	ErrorMessage string    `gorm:"type:text"`
	ProcessedAt  time.Time `gorm:"type:timestamptz;not null;index"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SyncRecordModel) TableName() string {
	return "sync_records"
}

// ToDomain converts the persistence model to a domain SyncRecord
func (m *SyncRecordModel) ToDomain() *journal.SyncRecord {
	return &journal.SyncRecord{
		ID:           m.ID,
		ObjectType:   m.ObjectType,
		ObjectID:     m.ObjectID,
		Action:       m.Action,
		UserName:     m.UserName,
		Comment:      m.Comment,
		Outcome:      journal.SyncOutcome(m.Outcome),
		ErrorMessage: m.ErrorMessage,
		ProcessedAt:  m.ProcessedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain SyncRecord
func (m *SyncRecordModel) FromDomain(r *journal.SyncRecord) {
	m.ID = r.ID
	m.ObjectType = r.ObjectType
	m.ObjectID = r.ObjectID
	m.Action = r.Action
	m.UserName = r.UserName
	m.Comment = r.Comment
	m.Outcome = string(r.Outcome)
	m.ErrorMessage = r.ErrorMessage
	m.ProcessedAt = r.ProcessedAt
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt
}
