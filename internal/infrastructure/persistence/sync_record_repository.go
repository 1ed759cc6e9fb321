package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/erp/optilog-connector/internal/domain/journal"
	"github.com/erp/optilog-connector/internal/domain/shared"
	"github.com/erp/optilog-connector/internal/infrastructure/persistence/models"
)

// GormSyncRecordRepository implements journal.SyncRecordRepository using GORM
type GormSyncRecordRepository struct {
	db *gorm.DB
}

var _ journal.SyncRecordRepository = (*GormSyncRecordRepository)(nil)

// NewGormSyncRecordRepository creates a new GormSyncRecordRepository
func NewGormSyncRecordRepository(db *gorm.DB) *GormSyncRecordRepository {
	return &GormSyncRecordRepository{db: db}
}

// Save persists a journal entry
func (r *GormSyncRecordRepository) Save(ctx context.Context, record *journal.SyncRecord) error {
	var model models.SyncRecordModel
	model.FromDomain(record)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByObject returns the journal entries for one remote object, newest
// first
func (r *GormSyncRecordRepository) FindByObject(ctx context.Context, objectType, objectID string) ([]*journal.SyncRecord, error) {
	var rows []models.SyncRecordModel
	err := r.db.WithContext(ctx).
		Where("object_type = ? AND object_id = ?", objectType, objectID).
		Order("processed_at DESC").
		Find(&rows).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return toDomainRecords(rows), nil
}

// List returns a filtered, paginated journal slice plus the total match
// count
func (r *GormSyncRecordRepository) List(ctx context.Context, filter journal.ListFilter, offset, limit int) ([]*journal.SyncRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SyncRecordModel{})
	if filter.ObjectType != "" {
		query = query.Where("object_type = ?", filter.ObjectType)
	}
	if filter.ObjectID != "" {
		query = query.Where("object_id = ?", filter.ObjectID)
	}
	if filter.Outcome != "" {
		query = query.Where("outcome = ?", string(filter.Outcome))
	}
	if filter.Since != nil {
		query = query.Where("processed_at >= ?", *filter.Since)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SyncRecordModel
	err := query.
		Order("processed_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return toDomainRecords(rows), total, nil
}

func toDomainRecords(rows []models.SyncRecordModel) []*journal.SyncRecord {
	records := make([]*journal.SyncRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].ToDomain())
	}
	return records
}
