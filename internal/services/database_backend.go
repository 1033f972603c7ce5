// internal/services/database_backend.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/javajoker/sales-ledger/internal/database"
	"github.com/javajoker/sales-ledger/internal/models"
)

// DatabaseBackend stores one row per collection. Writes are guarded by a
// conditional update on the version column.
type DatabaseBackend struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDatabaseBackend(db *gorm.DB) *DatabaseBackend {
	return &DatabaseBackend{db: db, now: time.Now}
}

func (b *DatabaseBackend) Load(ctx context.Context, name models.CollectionName) (*models.CollectionDocument, error) {
	var record models.CollectionRecord
	err := b.db.WithContext(ctx).Where("name = ?", string(name)).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return emptyDocument(name), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", name, err)
	}
	return record.Document(), nil
}

func (b *DatabaseBackend) Store(ctx context.Context, doc *models.CollectionDocument, expected models.Version) (*models.CollectionDocument, error) {
	var stored *models.CollectionDocument

	err := database.WithTransaction(b.db.WithContext(ctx), func(tx *gorm.DB) error {
		var record models.CollectionRecord
		err := tx.Where("name = ?", string(doc.Name)).Take(&record).Error
		notFound := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !notFound {
			return err
		}

		current := models.Version(record.Version)
		if err := checkVersion(doc.Name, expected, current); err != nil {
			return err
		}

		now := b.now()
		if notFound {
			record = models.CollectionRecord{
				Name:      string(doc.Name),
				Version:   1,
				Payload:   string(doc.Items),
				UpdatedBy: doc.UpdatedBy,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Create(&record).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					// A concurrent writer created the collection first.
					return &VersionConflictError{Collection: doc.Name, Expected: current, Current: 1}
				}
				return err
			}
			stored = record.Document()
			return nil
		}

		res := tx.Model(&models.CollectionRecord{}).
			Where("name = ? AND version = ?", string(doc.Name), record.Version).
			Updates(map[string]interface{}{
				"payload":    string(doc.Items),
				"version":    record.Version + 1,
				"updated_by": doc.UpdatedBy,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Another writer committed between our read and this update.
			return &VersionConflictError{Collection: doc.Name, Expected: current, Current: current + 1}
		}

		record.Version++
		record.Payload = string(doc.Items)
		record.UpdatedBy = doc.UpdatedBy
		record.UpdatedAt = now
		stored = record.Document()
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to store collection %s: %w", doc.Name, err)
	}
	return stored, nil
}
