// internal/services/collection_backend.go
package services

import (
	"context"
	"sync"
	"time"

	"github.com/javajoker/sales-ledger/internal/models"
)

// CollectionBackend persists whole collections with a revision counter.
// Store must fail with ErrVersionConflict when expected is checked and does
// not match the current version.
type CollectionBackend interface {
	Load(ctx context.Context, name models.CollectionName) (*models.CollectionDocument, error)
	Store(ctx context.Context, doc *models.CollectionDocument, expected models.Version) (*models.CollectionDocument, error)
}

func emptyDocument(name models.CollectionName) *models.CollectionDocument {
	return &models.CollectionDocument{
		Name:    name,
		Version: 0,
		Items:   name.EmptyItems(),
	}
}

func checkVersion(name models.CollectionName, expected, current models.Version) error {
	if expected.Checked() && expected != current {
		return &VersionConflictError{Collection: name, Expected: expected, Current: current}
	}
	return nil
}

// MemoryBackend keeps collections in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	docs map[models.CollectionName]models.CollectionDocument
	now  func() time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		docs: make(map[models.CollectionName]models.CollectionDocument),
		now:  time.Now,
	}
}

func (m *MemoryBackend) Load(ctx context.Context, name models.CollectionName) (*models.CollectionDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[name]
	if !ok {
		return emptyDocument(name), nil
	}
	doc.Items = append([]byte(nil), doc.Items...)
	return &doc, nil
}

func (m *MemoryBackend) Store(ctx context.Context, doc *models.CollectionDocument, expected models.Version) (*models.CollectionDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.docs[doc.Name].Version
	if err := checkVersion(doc.Name, expected, current); err != nil {
		return nil, err
	}

	stored := models.CollectionDocument{
		Name:      doc.Name,
		Version:   current + 1,
		Items:     append([]byte(nil), doc.Items...),
		UpdatedAt: m.now(),
		UpdatedBy: doc.UpdatedBy,
	}
	m.docs[doc.Name] = stored
	return &stored, nil
}
