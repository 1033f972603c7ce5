// internal/models/collection.go
package models

import (
	"encoding/json"
	"time"
)

type CollectionName string

const (
	CollectionProducts CollectionName = "products"
	CollectionSales    CollectionName = "sales"
	CollectionClients  CollectionName = "clients"
)

var collectionNames = []CollectionName{CollectionProducts, CollectionSales, CollectionClients}

func CollectionNames() []CollectionName {
	return append([]CollectionName(nil), collectionNames...)
}

func ParseCollectionName(s string) (CollectionName, bool) {
	for _, n := range collectionNames {
		if string(n) == s {
			return n, true
		}
	}
	return "", false
}

// EmptyItems is the payload of a collection that was never written.
func (n CollectionName) EmptyItems() json.RawMessage {
	if n == CollectionClients {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(`[]`)
}

// Version is the server-maintained revision of a collection. It starts at 0
// and increments on every successful replace.
type Version int64

// AnyVersion disables the revision check on replace (last write wins).
const AnyVersion Version = -1

func (v Version) Checked() bool {
	return v >= 0
}

// CollectionDocument is one collection as exchanged with the store.
type CollectionDocument struct {
	Name      CollectionName  `json:"name"`
	Version   Version         `json:"version"`
	Items     json.RawMessage `json:"items"`
	UpdatedAt time.Time       `json:"updated_at"`
	UpdatedBy string          `json:"updated_by,omitempty"`
}

// CollectionRecord is the database row backing a collection.
type CollectionRecord struct {
	Name      string    `gorm:"primaryKey;size:32"`
	Version   int64     `gorm:"not null;default:0"`
	Payload   string    `gorm:"type:text;not null"`
	UpdatedBy string    `gorm:"size:50"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CollectionRecord) TableName() string {
	return "collections"
}

func (r CollectionRecord) Document() *CollectionDocument {
	return &CollectionDocument{
		Name:      CollectionName(r.Name),
		Version:   Version(r.Version),
		Items:     json.RawMessage(r.Payload),
		UpdatedAt: r.UpdatedAt,
		UpdatedBy: r.UpdatedBy,
	}
}
