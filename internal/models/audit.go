// internal/models/audit.go
package models

// AuditLog records every write request against the store API. Collections
// are replaced wholesale, so this is the only trail of who overwrote what.
type AuditLog struct {
	BaseModel
	Username   string `json:"username" gorm:"size:50;index"`
	Action     string `json:"action" gorm:"size:100;not null;index"`
	Collection string `json:"collection" gorm:"size:32;index"`
	Status     int    `json:"status"`
	Version    int64  `json:"version"`
	ItemCount  int    `json:"item_count"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"type:text"`
}
