package models

import (
	"time"

	"gorm.io/datatypes"
)

// OdooRecord is one mirrored Odoo record. Data holds the record as returned
// by search_read; WriteDate is Odoo's write_date string and drives
// incremental sync.
type OdooRecord struct {
	ID        uint           `gorm:"primaryKey" json:"-"`
	Model     string         `gorm:"type:varchar(128);not null;uniqueIndex:idx_odoo_model_record" json:"model"`
	OdooID    int64          `gorm:"not null;uniqueIndex:idx_odoo_model_record" json:"odoo_id"`
	Data      datatypes.JSON `gorm:"type:jsonb" json:"data"`
	WriteDate string         `gorm:"type:varchar(32);index" json:"write_date"`
	SyncedAt  time.Time      `json:"synced_at"`
}

func (OdooRecord) TableName() string { return "odoo_records" }
