package models

import (
	"time"
)

// Setting is one admin-editable key/value pair (store name, support email,
// maintenance flags and the like).
type Setting struct {
	Key       string    `gorm:"primaryKey;type:varchar(100)" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedBy string    `gorm:"type:varchar(36)" json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}
