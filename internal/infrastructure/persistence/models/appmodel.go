package models

import (
	"time"

	"github.com/orris-inc/billing/internal/shared/constants"
)

// AppModel is the persistence model for tenant apps.
type AppModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"uniqueIndex;not null;size:100"`
	Description string `gorm:"size:500"`
	IsActive    bool   `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (AppModel) TableName() string {
	return constants.TableApps
}
