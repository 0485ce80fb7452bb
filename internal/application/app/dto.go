package app

import (
	"time"

	"github.com/orris-inc/billing/internal/domain/subscription"
)

type CreateAppCommand struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateAppDisplayCommand changes display fields only. The app name is the
// identity plans are scoped under and stays fixed.
type UpdateAppDisplayCommand struct {
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type AppDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListAppsResult struct {
	Apps     []*AppDTO `json:"apps"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

func toDTO(a *subscription.App) *AppDTO {
	return &AppDTO{
		ID:          a.ID(),
		Name:        a.Name(),
		Description: a.Description(),
		IsActive:    a.IsActive(),
		CreatedAt:   a.CreatedAt(),
		UpdatedAt:   a.UpdatedAt(),
	}
}
