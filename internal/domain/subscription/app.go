package subscription

import (
	"fmt"
	"strings"
	"time"

	"github.com/orris-inc/billing/internal/shared/id"
)

// App is a tenant product that owns plans and subscriptions.
type App struct {
	id          string
	name        string
	description string
	isActive    bool
	createdAt   time.Time
	updatedAt   time.Time
}

func NewApp(name, description string, now time.Time) (*App, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("app name is required")
	}
	if len(name) > 100 {
		return nil, fmt.Errorf("app name too long (max 100 characters)")
	}
	return &App{
		id:          id.New(),
		name:        name,
		description: description,
		isActive:    true,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func ReconstructApp(appID, name, description string, isActive bool, createdAt, updatedAt time.Time) *App {
	return &App{
		id:          appID,
		name:        name,
		description: description,
		isActive:    isActive,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (a *App) ID() string { return a.id }
func (a *App) Name() string { return a.name }
func (a *App) Description() string { return a.description }
func (a *App) IsActive() bool { return a.isActive }
func (a *App) CreatedAt() time.Time { return a.createdAt }
func (a *App) UpdatedAt() time.Time { return a.updatedAt }

func (a *App) Update(name, description *string, isActive *bool, now time.Time) error {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return fmt.Errorf("app name is required")
		}
		a.name = trimmed
	}
	if description != nil {
		a.description = *description
	}
	if isActive != nil {
		a.isActive = *isActive
	}
	a.updatedAt = now
	return nil
}
