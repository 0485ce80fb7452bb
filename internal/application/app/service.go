// Package app manages tenant applications that own subscription plans.
package app

import (
	"context"
	"errors"

	"github.com/orris-inc/billing/internal/domain/subscription"
	"github.com/orris-inc/billing/internal/shared/biztime"
	apperrors "github.com/orris-inc/billing/internal/shared/errors"
	"github.com/orris-inc/billing/internal/shared/logger"
	"github.com/orris-inc/billing/internal/shared/query"
	"github.com/orris-inc/billing/internal/shared/utils"
)

type Service struct {
	repo   subscription.AppRepository
	clock  biztime.Clock
	logger logger.Interface
}

func NewService(repo subscription.AppRepository, clock biztime.Clock, logger logger.Interface) *Service {
	if clock == nil {
		clock = biztime.NowUTC
	}
	return &Service{repo: repo, clock: clock, logger: logger}
}

func (s *Service) CreateApp(ctx context.Context, cmd CreateAppCommand) (*AppDTO, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, cmd.Name, "")
	if err != nil {
		s.logger.Errorw("failed to check app name", "name", cmd.Name, "error", err)
		return nil, apperrors.NewInternalError("failed to create app")
	}
	if exists {
		return nil, apperrors.NewBadRequestError("app name already exists", cmd.Name)
	}

	a, err := subscription.NewApp(cmd.Name, cmd.Description, s.clock())
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, subscription.ErrAppNameExists) {
			return nil, apperrors.NewBadRequestError("app name already exists", cmd.Name)
		}
		return nil, apperrors.NewInternalError("failed to create app")
	}

	s.logger.Infow("app created", "app_id", a.ID(), "name", a.Name())
	return toDTO(a), nil
}

func (s *Service) GetApp(ctx context.Context, id string) (*AppDTO, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(a), nil
}

func (s *Service) ListApps(ctx context.Context, page, pageSize int) (*ListAppsResult, error) {
	pf := query.NewPageFilter(page, pageSize)
	apps, total, err := s.repo.List(ctx, pf.Page, pf.PageSize)
	if err != nil {
		s.logger.Errorw("failed to list apps", "error", err)
		return nil, apperrors.NewInternalError("failed to list apps")
	}
	out := make([]*AppDTO, 0, len(apps))
	for _, a := range apps {
		out = append(out, toDTO(a))
	}
	return &ListAppsResult{Apps: out, Total: total, Page: pf.Page, PageSize: pf.PageSize}, nil
}

func (s *Service) UpdateAppDisplay(ctx context.Context, id string, cmd UpdateAppDisplayCommand) (*AppDTO, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.Update(nil, cmd.Description, cmd.IsActive, s.clock()); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, apperrors.NewInternalError("failed to update app")
	}
	s.logger.Infow("app display updated", "app_id", id)
	return toDTO(a), nil
}

func (s *Service) load(ctx context.Context, id string) (*subscription.App, error) {
	if err := utils.ValidateID(id); err != nil {
		return nil, err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Errorw("failed to get app", "app_id", id, "error", err)
		return nil, apperrors.NewInternalError("failed to get app")
	}
	if a == nil {
		return nil, apperrors.NewNotFoundError("app not found", id)
	}
	return a, nil
}
