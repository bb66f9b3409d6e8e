package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"focusflow/internal/blocker"
	apperrors "focusflow/internal/errors"
	"focusflow/internal/model"
	"focusflow/internal/repository"
)

type BlocklistService struct {
	repo *repository.BlockedSiteRepository
}

func NewBlocklistService(repo *repository.BlockedSiteRepository) *BlocklistService {
	return &BlocklistService{repo: repo}
}

func (s *BlocklistService) List(ctx context.Context, userID string) ([]model.BlockedSite, *apperrors.APIError) {
	sites, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list blocked sites")
	}
	return sites, nil
}

func (s *BlocklistService) Create(ctx context.Context, userID, rawDomain string) (*model.BlockedSite, *apperrors.APIError) {
	domain, err := blocker.Normalize(rawDomain)
	if err != nil {
		var invalid *blocker.ErrInvalidDomain
		if errors.As(err, &invalid) {
			return nil, apperrors.Validation("invalid_domain", "domain must be a valid hostname like example.com")
		}
		return nil, apperrors.Internal("failed to normalize domain")
	}

	site := model.BlockedSite{
		ID:        uuid.NewString(),
		UserID:    userID,
		Domain:    domain,
		IsEnabled: true,
	}
	if err := s.repo.Create(ctx, &site); err != nil {
		return nil, apperrors.Internal("failed to create blocked site")
	}
	return &site, nil
}

func (s *BlocklistService) SetEnabled(ctx context.Context, userID, id string, enabled bool) (*model.BlockedSite, *apperrors.APIError) {
	site, err := s.repo.SetEnabled(ctx, id, userID, enabled)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("site_not_found", "blocked site not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to update blocked site")
	}
	return site, nil
}

func (s *BlocklistService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.repo.Delete(ctx, id, userID)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("site_not_found", "blocked site not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete blocked site")
	}
	return nil
}
