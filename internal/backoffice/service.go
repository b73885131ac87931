package backoffice

import (
	"context"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/errors"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/logger"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

// Service wraps the repository with status-domain enforcement. Handlers talk
// to the service, never to the repository directly.
type Service struct {
	repo   *Repository
	logger logger.Logger
}

func NewService(repo *Repository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// List returns one pipeline's summaries, optionally filtered by status.
// An off-domain status filter is rejected rather than silently matching nothing.
func (s *Service) List(ctx context.Context, kind models.FormKind, status string, limit, offset int) ([]models.SubmissionSummary, error) {
	if !kind.Valid() {
		return nil, errors.NewInvalidFormKindError(string(kind))
	}
	if status != "" && !models.ValidStatusFor(kind, status) {
		return nil, errors.NewInvalidStatusError(string(kind), status)
	}
	return s.repo.ListByKind(ctx, kind, status, limit, offset)
}

// ChangeStatus validates the target status against the kind's lifecycle
// before persisting it.
func (s *Service) ChangeStatus(ctx context.Context, kind models.FormKind, id, status string) error {
	if !kind.Valid() {
		return errors.NewInvalidFormKindError(string(kind))
	}
	if !models.ValidStatusFor(kind, status) {
		return errors.NewInvalidStatusError(string(kind), status)
	}

	if err := s.repo.UpdateStatus(ctx, kind, id, status); err != nil {
		return err
	}

	s.logger.Info("Request status updated", map[string]interface{}{
		"kind":      string(kind),
		"requestId": id,
		"status":    status,
	})
	return nil
}

// SaveNotes replaces the admin notes on a record.
func (s *Service) SaveNotes(ctx context.Context, kind models.FormKind, id, notes string) error {
	if !kind.Valid() {
		return errors.NewInvalidFormKindError(string(kind))
	}
	return s.repo.UpdateAdminNotes(ctx, kind, id, notes)
}

// GetRepair, GetPersonalized, and GetSell expose the full records for the
// detail views.

func (s *Service) GetRepair(ctx context.Context, id string) (*models.RepairRequest, error) {
	return s.repo.GetRepair(ctx, id)
}

func (s *Service) GetPersonalized(ctx context.Context, id string) (*models.PersonalizedRequest, error) {
	return s.repo.GetPersonalized(ctx, id)
}

func (s *Service) GetSell(ctx context.Context, id string) (*models.SellRequest, error) {
	return s.repo.GetSell(ctx, id)
}

// Dashboard aggregates per-status counts across the three pipelines.
func (s *Service) Dashboard(ctx context.Context) (map[string]map[string]int, error) {
	out := make(map[string]map[string]int, len(models.AllFormKinds()))
	for _, kind := range models.AllFormKinds() {
		counts, err := s.repo.CountByStatus(ctx, kind)
		if err != nil {
			return nil, err
		}
		out[string(kind)] = counts
	}
	return out, nil
}
