package submissions

import (
	"context"
	"fmt"
	"time"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/errors"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/logger"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/metrics"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

// Notifier is told about each persisted submission. Implementations are
// best-effort; the service never fails a submission over a notification.
type Notifier interface {
	SubmissionReceived(ctx context.Context, summary models.SubmissionSummary)
}

// ServiceDependencies holds the injected collaborators.
type ServiceDependencies struct {
	Repository Repository
	Notifier   Notifier // optional
	Logger     logger.Logger
}

// Service validates and persists intake form submissions.
type Service struct {
	deps ServiceDependencies
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{deps: deps}
}

// Execute validates the submission and persists it with the kind's initial
// status. A validation failure reports every violated rule and persists
// nothing; a persistence failure surfaces as a distinct generic error.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	return s.execute(ctx, input)
}

func (s *Service) execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()

	if !input.Kind.Valid() {
		return nil, errors.NewInvalidFormKindError(string(input.Kind))
	}

	result, err := Validate(input.Kind, input.Data)
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	if !result.Valid {
		metrics.SubmissionsRejected.WithLabelValues(
			string(input.Kind), string(errors.ErrCodeSubmissionValidationFailed)).Inc()

		s.deps.Logger.Info("Submission rejected by validation", map[string]interface{}{
			"kind":       string(input.Kind),
			"errorCount": len(result.Errors),
		})

		return nil, errors.NewSubmissionValidationFailedError(FieldErrors(result))
	}

	summary, err := s.persist(ctx, input)
	if err != nil {
		s.deps.Logger.WithError(err).Error("Submission persistence failed", map[string]interface{}{
			"kind": string(input.Kind),
		})
		return nil, err
	}

	metrics.SubmissionsCreated.WithLabelValues(string(input.Kind)).Inc()
	metrics.SubmissionDuration.WithLabelValues(string(input.Kind)).Observe(time.Since(start).Seconds())

	s.deps.Logger.Info("Submission persisted", map[string]interface{}{
		"kind":      string(input.Kind),
		"requestId": summary.ID,
		"status":    summary.Status,
	})

	if s.deps.Notifier != nil {
		s.deps.Notifier.SubmissionReceived(ctx, summary)
	}

	return &Output{
		RequestID:    summary.ID,
		Kind:         input.Kind,
		Status:       summary.Status,
		CreatedAt:    summary.CreatedAt,
		Notification: NotificationSubmissionReceived,
	}, nil
}

func (s *Service) persist(ctx context.Context, input *Input) (models.SubmissionSummary, error) {
	switch input.Kind {
	case models.KindRepairForm:
		record := buildRepairRecord(input)
		if err := s.deps.Repository.InsertRepair(ctx, record); err != nil {
			return models.SubmissionSummary{}, err
		}
		return models.SubmissionSummary{
			ID:        record.ID,
			Kind:      input.Kind,
			Status:    string(record.Status),
			Name:      record.Name,
			Email:     record.Email,
			Headline:  record.WatchBrand + " " + record.WatchModel,
			CreatedAt: record.CreatedAt,
			UpdatedAt: record.UpdatedAt,
		}, nil

	case models.KindRequestForm:
		record := buildPersonalizedRecord(input)
		if err := s.deps.Repository.InsertPersonalized(ctx, record); err != nil {
			return models.SubmissionSummary{}, err
		}
		return models.SubmissionSummary{
			ID:        record.ID,
			Kind:      input.Kind,
			Status:    string(record.Status),
			Name:      record.Name,
			Email:     record.Email,
			Headline:  record.WatchType,
			CreatedAt: record.CreatedAt,
			UpdatedAt: record.UpdatedAt,
		}, nil

	case models.KindSellForm:
		record := buildSellRecord(input)
		if err := s.deps.Repository.InsertSell(ctx, record); err != nil {
			return models.SubmissionSummary{}, err
		}
		return models.SubmissionSummary{
			ID:        record.ID,
			Kind:      input.Kind,
			Status:    string(record.Status),
			Name:      record.Name,
			Email:     record.Email,
			Headline:  record.WatchBrand + " " + record.WatchModel,
			CreatedAt: record.CreatedAt,
			UpdatedAt: record.UpdatedAt,
		}, nil
	}

	return models.SubmissionSummary{}, errors.NewInvalidFormKindError(string(input.Kind))
}
