// Package backoffice implements the admin dashboard operations: listing
// intake requests across the three pipelines, inspecting one, and moving it
// through its status lifecycle.
package backoffice

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/errors"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

func tableFor(kind models.FormKind) string {
	switch kind {
	case models.KindRepairForm:
		return "repair_requests"
	case models.KindRequestForm:
		return "personalized_requests"
	case models.KindSellForm:
		return "sell_requests"
	}
	return ""
}

func headlineColumnsFor(kind models.FormKind) string {
	if kind == models.KindRequestForm {
		return "watch_type, ''"
	}
	return "watch_brand, watch_model"
}

// Repository reads and updates intake records for the back office.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListByKind returns summaries for one pipeline, optionally narrowed to a
// single status, newest first.
func (r *Repository) ListByKind(ctx context.Context, kind models.FormKind, status string, limit, offset int) ([]models.SubmissionSummary, error) {
	table := tableFor(kind)
	if table == "" {
		return nil, errors.NewInvalidFormKindError(string(kind))
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT id, status, name, email, %s, created_at, updated_at
		FROM %s`, headlineColumnsFor(kind), table)

	args := []interface{}{}
	if status != "" {
		args = append(args, status)
		query += " WHERE status = $1"
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("backoffice_list", err)
	}
	defer rows.Close()

	var summaries []models.SubmissionSummary
	for rows.Next() {
		var s models.SubmissionSummary
		var headlineA, headlineB string
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&s.ID, &s.Status, &s.Name, &s.Email, &headlineA, &headlineB, &createdAt, &updatedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("backoffice_list", err)
		}
		s.Kind = kind
		s.Headline = headlineA
		if headlineB != "" {
			s.Headline = headlineA + " " + headlineB
		}
		s.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		s.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("backoffice_list", err)
	}

	return summaries, nil
}

// GetRepair returns one repair request in full.
func (r *Repository) GetRepair(ctx context.Context, id string) (*models.RepairRequest, error) {
	var rec models.RepairRequest
	var serialNumber, phone, adminNotes sql.NullString
	var createdAt, updatedAt time.Time

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, watch_brand, watch_model, serial_number,
		       issue_description, service_type, name, email, phone,
		       status, admin_notes, created_at, updated_at
		FROM repair_requests
		WHERE id = $1`, id).Scan(
		&rec.ID, &rec.UserID, &rec.WatchBrand, &rec.WatchModel, &serialNumber,
		&rec.IssueDescription, &rec.ServiceType, &rec.Name, &rec.Email, &phone,
		&rec.Status, &adminNotes, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewResourceNotFoundError("repair_request", id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("backoffice_get", err)
	}

	rec.SerialNumber = serialNumber.String
	rec.Phone = phone.String
	rec.AdminNotes = adminNotes.String
	rec.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	rec.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
	return &rec, nil
}

// GetPersonalized returns one personalized request in full.
func (r *Repository) GetPersonalized(ctx context.Context, id string) (*models.PersonalizedRequest, error) {
	var rec models.PersonalizedRequest
	var brandPreference, notes, adminNotes sql.NullString
	var createdAt, updatedAt time.Time

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, watch_type, brand_preference, budget_min, budget_max,
		       notes, name, email, status, admin_notes, created_at, updated_at
		FROM personalized_requests
		WHERE id = $1`, id).Scan(
		&rec.ID, &rec.UserID, &rec.WatchType, &brandPreference, &rec.BudgetMin, &rec.BudgetMax,
		&notes, &rec.Name, &rec.Email, &rec.Status, &adminNotes, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewResourceNotFoundError("personalized_request", id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("backoffice_get", err)
	}

	rec.BrandPreference = brandPreference.String
	rec.Notes = notes.String
	rec.AdminNotes = adminNotes.String
	rec.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	rec.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
	return &rec, nil
}

// GetSell returns one sell proposal in full.
func (r *Repository) GetSell(ctx context.Context, id string) (*models.SellRequest, error) {
	var rec models.SellRequest
	var description, phone, adminNotes sql.NullString
	var year sql.NullInt64
	var createdAt, updatedAt time.Time

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, watch_brand, watch_model, year, condition, desired_price,
		       has_box, has_papers, description, name, email, phone,
		       status, admin_notes, created_at, updated_at
		FROM sell_requests
		WHERE id = $1`, id).Scan(
		&rec.ID, &rec.UserID, &rec.WatchBrand, &rec.WatchModel, &year, &rec.Condition, &rec.DesiredPrice,
		&rec.HasBox, &rec.HasPapers, &description, &rec.Name, &rec.Email, &phone,
		&rec.Status, &adminNotes, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewResourceNotFoundError("sell_request", id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("backoffice_get", err)
	}

	rec.Year = int(year.Int64)
	rec.Description = description.String
	rec.Phone = phone.String
	rec.AdminNotes = adminNotes.String
	rec.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	rec.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
	return &rec, nil
}

// UpdateStatus moves a record to a new status. Concurrent edits resolve
// last-write-wins; updated_at records the winner.
func (r *Repository) UpdateStatus(ctx context.Context, kind models.FormKind, id, status string) error {
	table := tableFor(kind)
	if table == "" {
		return errors.NewInvalidFormKindError(string(kind))
	}

	query := fmt.Sprintf(`UPDATE %s SET status = $1, updated_at = $2 WHERE id = $3`, table)
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return errors.NewQueryExecutionFailedError("backoffice_update_status", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewQueryExecutionFailedError("backoffice_update_status", err)
	}
	if affected == 0 {
		return errors.NewResourceNotFoundError(table, id)
	}
	return nil
}

// UpdateAdminNotes replaces the internal notes on a record, last-write-wins.
func (r *Repository) UpdateAdminNotes(ctx context.Context, kind models.FormKind, id, notes string) error {
	table := tableFor(kind)
	if table == "" {
		return errors.NewInvalidFormKindError(string(kind))
	}

	query := fmt.Sprintf(`UPDATE %s SET admin_notes = $1, updated_at = $2 WHERE id = $3`, table)
	result, err := r.db.ExecContext(ctx, query, notes, time.Now().UTC(), id)
	if err != nil {
		return errors.NewQueryExecutionFailedError("backoffice_update_notes", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewQueryExecutionFailedError("backoffice_update_notes", err)
	}
	if affected == 0 {
		return errors.NewResourceNotFoundError(table, id)
	}
	return nil
}

// CountByStatus returns how many records sit in each status of one pipeline.
func (r *Repository) CountByStatus(ctx context.Context, kind models.FormKind) (map[string]int, error) {
	table := tableFor(kind)
	if table == "" {
		return nil, errors.NewInvalidFormKindError(string(kind))
	}

	query := fmt.Sprintf(`SELECT status, COUNT(*) FROM %s GROUP BY status`, table)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("backoffice_counts", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, errors.NewQueryExecutionFailedError("backoffice_counts", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
