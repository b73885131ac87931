package submissions

import (
	"context"
	"database/sql"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/errors"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/logger"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

// Repository persists intake records.
type Repository interface {
	InsertRepair(ctx context.Context, record *models.RepairRequest) error
	InsertPersonalized(ctx context.Context, record *models.PersonalizedRequest) error
	InsertSell(ctx context.Context, record *models.SellRequest) error
}

// PostgresRepository is the production Repository.
type PostgresRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresRepository(db *sql.DB, log logger.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:     db,
		logger: log,
	}
}

const insertRepairQuery = `
	INSERT INTO repair_requests (
		id, user_id, watch_brand, watch_model, serial_number,
		issue_description, service_type, name, email, phone,
		status, admin_notes, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

func (r *PostgresRepository) InsertRepair(ctx context.Context, record *models.RepairRequest) error {
	_, err := r.db.ExecContext(ctx, insertRepairQuery,
		record.ID, record.UserID, record.WatchBrand, record.WatchModel, record.SerialNumber,
		record.IssueDescription, record.ServiceType, record.Name, record.Email, record.Phone,
		string(record.Status), record.AdminNotes, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

const insertPersonalizedQuery = `
	INSERT INTO personalized_requests (
		id, user_id, watch_type, brand_preference, budget_min, budget_max,
		notes, name, email, status, admin_notes, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

func (r *PostgresRepository) InsertPersonalized(ctx context.Context, record *models.PersonalizedRequest) error {
	_, err := r.db.ExecContext(ctx, insertPersonalizedQuery,
		record.ID, record.UserID, record.WatchType, record.BrandPreference,
		record.BudgetMin, record.BudgetMax, record.Notes, record.Name, record.Email,
		string(record.Status), record.AdminNotes, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

const insertSellQuery = `
	INSERT INTO sell_requests (
		id, user_id, watch_brand, watch_model, year, condition, desired_price,
		has_box, has_papers, description, name, email, phone,
		status, admin_notes, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

func (r *PostgresRepository) InsertSell(ctx context.Context, record *models.SellRequest) error {
	_, err := r.db.ExecContext(ctx, insertSellQuery,
		record.ID, record.UserID, record.WatchBrand, record.WatchModel, record.Year,
		record.Condition, record.DesiredPrice, record.HasBox, record.HasPapers,
		record.Description, record.Name, record.Email, record.Phone,
		string(record.Status), record.AdminNotes, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}
