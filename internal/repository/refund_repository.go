package repository

import (
	"context"
	"errors"
	"fmt"

	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// refundRepository implements the RefundRepository interface using PostgreSQL.
type refundRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRefundRepository creates a new PostgreSQL-backed refund repository.
func NewRefundRepository(pool *pgxpool.Pool, logger zerolog.Logger) RefundRepository {
	return &refundRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "refund").Logger(),
	}
}

// CreateRefund inserts a new refund request. A partial unique index on
// (order_id) over non-terminal rows makes "at most one open request per
// order" a database invariant; the unique violation maps to the domain error.
func (r *refundRepository) CreateRefund(ctx context.Context, req *model.RefundRequest) error {
	query := `
		INSERT INTO refund_requests (id, order_id, customer_id, reason,
			account_number, bank_name, account_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		req.ID, req.OrderID, req.CustomerID, req.Reason,
		req.AccountNumber, req.BankName, req.AccountName,
		req.Status, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Warn().
				Str("order_id", req.OrderID.String()).
				Msg("refund request already pending for order")
			return model.ErrRefundAlreadyPending
		}
		r.logger.Error().Err(err).Str("order_id", req.OrderID.String()).Msg("failed to create refund request")
		return fmt.Errorf("failed to create refund request: %w", err)
	}

	r.logger.Debug().
		Str("refund_id", req.ID.String()).
		Str("order_id", req.OrderID.String()).
		Msg("refund request created")

	return nil
}

// GetRefundByID retrieves a refund request.
func (r *refundRepository) GetRefundByID(ctx context.Context, id uuid.UUID) (*model.RefundRequest, error) {
	query := `
		SELECT id, order_id, customer_id, reason, account_number, bank_name,
			account_name, status, created_at, updated_at
		FROM refund_requests
		WHERE id = $1
	`

	var req model.RefundRequest
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.OrderID, &req.CustomerID, &req.Reason,
		&req.AccountNumber, &req.BankName, &req.AccountName,
		&req.Status, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("refund_id", id.String()).Msg("failed to query refund request")
		return nil, fmt.Errorf("failed to query refund request: %w", err)
	}

	return &req, nil
}

// UpdateRefundStatus moves a refund request out of PENDING. The guard keeps
// resolved requests immutable.
func (r *refundRepository) UpdateRefundStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, to model.RefundStatus) (bool, error) {
	query := `
		UPDATE refund_requests
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := tx.Exec(ctx, query, id, model.RefundPending, to)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("refund_id", id.String()).
			Str("to", string(to)).
			Msg("failed to update refund status")
		return false, fmt.Errorf("failed to update refund status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// CreateComplaint inserts a new complaint.
func (r *refundRepository) CreateComplaint(ctx context.Context, complaint *model.Complaint) error {
	query := `
		INSERT INTO complaints (id, order_id, customer_id, title, description, category, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		complaint.ID, complaint.OrderID, complaint.CustomerID,
		complaint.Title, complaint.Description, complaint.Category,
		complaint.Status, complaint.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", complaint.OrderID.String()).Msg("failed to create complaint")
		return fmt.Errorf("failed to create complaint: %w", err)
	}

	return nil
}

// ListComplaintsByOrder returns all complaints filed against an order.
func (r *refundRepository) ListComplaintsByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Complaint, error) {
	query := `
		SELECT id, order_id, customer_id, title, description, category, status, created_at
		FROM complaints
		WHERE order_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query complaints")
		return nil, fmt.Errorf("failed to query complaints: %w", err)
	}
	defer rows.Close()

	var complaints []model.Complaint
	for rows.Next() {
		var c model.Complaint
		err := rows.Scan(&c.ID, &c.OrderID, &c.CustomerID, &c.Title,
			&c.Description, &c.Category, &c.Status, &c.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan complaint row")
			return nil, fmt.Errorf("failed to scan complaint: %w", err)
		}
		complaints = append(complaints, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating complaint rows")
		return nil, fmt.Errorf("error iterating complaints: %w", err)
	}

	return complaints, nil
}
