package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"logiscore/internal/models"

	"github.com/google/uuid"
)

var ErrDisputeNotFound = errors.New("dispute not found")

// DisputeRepository handles reports against reviews
type DisputeRepository struct {
	db *sql.DB
}

// NewDisputeRepository creates a new dispute repository
func NewDisputeRepository(db *sql.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

// Create inserts a pending dispute
func (r *DisputeRepository) Create(ctx context.Context, d *models.Dispute) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.Status = models.DisputeStatusPending
	now := time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO disputes (id, review_id, reported_by, reason, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, d.ID, d.ReviewID, d.ReportedBy, d.Reason, d.Description, d.Status, now)
	if err != nil {
		return fmt.Errorf("failed to create dispute: %w", err)
	}

	d.CreatedAt = now
	d.UpdatedAt = now
	return nil
}

// List returns disputes, optionally filtered by status, newest first
func (r *DisputeRepository) List(ctx context.Context, status string) ([]models.Dispute, error) {
	query := `
		SELECT id, review_id, reported_by, reason, description, status, admin_notes, resolved_at, created_at, updated_at
		FROM disputes
	`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list disputes: %w", err)
	}
	defer rows.Close()

	disputes := []models.Dispute{}
	for rows.Next() {
		var d models.Dispute
		if err := rows.Scan(
			&d.ID,
			&d.ReviewID,
			&d.ReportedBy,
			&d.Reason,
			&d.Description,
			&d.Status,
			&d.AdminNotes,
			&d.ResolvedAt,
			&d.CreatedAt,
			&d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan dispute: %w", err)
		}
		disputes = append(disputes, d)
	}
	return disputes, rows.Err()
}

// Resolve closes a pending dispute with the given status
func (r *DisputeRepository) Resolve(ctx context.Context, id uuid.UUID, status string, notes *string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE disputes
		SET status = $1, admin_notes = $2, resolved_at = NOW(), updated_at = NOW()
		WHERE id = $3 AND status = 'pending'
	`, status, notes, id)
	if err != nil {
		return fmt.Errorf("failed to resolve dispute: %w", err)
	}
	return expectOne(result, ErrDisputeNotFound)
}

// CountPending returns the number of open disputes
func (r *DisputeRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM disputes WHERE status = 'pending'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count disputes: %w", err)
	}
	return count, nil
}
