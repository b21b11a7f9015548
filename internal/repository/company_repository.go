package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"logiscore/internal/models"

	"github.com/google/uuid"
)

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrBranchNotFound  = errors.New("branch not found")
)

// CompanyRepository handles companies and their branches
type CompanyRepository struct {
	db *sql.DB
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Create inserts a company
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	query := `
		INSERT INTO companies (id, name, website, logo_url, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`

	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		company.ID,
		company.Name,
		company.Website,
		company.LogoURL,
		company.Description,
		company.IsActive,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}

	company.CreatedAt = now
	company.UpdatedAt = now
	return nil
}

// GetByID retrieves a company regardless of its active flag
func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	query := `
		SELECT id, name, website, logo_url, description, is_active, created_at, updated_at
		FROM companies
		WHERE id = $1
	`

	company := &models.Company{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.Website,
		&company.LogoURL,
		&company.Description,
		&company.IsActive,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	return company, nil
}

// ListFilter selects companies for listings and search
type ListFilter struct {
	Query  string // case-insensitive substring of the name
	Skip   int
	Limit  int
	Random bool // random sample instead of name order
}

// List returns active companies with their rating over active reviews.
// Rating is the mean aggregate rating, the same value the summary reports.
func (r *CompanyRepository) List(ctx context.Context, f ListFilter) ([]models.CompanyListing, error) {
	query := `
		SELECT c.id, c.name, c.website, c.logo_url, c.description, c.is_active, c.created_at, c.updated_at,
		       AVG(rv.aggregate_rating), COUNT(rv.id)
		FROM companies c
		LEFT JOIN reviews rv ON rv.company_id = c.id AND rv.is_active = TRUE
		WHERE c.is_active = TRUE
	`

	args := []any{}
	argPos := 1

	if f.Query != "" {
		query += fmt.Sprintf(` AND c.name ILIKE $%d ESCAPE '\'`, argPos)
		args = append(args, "%"+escapeLike(f.Query)+"%")
		argPos++
	}

	query += ` GROUP BY c.id`
	if f.Random {
		query += ` ORDER BY RANDOM()`
	} else {
		query += ` ORDER BY c.name, c.id`
	}

	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, argPos, argPos+1)
	args = append(args, f.Limit, f.Skip)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	listings := []models.CompanyListing{}
	for rows.Next() {
		var l models.CompanyListing
		var rating sql.NullFloat64
		if err := rows.Scan(
			&l.ID,
			&l.Name,
			&l.Website,
			&l.LogoURL,
			&l.Description,
			&l.IsActive,
			&l.CreatedAt,
			&l.UpdatedAt,
			&rating,
			&l.ReviewCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		if rating.Valid {
			l.Rating = &rating.Float64
		}
		listings = append(listings, l)
	}

	return listings, rows.Err()
}

// Suggestions returns up to limit active company names containing q
func (r *CompanyRepository) Suggestions(ctx context.Context, q string, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name FROM companies
		WHERE is_active = TRUE AND name ILIKE $1 ESCAPE '\'
		ORDER BY name
		LIMIT $2
	`, "%"+escapeLike(q)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestions: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Count returns the number of companies
func (r *CompanyRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM companies`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count companies: %w", err)
	}
	return count, nil
}

// CreateBranch inserts a branch
func (r *CompanyRepository) CreateBranch(ctx context.Context, branch *models.Branch) error {
	query := `
		INSERT INTO branches (id, company_id, name, location, address, phone, email, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`

	if branch.ID == uuid.Nil {
		branch.ID = uuid.New()
	}
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		branch.ID,
		branch.CompanyID,
		branch.Name,
		branch.Location,
		branch.Address,
		branch.Phone,
		branch.Email,
		branch.IsActive,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}

	branch.CreatedAt = now
	branch.UpdatedAt = now
	return nil
}

// GetBranch retrieves a branch by ID
func (r *CompanyRepository) GetBranch(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	query := `
		SELECT id, company_id, name, location, address, phone, email, is_active, created_at, updated_at
		FROM branches
		WHERE id = $1
	`

	b, err := scanBranch(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBranchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	return b, nil
}

// ListActiveBranches returns the active branches of a company
func (r *CompanyRepository) ListActiveBranches(ctx context.Context, companyID uuid.UUID) ([]models.Branch, error) {
	query := `
		SELECT id, company_id, name, location, address, phone, email, is_active, created_at, updated_at
		FROM branches
		WHERE company_id = $1 AND is_active = TRUE
		ORDER BY name, id
	`

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer rows.Close()

	branches := []models.Branch{}
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		branches = append(branches, *b)
	}
	return branches, rows.Err()
}

func scanBranch(row rowScanner) (*models.Branch, error) {
	b := &models.Branch{}
	err := row.Scan(
		&b.ID,
		&b.CompanyID,
		&b.Name,
		&b.Location,
		&b.Address,
		&b.Phone,
		&b.Email,
		&b.IsActive,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
