// Package postgres implements the mapping store on top of PostgreSQL.
// Every method executes exactly one statement, so each call commits or
// rolls back atomically and no partial state is ever visible.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"urlmapper/internal/database"
	"urlmapper/internal/models"
)

type mappingRecord struct {
	ID        int64     `db:"id"`
	Key       string    `db:"key"`
	TargetURL string    `db:"target_url"`
	IsActive  bool      `db:"is_active"`
	Clicks    int64     `db:"clicks"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *mappingRecord) ToURLMapping() *models.URLMapping {
	return &models.URLMapping{
		ID:        r.ID,
		Key:       r.Key,
		TargetURL: r.TargetURL,
		IsActive:  r.IsActive,
		Clicks:    r.Clicks,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// URLRepository owns the urls table. It is the only component that
// mutates mapping records.
type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{
		db: db,
	}
}

// Create inserts a new mapping for the given key and target URL.
// A unique_violation on the key maps to database.ErrKeyExists so the
// caller can retry with a fresh key.
func (r *URLRepository) Create(ctx context.Context, key, targetURL string) (*models.URLMapping, error) {
	const op = "database.postgres.URLRepository.Create"

	rec := new(mappingRecord)
	query := `INSERT INTO urls(key, target_url)
		VALUES ($1, $2)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, key, targetURL)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrKeyExists)
		}

		return nil, fmt.Errorf("%s: failed to create mapping record: %w", op, err)
	}

	return rec.ToURLMapping(), nil
}

// ResolveAndCount returns the active mapping for the key, incrementing its
// click counter in the same statement. The increment rides on the row lock
// taken by UPDATE, so concurrent resolutions of the same key never lose
// updates. Inactive and missing keys both map to database.ErrMappingNotFound
// and leave the counter untouched.
func (r *URLRepository) ResolveAndCount(ctx context.Context, key string) (*models.URLMapping, error) {
	const op = "database.postgres.URLRepository.ResolveAndCount"

	rec := new(mappingRecord)
	query := `UPDATE urls
		SET clicks = clicks + 1, updated_at = now()
		WHERE key = $1 AND is_active
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, database.ErrMappingNotFound)
		}

		return nil, fmt.Errorf("%s: failed to resolve mapping record: %w", op, err)
	}

	return rec.ToURLMapping(), nil
}

// GetByKey retrieves a mapping by key without side effects. Inactive
// mappings are returned too.
func (r *URLRepository) GetByKey(ctx context.Context, key string) (*models.URLMapping, error) {
	const op = "database.postgres.URLRepository.GetByKey"

	rec := new(mappingRecord)
	query := `SELECT * FROM urls
		WHERE key = $1`

	err := r.db.GetContext(ctx, rec, query, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, database.ErrMappingNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get mapping record: %w", op, err)
	}

	return rec.ToURLMapping(), nil
}

// Deactivate clears the active flag of a mapping. Deactivation is terminal;
// there is no reactivate operation. The row itself is kept so the key is
// never reused.
func (r *URLRepository) Deactivate(ctx context.Context, key string) (*models.URLMapping, error) {
	const op = "database.postgres.URLRepository.Deactivate"

	rec := new(mappingRecord)
	query := `UPDATE urls
		SET is_active = FALSE, updated_at = now()
		WHERE key = $1
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, database.ErrMappingNotFound)
		}

		return nil, fmt.Errorf("%s: failed to deactivate mapping record: %w", op, err)
	}

	return rec.ToURLMapping(), nil
}
