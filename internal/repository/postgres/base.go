package postgres

import (
	"context"
	"database/sql"
	"errors"
	"net"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	apperrors "github.com/showrunner/notification-api/pkg/errors"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return translateError(err, "transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// pq error classes that indicate the write itself was invalid
const (
	pqClassIntegrityViolation = "23"
	pqClassDataException      = "22"
)

// translateError maps driver errors onto the service error taxonomy.
// sql.ErrNoRows becomes NotFound, constraint and data errors become
// ValidationError, and timeouts or connection failures become a retryable
// TransientStoreError.
func translateError(err error, resource string) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFound(resource, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		class := string(pqErr.Code.Class())
		if class == pqClassIntegrityViolation || class == pqClassDataException {
			return apperrors.NewValidation("invalid "+resource, err)
		}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) ||
		errors.Is(err, sql.ErrConnDone) {
		return apperrors.NewTransient("notification store unavailable", err)
	}

	return apperrors.NewInternal(err)
}
