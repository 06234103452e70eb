package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/touchbasehq/touchbase-backend/internal/domain/apperr"
)

// MapError folds infrastructure failures into the domain error taxonomy.
// Errors that already carry a code pass through untouched.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Wrap(apperr.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperr.Wrap(apperr.CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return apperr.Wrap(apperr.CodeConflict, op, err) // unique_violation
		case "23503":
			return apperr.Wrap(apperr.CodeConflict, op, err) // foreign_key_violation
		case "40001", "40P01", "55P03":
			return apperr.Wrap(apperr.CodeRetryable, op, err) // serialization/deadlock/lock_not_available
		}
	}

	// sqlite and driver-wrapped failures only surface as text.
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "already exists"):
		return apperr.Wrap(apperr.CodeConflict, op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"):
		return apperr.Wrap(apperr.CodeRetryable, op, err)
	default:
		return apperr.Wrap(apperr.CodeInternal, op, err)
	}
}
