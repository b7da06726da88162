package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/manufactura-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// classify traduce errores de pgx a los errores de dominio, conservando el original.
//
//	40001, 40P01, 55P03         -> ErrConcurrentModification
//	23514, 22003                -> ErrInvalidQuantity
//	23505                       -> ErrDuplicate
//	23503                       -> ErrNotFound
//	clase 08, timeouts, resto   -> ErrStorageUnavailable
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "40001", // serialization_failure
			pgErr.Code == "40P01", // deadlock_detected
			pgErr.Code == "55P03": // lock_not_available (lock_timeout)
			return fmt.Errorf("%s: %w: %w", op, domain.ErrConcurrentModification, err)
		case pgErr.Code == "23514", // check_violation
			pgErr.Code == "22003": // numeric_value_out_of_range
			return fmt.Errorf("%s: %w: %w", op, domain.ErrInvalidQuantity, err)
		case pgErr.Code == "23505":
			return fmt.Errorf("%s: %w: %w", op, domain.ErrDuplicate, err)
		case pgErr.Code == "23503":
			return fmt.Errorf("%s: %w: %w", op, domain.ErrNotFound, err)
		}
	} else if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrDuplicate, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}

// isTransient indica fallas de conexión o de tiempo; se usa solo para logs de arranque.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08")
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}

// nullTime convierte la fecha cero en NULL.
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func fromNullTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
