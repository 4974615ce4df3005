// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"

	"fittlyfans/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	// DefaultLimit applies when a caller passes a non-positive limit.
	DefaultLimit = 50
	// MaxLimit caps every page.
	MaxLimit = 100
)

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// mapReadError turns a gorm read error into an AppError.
func mapReadError(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// mapWriteError turns a gorm write error into an AppError, reporting
// uniqueness violations as conflicts.
func mapWriteError(err error, conflictMsg string) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if isUniqueConstraintError(err) {
		return models.NewConflictError(conflictMsg)
	}
	return models.NewInternalError(err)
}

// paginate applies a bounded limit and a non-negative offset.
func paginate(limit, offset int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			limit = DefaultLimit
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
		if offset < 0 {
			offset = 0
		}
		return db.Limit(limit).Offset(offset)
	}
}

// search matches term as a case-insensitive substring of any of columns.
// LOWER(..) LIKE behaves the same on postgres and sqlite. A blank term
// matches every row.
func search(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if strings.TrimSpace(term) == "" {
			return db
		}
		pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
		clauses := make([]string, len(columns))
		args := make([]any, len(columns))
		for i, col := range columns {
			clauses[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = pattern
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// patch is implemented by every typed partial-update struct in models.
type patch interface {
	IsEmpty() bool
	Columns() map[string]any
}

var errEmptyPatch = models.NewValidationError("no fields to update")

// applyPatch writes only the columns set in p to the rows selected by query.
// An empty patch writes nothing; a patch that matches no row is NOT_FOUND.
func applyPatch(query *gorm.DB, p patch, resource string, id any, conflictMsg string) error {
	if p.IsEmpty() {
		return errEmptyPatch
	}
	res := query.Updates(p.Columns())
	if res.Error != nil {
		return mapWriteError(res.Error, conflictMsg)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(resource, id)
	}
	return nil
}
