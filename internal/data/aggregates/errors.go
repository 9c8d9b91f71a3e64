package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/certchain-backend/internal/domain/faults"
)

// Messages are fixed per code so driver text (constraint names, column
// values, SQL) never reaches a caller. The driver error stays as the cause.
const (
	msgNotFound  = "record not found"
	msgConflict  = "record already exists"
	msgReference = "referenced record does not exist"
	msgInvalid   = "malformed identifier"
	msgRetry     = "concurrent update; retry"
	msgAborted   = "database operation aborted"
	msgInternal  = "database operation failed"
)

// MapError maps persistence failures into fault codes. Errors that already
// carry a fault code pass through unchanged.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *faults.Error
	if errors.As(err, &fe) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return faults.New(faults.CodeNotFound, op, msgNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return faults.New(faults.CodeConflict, op, msgConflict, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return faults.New(faults.CodeInternal, op, msgAborted, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return faults.New(faults.CodeConflict, op, msgConflict, err) // unique_violation
		case "23503":
			return faults.New(faults.CodeNotFound, op, msgReference, err) // foreign_key_violation
		case "40001":
			return faults.New(faults.CodeConflict, op, msgRetry, err) // serialization_failure
		case "22P02":
			return faults.New(faults.CodeValidation, op, msgInvalid, err) // invalid_text_representation
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"):
		return faults.New(faults.CodeConflict, op, msgConflict, err)
	default:
		return faults.New(faults.CodeInternal, op, msgInternal, err)
	}
}
