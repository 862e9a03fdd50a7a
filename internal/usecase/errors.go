package usecase

import (
	"errors"
	"strings"

	"panda-service/internal/domain/entity"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// isDuplicateKeyError checks if the error is a unique violation on a constraint
// containing the specified name
func isDuplicateKeyError(err error, constraintName string) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") &&
		strings.Contains(err.Error(), constraintName)
}

// isForeignKeyError checks if the error is a foreign key violation
func isForeignKeyError(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23503 = foreign_key_violation
		return pgErr.Code == "23503"
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// logReadError logs corrupt stored data at error level and anything else as a warning.
func logReadError(log *logrus.Logger, what string, err error) {
	if errors.Is(err, entity.ErrDataIntegrity) {
		log.Errorf("Corrupt stored data reading %s: %+v", what, err)
		return
	}
	log.Warnf("Failed to find %s: %+v", what, err)
}
