package repositories

import (
	"errors"
	"strings"

	"github.com/anonto42/vortex/backend/internal/apperrors"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// translate maps store-level errors onto the service error kinds.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, mongo.ErrNoDocuments):
		return apperrors.NotFound(what)
	case isDuplicate(err):
		return apperrors.New(apperrors.ErrConflict, what+" already exists")
	default:
		return err
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || mongo.IsDuplicateKeyError(err) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
