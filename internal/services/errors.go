package services

import (
	"errors"
	"fmt"

	"petshop/internal/apperrors"
	"petshop/internal/repositories"

	"gorm.io/gorm"
)

// notFoundAs turns a repository miss into a NotFound application error and
// passes anything else through.
func notFoundAs(err error, format string, args ...interface{}) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound(format, args...)
	}
	return err
}

// conflictIfInUse turns a delete blocked by referencing rows into a
// Conflict application error.
func conflictIfInUse(err error, format string, args ...interface{}) error {
	if errors.Is(err, repositories.ErrInUse) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return apperrors.Wrap(apperrors.KindConflict, err, format, args...)
	}
	return err
}

func lockKeyCart(userID uint) string { return fmt.Sprintf("cart:%d", userID) }

func lockKeyBooking(code string) string { return "booking:" + code }
