package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrSlotTaken is returned when the store rejects an insert because a
	// live reservation already holds an overlapping guard band.
	ErrSlotTaken = errors.New("slot already taken")
)

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// translateInsertError maps constraint violations raised by a conflicting
// concurrent insert to ErrSlotTaken; anything else is returned unchanged.
func translateInsertError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSlotTaken
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgUniqueViolation || pgErr.Code == pgExclusionViolation {
			return ErrSlotTaken
		}
	}
	return err
}
