package services

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Failure taxonomy returned by the service layer. Handlers map these onto
// HTTP statuses; the services themselves never see a ResponseWriter.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnavailable     = errors.New("unavailable")
)

// storeErr normalizes a store failure for the named entity into the taxonomy
func storeErr(entity string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", entity, ErrNotFound)
	}
	// a unique index rejecting the write is a caller-visible conflict,
	// not a store outage
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %v: %w", entity, err, ErrConflict)
	}
	return fmt.Errorf("%s: %v: %w", entity, err, ErrUnavailable)
}
