package catalog

import "errors"

var (
	// ErrUnknownPackage is returned when a package key is not one of the fixed bundles
	ErrUnknownPackage = errors.New("catalog: unknown package")

	// ErrTherapistNotFound is returned when a therapist id is not in the catalog
	ErrTherapistNotFound = errors.New("catalog: therapist not found")
)
