// Package persistence is the key-value port the booking engine writes its state through,
// with memory, Redis, Postgres and DynamoDB backends.
package persistence

import (
	"context"
	"errors"
)

// Fixed record keys.
const (
	KeyAppointments = "therapy:appointments"
	KeyBookingDraft = "therapy:booking-draft"
)

// ErrEmptyKey is returned when a blank key is used.
var ErrEmptyKey = errors.New("persistence: key required")

// Port stores whole JSON documents by key. Load reports false when the key is absent.
type Port interface {
	Load(ctx context.Context, key string) (string, bool, error)
	Save(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
