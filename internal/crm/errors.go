package crm

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/wolfeidau/leadcrm/internal/store"
)

var (
	// ErrNotFound is returned for records that do not exist and for records
	// outside the principal's scope. The two cases are indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the principal's role may never perform the
	// operation.
	ErrForbidden = errors.New("forbidden")

	// ErrIntegrityViolation is returned when a write would link records of
	// different organizations.
	ErrIntegrityViolation = errors.New("integrity violation")

	// ErrNotificationFailed marks a notification that could not be dispatched.
	// It is logged and never returned from the operation that raised it.
	ErrNotificationFailed = errors.New("notification failed")

	// ErrConflict is returned when a unique value such as a username is taken.
	ErrConflict = errors.New("conflict")
)

// ValidationError carries per-field input errors.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// mapStoreError translates store sentinels into engine errors.
func mapStoreError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrLeadNotFound),
		errors.Is(err, store.ErrAgentNotFound),
		errors.Is(err, store.ErrCategoryNotFound),
		errors.Is(err, store.ErrAccountNotFound),
		errors.Is(err, store.ErrOrganizationNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, store.ErrAccountAlreadyExists),
		errors.Is(err, store.ErrAgentAlreadyExists),
		errors.Is(err, store.ErrOrganizationAlreadyExists):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
