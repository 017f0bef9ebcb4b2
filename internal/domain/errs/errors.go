package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Match with errors.Is.
var (
	ErrDuplicateModel            = errors.New("duplicate model")
	ErrUnknownModel              = errors.New("unknown model")
	ErrUnknownRelationTarget     = errors.New("unknown relation target")
	ErrMissingRequiredAttribute  = errors.New("missing required attribute")
	ErrMissingRequiredRelation   = errors.New("missing required relation")
	ErrValidation                = errors.New("validation failed")
	ErrUniqueConstraintViolation = errors.New("unique constraint violation")
	ErrPublishConflict           = errors.New("publish conflict")
	ErrNotFound                  = errors.New("not found")
	ErrRegistrySealed            = errors.New("registry sealed")
)

// FieldError is a single field failure. Every FieldError is also an
// ErrValidation, whatever its specific Kind.
type FieldError struct {
	Field  string
	Reason string
	Kind   error
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrValidation || (e.Kind != nil && target == e.Kind)
}

func (e *FieldError) Unwrap() error { return e.Kind }

// Invalid builds a plain validation failure.
func Invalid(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...), Kind: ErrValidation}
}

// Missing builds a required-attribute failure.
func Missing(field string) *FieldError {
	return &FieldError{Field: field, Reason: "is required", Kind: ErrMissingRequiredAttribute}
}

// MissingRelation builds a required-relation failure.
func MissingRelation(field string) *FieldError {
	return &FieldError{Field: field, Reason: "relation is required", Kind: ErrMissingRequiredRelation}
}

// ValidationErrors collects all failures of one operation.
type ValidationErrors []*FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	out := make([]error, 0, len(v))
	for _, fe := range v {
		out = append(out, fe)
	}
	return out
}

// Add appends err, flattening nested ValidationErrors. Non-field errors are
// recorded under field with their message.
func (v *ValidationErrors) Add(field string, err error) {
	if err == nil {
		return
	}
	var many ValidationErrors
	if errors.As(err, &many) {
		for _, fe := range many {
			*v = append(*v, prefixed(field, fe))
		}
		return
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		*v = append(*v, prefixed(field, fe))
		return
	}
	*v = append(*v, &FieldError{Field: field, Reason: err.Error(), Kind: ErrValidation})
}

// Err returns nil when nothing was collected.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func prefixed(field string, fe *FieldError) *FieldError {
	if field == "" || fe.Field == field {
		return fe
	}
	out := *fe
	if out.Field == "" {
		out.Field = field
	} else {
		out.Field = field + "." + out.Field
	}
	return &out
}

// UniqueError is a storage-level duplicate key. Callers should retry with
// fresh data.
type UniqueError struct {
	Table string
	Err   error
}

func (e *UniqueError) Error() string {
	return fmt.Sprintf("unique constraint violation on %s: %v", e.Table, e.Err)
}

func (e *UniqueError) Is(target error) bool { return target == ErrUniqueConstraintViolation }

func (e *UniqueError) Unwrap() error { return e.Err }

// NotFound wraps ErrNotFound with the missing thing's name.
func NotFound(what string, id any) error {
	return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
}
