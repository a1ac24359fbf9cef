package models

import "errors"

// Failure classes. Handlers map them to transport status codes.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrTransactionFailed = errors.New("transaction failed")
)

// DomainError pairs a failure class with a message that is safe to show to users.
type DomainError struct {
	Kind    error
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Kind }

var (
	ErrRecordNotFound    = &DomainError{Kind: ErrNotFound, Message: "record not found"}
	ErrCategoryNotFound  = &DomainError{Kind: ErrNotFound, Message: "expense category not found"}
	ErrSettingsNotFound  = &DomainError{Kind: ErrNotFound, Message: "farm settings not found, use POST to create them"}
	ErrDuplicateRecord   = &DomainError{Kind: ErrConflict, Message: "a record already exists for this date"}
	ErrDuplicateCategory = &DomainError{Kind: ErrConflict, Message: "a category with this name already exists"}
	ErrSettingsExist     = &DomainError{Kind: ErrConflict, Message: "farm settings already exist, use PUT to update them"}
	ErrAdminOnly         = &DomainError{Kind: ErrForbidden, Message: "administrator role required"}
)
