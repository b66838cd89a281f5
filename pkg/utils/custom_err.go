package utils

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidPage        = errors.New("invalid page parameter")
	ErrInvalidPageSize    = errors.New("invalid page size parameter")
	ErrDatabaseError      = errors.New("database error")
	ErrProjectNotFound    = errors.New("project not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrForbidden          = errors.New("forbidden")
	ErrExportNotReady     = errors.New("dossier is not ready for export")

	// Completion provider errors.
	ErrNotConfigured     = errors.New("completion provider not configured")
	ErrGenerationFailed  = errors.New("generation failed")
	ErrMalformedResponse = errors.New("malformed provider response")
)
