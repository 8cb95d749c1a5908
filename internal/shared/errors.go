package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNotFound           = fmt.Errorf("resource not found")

	// Store errors
	ErrUserExists    = fmt.Errorf("user already exists")
	ErrUserNotFound  = fmt.Errorf("user not found")
	ErrEditConflict  = fmt.Errorf("edit conflict")
	ErrNoMigrations  = fmt.Errorf("no migrations to rollback")
	ErrInvalidRecord = fmt.Errorf("invalid record")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
