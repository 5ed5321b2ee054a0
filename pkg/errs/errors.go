package errs

import (
	"errors"
	"net/http"
)

const (
	ErrStatusInternalServer     = http.StatusInternalServerError
	ErrStatusClient             = http.StatusBadRequest
	ErrStatusNotLoggedIn        = http.StatusUnauthorized
	ErrStatusNoPermission       = http.StatusForbidden
	ErrStatusNotFound           = http.StatusNotFound
	ErrStatusConflict           = http.StatusConflict
	ErrStatusServiceUnavailable = http.StatusServiceUnavailable
)

var (
	ErrInternalServer      = errors.New("Internal server error")
	ErrClient              = errors.New("Bad request")
	ErrValidation          = errors.New("Invalid request")
	ErrMalformedCredential = errors.New("Malformed credentials")
	ErrLoginFailed         = errors.New("Login failed")
	ErrUnauthenticated     = errors.New("Missing or invalid bearer token")
	ErrUnauthorized        = errors.New("Forbidden access")
	ErrNotFound            = errors.New("Resource not found")
	ErrConflict            = errors.New("Conflicting record found")
	ErrDuplicateResource   = errors.New("Resource already exists")
	ErrServiceUnavailable  = errors.New("Service unavailable")
	ErrUnknownRole         = errors.New("Unknown role")
	ErrPrecondition        = errors.New("Precondition failed")

	// ErrDuplicateBadgeIdentifier is always wrapped together with ErrDuplicateResource.
	ErrDuplicateBadgeIdentifier = errors.New("Badge identifier has already been used")
)

// errorStatuses is checked in order, so more specific kinds come first.
var errorStatuses = []struct {
	err    error
	status int
}{
	{ErrMalformedCredential, ErrStatusClient},
	{ErrValidation, ErrStatusClient},
	{ErrClient, ErrStatusClient},
	{ErrLoginFailed, ErrStatusNotLoggedIn},
	{ErrUnauthenticated, ErrStatusNotLoggedIn},
	{ErrUnauthorized, ErrStatusNoPermission},
	{ErrNotFound, ErrStatusNotFound},
	{ErrConflict, ErrStatusConflict},
	{ErrDuplicateResource, ErrStatusConflict},
	{ErrServiceUnavailable, ErrStatusServiceUnavailable},
	{ErrUnknownRole, ErrStatusInternalServer},
	{ErrPrecondition, ErrStatusInternalServer},
	{ErrInternalServer, ErrStatusInternalServer},
}

func GetErrorStatusCode(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return ErrStatusInternalServer
}
