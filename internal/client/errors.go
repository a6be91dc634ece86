package client

import (
	"fmt"
	"net/http"

	"predman/internal/domain"
)

// APIError is a non-2xx answer of the content service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("content service: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("content service: %d %s", e.Status, e.Message)
}

// Unwrap lets errors.Is match the domain sentinels.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusBadRequest:
		return domain.ErrInvalidInput
	}
	return nil
}
