// Package server provides the HTTP operator API for the outreach engine.
package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/instabids/outreach/internal/campaign"
	"github.com/instabids/outreach/internal/ledger"
)

// ErrValidation indicates a request that failed validation.
type ErrValidation struct {
	Message string
}

func (e *ErrValidation) Error() string {
	return "validation error: " + e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var (
		campaignNotFound  *campaign.NotFoundError
		recordNotFound    *ledger.NotFoundError
		illegalTransition *ledger.IllegalTransitionError
		validation        *ErrValidation
		fieldErrors       validator.ValidationErrors
	)
	switch {
	case errors.As(err, &campaignNotFound), errors.As(err, &recordNotFound):
		return http.StatusNotFound
	case errors.As(err, &illegalTransition):
		return http.StatusConflict
	case errors.As(err, &validation), errors.As(err, &fieldErrors):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
