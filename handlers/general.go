package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hydraulics-labs/account-registry-api/errors"
	log "github.com/sirupsen/logrus"
)

var (
	EmptyBodyError = &errors.RequestError{
		StatusCode: http.StatusBadRequest,
		Err:        fmt.Errorf("empty body"),
	}
	InvalidBodyError = &errors.RequestError{
		StatusCode: http.StatusBadRequest,
		Err:        fmt.Errorf("invalid body"),
	}
)

// ErrorResponse is the JSON body for plain-message failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationResponse is the JSON body for schema and policy failures.
type ValidationResponse struct {
	Errors []errors.Violation `json:"errors"`
}

// handleError is a helper function for unified HTTP error handling.
// The response shape depends on the error kind: validation and policy
// failures list their violations, everything else carries a plain message.
func handleError(rw http.ResponseWriter, r *http.Request, err error) {
	log.
		WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err,
		}).
		Warn("Request failed")

	switch err := err.(type) {
	case *errors.ValidationError:
		handleJsonResponse(rw, http.StatusBadRequest, ValidationResponse{Errors: err.Violations})
	case *errors.RequestError:
		handleJsonResponse(rw, err.StatusCode, ErrorResponse{Error: err.Error()})
	default:
		// Store failure messages pass through verbatim
		handleJsonResponse(rw, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

// handleJsonResponse is a helper function for unified JSON response handling.
func handleJsonResponse(rw http.ResponseWriter, status int, res interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(res); err != nil {
		log.WithFields(log.Fields{"error": err}).Warn("Error while encoding response")
	}
}

func checkNonEmptyBody(r *http.Request) error {
	if r.Body == nil || r.ContentLength == 0 {
		return EmptyBodyError
	}
	return nil
}
