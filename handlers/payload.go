package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hydraulics-labs/account-registry-api/accounts"
	"github.com/hydraulics-labs/account-registry-api/errors"
)

type contextKey int

const (
	payloadKey contextKey = iota
	rawBodyKey
)

// UseAccountPayload validates the request body against the account write
// schema before the route handler runs. The validated payload and the raw
// top-level key set are stored on the request context; the raw keys are kept
// separately because timestamp ownership is checked against fields the
// schema strips.
func UseAccountPayload(h http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if err := checkNonEmptyBody(r); err != nil {
			handleError(rw, r, err)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			handleError(rw, r, InvalidBodyError)
			return
		}

		var raw accounts.RawBody
		if err := json.Unmarshal(body, &raw); err != nil {
			handleError(rw, r, InvalidBodyError)
			return
		}

		var p accounts.Payload
		if err := json.Unmarshal(body, &p); err != nil {
			// A field of the wrong JSON type is a schema failure and gets a
			// structured violation; only malformed JSON stays generic.
			if typeErr, ok := err.(*json.UnmarshalTypeError); ok && typeErr.Field != "" {
				handleError(rw, r, &errors.ValidationError{Violations: []errors.Violation{{
					Path:    []string{typeErr.Field},
					Message: fmt.Sprintf("%s must be a %s, got %s", typeErr.Field, typeErr.Type.Kind(), typeErr.Value),
				}}})
				return
			}
			handleError(rw, r, InvalidBodyError)
			return
		}

		if err := p.Validate(); err != nil {
			handleError(rw, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), payloadKey, p)
		ctx = context.WithValue(ctx, rawBodyKey, raw)

		h.ServeHTTP(rw, r.WithContext(ctx))
	})
}

func accountPayloadFrom(r *http.Request) (accounts.Payload, accounts.RawBody, bool) {
	p, pok := r.Context().Value(payloadKey).(accounts.Payload)
	raw, rok := r.Context().Value(rawBodyKey).(accounts.RawBody)
	return p, raw, pok && rok
}
