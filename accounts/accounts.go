// Package accounts provides management for stored accounts.
package accounts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hydraulics-labs/account-registry-api/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Scope classifies an account.
type Scope string

const (
	ScopeAccount  Scope = "account"
	ScopeProspect Scope = "prospect"
	ScopeChild    Scope = "child"
)

// IsValid reports whether s is one of the enumerated scope values.
// Matching is exact, no case folding.
func (s Scope) IsValid() bool {
	switch s {
	case ScopeAccount, ScopeProspect, ScopeChild:
		return true
	}
	return false
}

// Account struct represents a storable account.
// CreatedAt and UpdatedAt are owned by the server and are never
// client-writable.
type Account struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Scope     Scope              `json:"scope" bson:"scope"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Validate checks a stored document against the account output schema.
// Documents are re-checked after every write so that a legacy shape in the
// store can never be returned to a client.
func (a Account) Validate() error {
	var vv []errors.Violation

	if a.Name == "" {
		vv = append(vv, errors.Violation{Path: []string{"name"}, Message: "Name is required"})
	}

	if !a.Scope.IsValid() {
		vv = append(vv, errors.Violation{
			Path:    []string{"scope"},
			Message: fmt.Sprintf(`scope must be one of "%s", "%s", "%s"`, ScopeAccount, ScopeProspect, ScopeChild),
		})
	}

	if a.CreatedAt.IsZero() {
		vv = append(vv, errors.Violation{Path: []string{"createdAt"}, Message: "createdAt is required"})
	}

	if a.UpdatedAt.IsZero() {
		vv = append(vv, errors.Violation{Path: []string{"updatedAt"}, Message: "updatedAt is required"})
	}

	if len(vv) > 0 {
		return &errors.ValidationError{Violations: vv}
	}

	return nil
}

// Payload is the client-writable subset of an account. Fields outside the
// payload schema are dropped on decode and never reach persistence.
type Payload struct {
	Name  string `json:"name"`
	Scope Scope  `json:"scope"`
}

// Validate checks the payload against the account write schema.
// All violations are collected, not just the first one found.
func (p Payload) Validate() error {
	var vv []errors.Violation

	if p.Name == "" {
		vv = append(vv, errors.Violation{Path: []string{"name"}, Message: "Name is required"})
	}

	if !p.Scope.IsValid() {
		vv = append(vv, errors.Violation{
			Path:    []string{"scope"},
			Message: fmt.Sprintf(`scope must be one of "%s", "%s", "%s"`, ScopeAccount, ScopeProspect, ScopeChild),
		})
	}

	if len(vv) > 0 {
		return &errors.ValidationError{Violations: vv}
	}

	return nil
}

// RawBody holds the undecoded top-level keys of a request body.
// Timestamp ownership is checked against it rather than the decoded payload,
// as the rule is about detecting client intent to set forbidden fields,
// which payload decoding would silently strip.
type RawBody map[string]json.RawMessage

// Has reports whether the raw body contained the given top-level key,
// regardless of its value or type.
func (b RawBody) Has(key string) bool {
	_, ok := b[key]
	return ok
}
