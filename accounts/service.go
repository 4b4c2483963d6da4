package accounts

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hydraulics-labs/account-registry-api/errors"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/ratelimit"
)

// Service defines the API for account management.
type Service interface {
	Create(ctx context.Context, p Payload, raw RawBody) (Account, error)
	Update(ctx context.Context, id string, p Payload, raw RawBody) (Account, error)
	Stats(ctx context.Context) (Stats, error)
}

// Stats holds account counts per scope.
type Stats struct {
	Accounts  int64 `json:"accounts"`
	Prospects int64 `json:"prospects"`
	Children  int64 `json:"children"`
}

type ServiceImpl struct {
	store            Store
	writeRateLimiter ratelimit.Limiter
}

// NewService initiates a new account service.
func NewService(store Store, opts ...ServiceOption) Service {
	svc := &ServiceImpl{store: store}

	for _, opt := range opts {
		opt(svc)
	}

	return svc
}

// Create stores a new account from a validated payload. Both timestamps are
// assigned by the server; a raw body carrying either timestamp key is
// rejected before anything reaches the store. The stored document is read
// back and re-validated so the response always carries the authoritative
// representation.
func (svc *ServiceImpl) Create(ctx context.Context, p Payload, raw RawBody) (Account, error) {
	if raw.Has("createdAt") || raw.Has("updatedAt") {
		return Account{}, &errors.ValidationError{Violations: []errors.Violation{{
			Path:    []string{"timestamps"},
			Message: "createdAt/updatedAt are not allowed on create",
		}}}
	}

	if svc.writeRateLimiter != nil {
		svc.writeRateLimiter.Take()
	}

	now := time.Now().UTC()
	doc := Account{Name: p.Name, Scope: p.Scope, CreatedAt: now, UpdatedAt: now}

	id, err := svc.store.InsertAccount(ctx, &doc)
	if err != nil {
		return Account{}, err
	}

	created, err := svc.store.Account(ctx, id)
	if err != nil {
		if err == ErrAccountNotFound {
			// A successful insert whose read-back yields nothing is a store
			// inconsistency, not a client error.
			return Account{}, &errors.RequestError{
				StatusCode: http.StatusInternalServerError,
				Err:        fmt.Errorf("failed to retrieve created account"),
			}
		}
		return Account{}, err
	}

	if err := created.Validate(); err != nil {
		return Account{}, err
	}

	log.WithFields(log.Fields{"id": created.ID.Hex(), "scope": created.Scope}).Debug("Account created")

	return created, nil
}

// Update overwrites the client-writable fields of an existing account.
// The identifier is validated before any lookup is attempted. A raw body
// carrying a createdAt key is rejected; updatedAt is reassigned by the
// server on every successful update.
func (svc *ServiceImpl) Update(ctx context.Context, id string, p Payload, raw RawBody) (Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Account{}, &errors.RequestError{
			StatusCode: http.StatusBadRequest,
			Err:        fmt.Errorf("invalid account ID format"),
		}
	}

	if raw.Has("createdAt") {
		return Account{}, &errors.ValidationError{Violations: []errors.Violation{{
			Path:    []string{"createdAt"},
			Message: "createdAt is not allowed on update",
		}}}
	}

	if svc.writeRateLimiter != nil {
		svc.writeRateLimiter.Take()
	}

	updated, err := svc.store.ReplaceAccount(ctx, oid, p, time.Now().UTC())
	if err != nil {
		if err == ErrAccountNotFound {
			return Account{}, &errors.RequestError{
				StatusCode: http.StatusNotFound,
				Err:        fmt.Errorf("account not found"),
			}
		}
		return Account{}, err
	}

	if err := updated.Validate(); err != nil {
		return Account{}, err
	}

	log.WithFields(log.Fields{"id": updated.ID.Hex(), "scope": updated.Scope}).Debug("Account updated")

	return updated, nil
}

// Stats returns account counts grouped by scope. Scope values outside the
// enumeration are ignored; the mapping is a closed lookup. An empty
// collection yields all-zero counts.
func (svc *ServiceImpl) Stats(ctx context.Context) (Stats, error) {
	counts, err := svc.store.CountByScope(ctx)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for scope, count := range counts {
		switch scope {
		case ScopeAccount:
			stats.Accounts = count
		case ScopeProspect:
			stats.Prospects = count
		case ScopeChild:
			stats.Children = count
		}
	}

	return stats, nil
}
