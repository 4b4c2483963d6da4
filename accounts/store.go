package accounts

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrAccountNotFound is returned by a Store when no document matches the
// given identifier.
var ErrAccountNotFound = errors.New("account not found")

// Store manages data regarding accounts.
type Store interface {
	// Get account details.
	Account(ctx context.Context, id primitive.ObjectID) (Account, error)

	// Insert a new account, returning the store-assigned identifier.
	InsertAccount(ctx context.Context, a *Account) (primitive.ObjectID, error)

	// Atomically overwrite the client-writable fields and updatedAt of the
	// account matching id, returning the post-update document. Fields not
	// written (id, createdAt) are left untouched.
	ReplaceAccount(ctx context.Context, id primitive.ObjectID, p Payload, updatedAt time.Time) (Account, error)

	// Count accounts grouped by scope. Grouping happens store-side.
	CountByScope(ctx context.Context) (map[Scope]int64, error)
}
