package accounts

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hydraulics-labs/account-registry-api/errors"
)

func rawBody(t *testing.T, body string) RawBody {
	t.Helper()

	var raw RawBody
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatal(err)
	}

	return raw
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id and both timestamps", func(t *testing.T) {
		service, _ := SetupTestService()

		a, err := service.Create(ctx, Payload{Name: "Test", Scope: ScopeAccount}, rawBody(t, `{"name":"Test","scope":"account"}`))
		if err != nil {
			t.Fatal(err)
		}

		if a.ID.IsZero() {
			t.Error("expected a store-assigned id")
		}

		if !a.CreatedAt.Equal(a.UpdatedAt) {
			t.Errorf("expected createdAt to equal updatedAt, got %s and %s", a.CreatedAt, a.UpdatedAt)
		}

		if a.CreatedAt.IsZero() {
			t.Error("expected a non-zero createdAt")
		}
	})

	t.Run("rejects client-supplied timestamps", func(t *testing.T) {
		service, store := SetupTestService()

		bodies := []string{
			`{"name":"A","scope":"account","createdAt":"2020-01-01"}`,
			`{"name":"A","scope":"account","updatedAt":"2020-01-01"}`,
		}

		for _, body := range bodies {
			_, err := service.Create(ctx, Payload{Name: "A", Scope: ScopeAccount}, rawBody(t, body))

			verr, ok := err.(*errors.ValidationError)
			if !ok {
				t.Fatalf("expected a ValidationError for %s, got %T", body, err)
			}

			expected := []errors.Violation{{
				Path:    []string{"timestamps"},
				Message: "createdAt/updatedAt are not allowed on create",
			}}
			if diff := cmp.Diff(expected, verr.Violations); diff != "" {
				t.Errorf("violation mismatch (-want +got):\n%s", diff)
			}
		}

		if store.WriteCount != 0 {
			t.Errorf("expected no store writes, got %d", store.WriteCount)
		}
	})

	t.Run("read-back yielding nothing is a store inconsistency", func(t *testing.T) {
		service, store := SetupTestService()
		store.DropReads = true

		_, err := service.Create(ctx, Payload{Name: "A", Scope: ScopeAccount}, rawBody(t, `{"name":"A","scope":"account"}`))

		reqErr, ok := err.(*errors.RequestError)
		if !ok {
			t.Fatalf("expected a RequestError, got %T", err)
		}

		if reqErr.StatusCode != http.StatusInternalServerError {
			t.Errorf("expected status code 500, got %d", reqErr.StatusCode)
		}
	})
}

func TestServiceUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("reassigns updatedAt and keeps createdAt", func(t *testing.T) {
		service, _ := SetupTestService()

		created, err := service.Create(ctx, Payload{Name: "A", Scope: ScopeAccount}, rawBody(t, `{"name":"A","scope":"account"}`))
		if err != nil {
			t.Fatal(err)
		}

		time.Sleep(10 * time.Millisecond)

		updated, err := service.Update(ctx, created.ID.Hex(), Payload{Name: "B", Scope: ScopeProspect}, rawBody(t, `{"name":"B","scope":"prospect"}`))
		if err != nil {
			t.Fatal(err)
		}

		if updated.Name != "B" || updated.Scope != ScopeProspect {
			t.Errorf("unexpected document: %+v", updated)
		}

		if !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("expected createdAt to be immutable, got %s", updated.CreatedAt)
		}

		if !updated.UpdatedAt.After(created.UpdatedAt) {
			t.Errorf("expected updatedAt to advance, got %s", updated.UpdatedAt)
		}
	})

	t.Run("repeating the same payload advances updatedAt only", func(t *testing.T) {
		service, _ := SetupTestService()

		created, err := service.Create(ctx, Payload{Name: "A", Scope: ScopeAccount}, rawBody(t, `{"name":"A","scope":"account"}`))
		if err != nil {
			t.Fatal(err)
		}

		p := Payload{Name: "B", Scope: ScopeProspect}
		raw := rawBody(t, `{"name":"B","scope":"prospect"}`)

		first, err := service.Update(ctx, created.ID.Hex(), p, raw)
		if err != nil {
			t.Fatal(err)
		}

		time.Sleep(10 * time.Millisecond)

		second, err := service.Update(ctx, created.ID.Hex(), p, raw)
		if err != nil {
			t.Fatal(err)
		}

		if first.Name != second.Name || first.Scope != second.Scope {
			t.Error("expected repeated updates to yield the same name and scope")
		}

		if !second.UpdatedAt.After(first.UpdatedAt) {
			t.Error("expected updatedAt to advance on each update")
		}
	})

	t.Run("malformed identifier fails without a store round-trip", func(t *testing.T) {
		service, store := SetupTestService()

		_, err := service.Update(ctx, "not-an-id", Payload{Name: "A", Scope: ScopeAccount}, rawBody(t, `{"name":"A","scope":"account"}`))

		reqErr, ok := err.(*errors.RequestError)
		if !ok {
			t.Fatalf("expected a RequestError, got %T", err)
		}

		if reqErr.StatusCode != http.StatusBadRequest {
			t.Errorf("expected status code 400, got %d", reqErr.StatusCode)
		}

		if store.WriteCount != 0 {
			t.Errorf("expected no store writes, got %d", store.WriteCount)
		}
	})

	t.Run("nonexistent identifier", func(t *testing.T) {
		service, _ := SetupTestService()

		_, err := service.Update(ctx, "61f1b9ad1c0c4c78d2a3e9f1", Payload{Name: "A", Scope: ScopeAccount}, rawBody(t, `{"name":"A","scope":"account"}`))

		reqErr, ok := err.(*errors.RequestError)
		if !ok {
			t.Fatalf("expected a RequestError, got %T", err)
		}

		if reqErr.StatusCode != http.StatusNotFound {
			t.Errorf("expected status code 404, got %d", reqErr.StatusCode)
		}
	})

	t.Run("rejects client-supplied createdAt", func(t *testing.T) {
		service, _ := SetupTestService()

		created, err := service.Create(ctx, Payload{Name: "A", Scope: ScopeAccount}, rawBody(t, `{"name":"A","scope":"account"}`))
		if err != nil {
			t.Fatal(err)
		}

		_, err = service.Update(ctx, created.ID.Hex(), Payload{Name: "B", Scope: ScopeAccount}, rawBody(t, `{"name":"B","scope":"account","createdAt":"2020-01-01"}`))

		verr, ok := err.(*errors.ValidationError)
		if !ok {
			t.Fatalf("expected a ValidationError, got %T", err)
		}

		if len(verr.Violations) != 1 || verr.Violations[0].Path[0] != "createdAt" {
			t.Errorf("expected a single violation at createdAt, got %+v", verr.Violations)
		}
	})

	t.Run("client-supplied updatedAt is ignored, not rejected", func(t *testing.T) {
		service, _ := SetupTestService()

		created, err := service.Create(ctx, Payload{Name: "A", Scope: ScopeAccount}, rawBody(t, `{"name":"A","scope":"account"}`))
		if err != nil {
			t.Fatal(err)
		}

		updated, err := service.Update(ctx, created.ID.Hex(), Payload{Name: "B", Scope: ScopeAccount}, rawBody(t, `{"name":"B","scope":"account","updatedAt":"2020-01-01"}`))
		if err != nil {
			t.Fatal(err)
		}

		if updated.UpdatedAt.Year() == 2020 {
			t.Error("expected the server-assigned updatedAt, not the client value")
		}
	})
}

func TestServiceStats(t *testing.T) {
	ctx := context.Background()

	t.Run("counts per scope", func(t *testing.T) {
		service, store := SetupTestService()

		now := time.Now().UTC()
		for _, scope := range []Scope{ScopeAccount, ScopeAccount, ScopeProspect} {
			store.SeedAccount(Account{Name: "Test", Scope: scope, CreatedAt: now, UpdatedAt: now})
		}

		stats, err := service.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}

		expected := Stats{Accounts: 2, Prospects: 1, Children: 0}
		if diff := cmp.Diff(expected, stats); diff != "" {
			t.Errorf("stats mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty collection yields all-zero counts", func(t *testing.T) {
		service, _ := SetupTestService()

		stats, err := service.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff(Stats{}, stats); diff != "" {
			t.Errorf("stats mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("scope values outside the enumeration are ignored", func(t *testing.T) {
		service, store := SetupTestService()

		now := time.Now().UTC()
		store.SeedAccount(Account{Name: "Test", Scope: ScopeChild, CreatedAt: now, UpdatedAt: now})
		store.SeedAccount(Account{Name: "Legacy", Scope: "admin", CreatedAt: now, UpdatedAt: now})

		stats, err := service.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}

		expected := Stats{Accounts: 0, Prospects: 0, Children: 1}
		if diff := cmp.Diff(expected, stats); diff != "" {
			t.Errorf("stats mismatch (-want +got):\n%s", diff)
		}
	})
}
