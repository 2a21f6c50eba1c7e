package store

import (
	"context"
	"testing"

	"github.com/erazemk/skrbnik/internal/db"
	"github.com/erazemk/skrbnik/internal/model"
)

func TestUpsertInspectorKeepsAuthorizedHeight(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	err := UpsertInspector(ctx, database, &model.Inspector{
		Organization: "farm", Inspector: "alice", Name: "Alice", Role: "qa",
		State: model.StateActive, AuthorizedHeight: 1, UpdatedHeight: 1,
	})
	if err != nil {
		t.Fatalf("UpsertInspector: %v", err)
	}

	SetInspectorState(ctx, database, "farm", "alice", model.StateRevoked, 5)
	got, _ := GetInspector(ctx, database, "farm", "alice")
	if got == nil || got.Active() {
		t.Fatalf("expected revoked inspector, got %+v", got)
	}

	UpsertInspector(ctx, database, &model.Inspector{
		Organization: "farm", Inspector: "alice", Name: "Alice B.", Role: "lead",
		State: model.StateActive, AuthorizedHeight: 9, UpdatedHeight: 9,
	})
	got, _ = GetInspector(ctx, database, "farm", "alice")
	if !got.Active() || got.Role != "lead" || got.AuthorizedHeight != 1 || got.UpdatedHeight != 9 {
		t.Errorf("unexpected reactivated inspector: %+v", got)
	}

	other, _ := GetInspector(ctx, database, "mill", "alice")
	if other != nil {
		t.Errorf("delegation must be scoped to its organization, got %+v", other)
	}

	list, _ := ListInspectors(ctx, database, "farm")
	if len(list) != 1 {
		t.Errorf("expected 1 inspector, got %d", len(list))
	}
}
