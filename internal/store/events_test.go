package store

import (
	"context"
	"testing"

	"github.com/erazemk/skrbnik/internal/db"
	"github.com/erazemk/skrbnik/internal/model"
)

func TestInsertAndGetEvent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	InsertItem(ctx, database, newItem(0, "farm"))

	temp, humidity := -2, uint(85)
	checkpoint := &model.Event{
		ItemID: 0, Seq: 0, Kind: model.EventKindCheckpoint, EventID: 0,
		Type: model.EventTypeCheckpoint, Location: "Huila", Height: 3, Actor: "farm",
		Temperature: &temp, Humidity: &humidity, Hash: make([]byte, 32),
		Status: model.EventStatusCompleted,
	}
	if err := InsertEvent(ctx, database, checkpoint); err != nil {
		t.Fatalf("InsertEvent: %v", err)
	}

	transfer := &model.Event{
		ItemID: 0, Seq: 1, Kind: model.EventKindTransfer, EventID: 0,
		Type: model.EventTypeTransferStart, Location: "Huila", Height: 4, Actor: "farm",
		FromKeeper: "farm", ToKeeper: "carrier", Hash: make([]byte, 32),
		Status: model.EventStatusPending,
	}
	if err := InsertEvent(ctx, database, transfer); err != nil {
		t.Fatalf("InsertEvent: %v", err)
	}

	// Same numeric event id, different kinds.
	got, err := GetEvent(ctx, database, 0, model.EventKindCheckpoint, 0)
	if err != nil || got == nil {
		t.Fatalf("GetEvent checkpoint: %v %v", got, err)
	}
	if got.Temperature == nil || *got.Temperature != -2 || got.Humidity == nil || *got.Humidity != 85 {
		t.Errorf("unexpected readings: %+v", got)
	}

	got, err = GetEvent(ctx, database, 0, model.EventKindTransfer, 0)
	if err != nil || got == nil {
		t.Fatalf("GetEvent transfer: %v %v", got, err)
	}
	if got.ToKeeper != "carrier" || got.Seq != 1 {
		t.Errorf("unexpected transfer: %+v", got)
	}

	latest, _ := LatestEvent(ctx, database, 0)
	if latest == nil || latest.Seq != 1 {
		t.Errorf("expected latest seq 1, got %+v", latest)
	}

	all, _ := ListEvents(ctx, database, 0)
	if len(all) != 2 || all[0].Seq != 0 || all[1].Seq != 1 {
		t.Errorf("expected events ordered by seq, got %v", all)
	}
}

func TestDuplicateKindIDRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	InsertItem(ctx, database, newItem(0, "farm"))

	e := &model.Event{
		ItemID: 0, Seq: 0, Kind: model.EventKindCheckpoint, EventID: 0,
		Type: model.EventTypeCheckpoint, Location: "Huila", Actor: "farm",
		Hash: make([]byte, 32), Status: model.EventStatusCompleted,
	}
	InsertEvent(ctx, database, e)

	e.Seq = 1
	if err := InsertEvent(ctx, database, e); err == nil {
		t.Error("expected error for duplicate (kind, event_id)")
	}
}

func TestResolveEventOnlyOnce(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	InsertItem(ctx, database, newItem(0, "farm"))

	InsertEvent(ctx, database, &model.Event{
		ItemID: 0, Seq: 0, Kind: model.EventKindTransfer, EventID: 0,
		Type: model.EventTypeTransferStart, Location: "Huila", Actor: "farm",
		ToKeeper: "carrier", Hash: make([]byte, 32), Status: model.EventStatusPending,
	})

	pending, _ := ListPendingTransfers(ctx, database, "carrier")
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending transfer, got %d", len(pending))
	}

	if err := ResolveEvent(ctx, database, 0, 0, model.EventStatusCompleted); err != nil {
		t.Fatalf("ResolveEvent: %v", err)
	}
	if err := ResolveEvent(ctx, database, 0, 0, model.EventStatusRejected); err == nil {
		t.Error("expected error resolving an already resolved event")
	}

	pending, _ = ListPendingTransfers(ctx, database, "carrier")
	if len(pending) != 0 {
		t.Errorf("expected no pending transfers, got %d", len(pending))
	}
}
