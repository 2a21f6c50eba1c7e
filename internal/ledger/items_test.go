package ledger

import (
	"context"
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/skrbnik/internal/model"
)

func TestRegister(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	advance(t, l, 5)

	first := register(t, l, "farm")
	second := register(t, l, "farm")

	assert.Equal(t, uint64(0), first.ID)
	assert.Equal(t, uint64(1), second.ID)
	assert.Equal(t, model.Identity("farm"), first.Creator)
	assert.Equal(t, model.Identity("farm"), first.Keeper)
	assert.Equal(t, model.ItemStatusProduced, first.Status)
	assert.Equal(t, "Huila", first.Origin)
	assert.Equal(t, uint64(5), first.CreatedHeight)
	assert.Equal(t, uint64(1), first.CheckpointCount)
	assert.Equal(t, uint64(0), first.TransferCount)

	genesis, err := l.GetEvent(ctx, first.ID, model.EventKindCheckpoint, 0)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusCompleted, genesis.Status)
	assert.Equal(t, model.EventTypeCheckpoint, genesis.Type)
	assert.Equal(t, uint64(0), genesis.Seq)
	want := sha256.Sum256([]byte("Green coffee, 60kg"))
	assert.Equal(t, model.Digest(want[:]), genesis.Hash)
}

func TestRegisterValidation(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	valid := Registration{Title: "t", Details: "d", Lot: "l", Category: "c", Location: "loc"}
	tests := []struct {
		name   string
		modify func(r *Registration)
	}{
		{"empty title", func(r *Registration) { r.Title = "" }},
		{"long title", func(r *Registration) { r.Title = strings.Repeat("a", MaxTitleLen+1) }},
		{"empty details", func(r *Registration) { r.Details = "" }},
		{"long lot", func(r *Registration) { r.Lot = strings.Repeat("a", MaxLotLen+1) }},
		{"empty category", func(r *Registration) { r.Category = "" }},
		{"empty location", func(r *Registration) { r.Location = "" }},
		{"long metadata", func(r *Registration) { r.Metadata = strings.Repeat("a", MaxMetadataLen+1) }},
		{"invalid utf-8", func(r *Registration) { r.Title = "\xff" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := valid
			tt.modify(&reg)
			_, err := l.Register(ctx, "farm", reg)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	// Limits count characters, not bytes.
	reg := valid
	reg.Title = strings.Repeat("č", MaxTitleLen)
	item, err := l.Register(ctx, "farm", reg)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), item.ID)
}

func TestSetDelivery(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	item := register(t, l, "farm")
	advance(t, l, 10)

	_, err := l.SetDelivery(ctx, "farm", item.ID, "Rotterdam", 10)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = l.SetDelivery(ctx, "stranger", item.ID, "Rotterdam", 20)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = l.SetDelivery(ctx, "farm", 99, "Rotterdam", 20)
	assert.ErrorIs(t, err, ErrItemNotFound)

	got, err := l.SetDelivery(ctx, "farm", item.ID, "Rotterdam", 20)
	require.NoError(t, err)
	assert.Equal(t, "Rotterdam", got.Destination)
	require.NotNil(t, got.ArrivalHeight)
	assert.Equal(t, uint64(20), *got.ArrivalHeight)

	_, err = l.AuthorizeInspector(ctx, "farm", "agent", "Ana", "logistics")
	require.NoError(t, err)
	got, err = l.SetDelivery(ctx, "agent", item.ID, "Hamburg", 30)
	require.NoError(t, err)
	assert.Equal(t, "Hamburg", got.Destination)
}

func TestMarkSold(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	item := register(t, l, "farm")

	_, err := l.MarkSold(ctx, "farm", item.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)

	transfer, err := l.AddEvent(ctx, "farm", item.ID, EventInput{
		Location: "Huila", Type: model.EventTypeTransferStart, ToKeeper: "shop",
	})
	require.NoError(t, err)
	_, err = l.AcceptTransfer(ctx, "shop", item.ID, transfer.EventID)
	require.NoError(t, err)

	_, err = l.MarkSold(ctx, "farm", item.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	sold, err := l.MarkSold(ctx, "shop", item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusSold, sold.Status)
}

func TestRecall(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	item := register(t, l, "farm")

	_, err := l.AddEvent(ctx, "farm", item.ID, EventInput{Location: "Neiva", Type: model.EventTypeCheckpoint})
	require.NoError(t, err)
	_, err = l.AuthorizeInspector(ctx, "farm", "agent", "Ana", "qa")
	require.NoError(t, err)

	_, err = l.Recall(ctx, "agent", item.ID, "contamination")
	assert.ErrorIs(t, err, ErrOnlyCreator)
	_, err = l.Recall(ctx, "farm", item.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = l.Recall(ctx, "farm", 42, "contamination")
	assert.ErrorIs(t, err, ErrItemNotFound)

	audit, err := l.Recall(ctx, "farm", item.ID, "contamination")
	require.NoError(t, err)
	assert.Equal(t, model.EventTypeCheckpoint, audit.Type)
	assert.Equal(t, "Neiva", audit.Location)
	assert.Equal(t, "contamination", audit.Notes)
	assert.Equal(t, uint64(2), audit.EventID)

	got, err := l.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusRecalled, got.Status)

	_, err = l.AddEvent(ctx, "farm", item.ID, EventInput{Location: "Neiva", Type: model.EventTypeCheckpoint})
	assert.ErrorIs(t, err, ErrItemRecalled)
	_, err = l.SetDelivery(ctx, "farm", item.ID, "Rotterdam", 100)
	assert.ErrorIs(t, err, ErrItemRecalled)

	// A second recall passes the creator check and appends again.
	again, err := l.Recall(ctx, "farm", item.ID, "still contaminated")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), again.EventID)

	events, err := l.ListEvents(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, events, 4)

	got, err = l.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusRecalled, got.Status)
	assert.Equal(t, uint64(4), got.CheckpointCount)
}

func TestRecallAfterHandoff(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	item := register(t, l, "farm")

	offer, err := l.AddEvent(ctx, "farm", item.ID, EventInput{
		Location: "Huila", Type: model.EventTypeTransferStart, ToKeeper: "carrier",
	})
	require.NoError(t, err)
	_, err = l.AcceptTransfer(ctx, "carrier", item.ID, offer.EventID)
	require.NoError(t, err)

	// farm no longer acts for the keeper but may still recall.
	_, err = l.AddEvent(ctx, "farm", item.ID, EventInput{Location: "Huila", Type: model.EventTypeCheckpoint})
	assert.ErrorIs(t, err, ErrNotAuthorized)
	_, err = l.Recall(ctx, "carrier", item.ID, "contamination")
	assert.ErrorIs(t, err, ErrOnlyCreator)

	audit, err := l.Recall(ctx, "farm", item.ID, "contamination")
	require.NoError(t, err)
	assert.Equal(t, model.Identity("farm"), audit.Actor)
	assert.Equal(t, "Huila", audit.Location)

	got, err := l.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusRecalled, got.Status)
	assert.Equal(t, model.Identity("carrier"), got.Keeper)
}

func TestVerifyItem(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	item := register(t, l, "farm")

	v, err := l.VerifyItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Verification{
		Authentic: true, Creator: "farm", Lot: "LOT-2024-07", Status: model.ItemStatusProduced,
	}, v)

	v, err = l.VerifyItem(ctx, 7)
	require.NoError(t, err)
	assert.False(t, v.Authentic)
	assert.Empty(t, v.Creator)
}

func TestListItems(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	register(t, l, "farm")
	register(t, l, "mill")

	items, err := l.ListItems(ctx, model.ItemFilter{Creator: "mill"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint64(1), items[0].ID)

	_, err = l.ListItems(ctx, model.ItemFilter{Status: "lost"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
