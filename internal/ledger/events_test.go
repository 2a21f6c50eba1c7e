package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/skrbnik/internal/model"
)

func TestCustodyHandoff(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	item := register(t, l, "farm")

	temp, humidity := -2, uint(85)
	checkpoint, err := l.AddEvent(ctx, "farm", item.ID, EventInput{
		Location: "Neiva cold store", Type: model.EventTypeCheckpoint,
		Temperature: &temp, Humidity: &humidity, Notes: "loaded",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), checkpoint.EventID)
	assert.Equal(t, model.EventStatusCompleted, checkpoint.Status)
	require.NotNil(t, checkpoint.Temperature)
	assert.Equal(t, -2, *checkpoint.Temperature)
	require.NotNil(t, checkpoint.Humidity)
	assert.Equal(t, uint(85), *checkpoint.Humidity)

	got, err := l.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusShipping, got.Status)

	transfer, err := l.AddEvent(ctx, "farm", item.ID, EventInput{
		Location: "Neiva cold store", Type: model.EventTypeTransferStart, ToKeeper: "carrier",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), transfer.EventID)
	assert.Equal(t, uint64(2), transfer.Seq)
	assert.Equal(t, model.EventStatusPending, transfer.Status)
	assert.Equal(t, model.Identity("farm"), transfer.FromKeeper)

	// Custody does not move before acceptance.
	got, err = l.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Identity("farm"), got.Keeper)
	assert.Equal(t, model.ItemStatusShipping, got.Status)

	pending, err := l.PendingTransfers(ctx, "carrier")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, transfer.Seq, pending[0].Seq)

	accepted, err := l.AcceptTransfer(ctx, "carrier", item.ID, transfer.EventID)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusCompleted, accepted.Status)

	got, err = l.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Identity("carrier"), got.Keeper)
	assert.Equal(t, model.ItemStatusDelivered, got.Status)

	stored, err := l.GetEvent(ctx, item.ID, model.EventKindTransfer, transfer.EventID)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusCompleted, stored.Status)

	pending, err = l.PendingTransfers(ctx, "carrier")
	require.NoError(t, err)
	assert.Empty(t, pending)

	// The old keeper has lost standing.
	_, err = l.AddEvent(ctx, "farm", item.ID, EventInput{Location: "x", Type: model.EventTypeCheckpoint})
	assert.ErrorIs(t, err, ErrNotAuthorized)
	_, err = l.AddEvent(ctx, "carrier", item.ID, EventInput{Location: "Port", Type: model.EventTypeCheckpoint})
	assert.NoError(t, err)
}

func TestRejectTransfer(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	item := register(t, l, "farm")
	before, err := l.GetItem(ctx, item.ID)
	require.NoError(t, err)

	transfer, err := l.AddEvent(ctx, "farm", item.ID, EventInput{
		Location: "Huila", Type: model.EventTypeTransferStart, ToKeeper: "carrier",
	})
	require.NoError(t, err)

	rejected, err := l.RejectTransfer(ctx, "carrier", item.ID, transfer.EventID)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusRejected, rejected.Status)

	after, err := l.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Keeper, after.Keeper)
	assert.Equal(t, before.Status, after.Status)

	// Terminal: neither accept nor a second reject applies.
	_, err = l.AcceptTransfer(ctx, "carrier", item.ID, transfer.EventID)
	assert.ErrorIs(t, err, ErrNotPending)
	_, err = l.RejectTransfer(ctx, "carrier", item.ID, transfer.EventID)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestResolveTransferFailures(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	item := register(t, l, "farm")

	transfer, err := l.AddEvent(ctx, "farm", item.ID, EventInput{
		Location: "Huila", Type: model.EventTypeTransferStart, ToKeeper: "carrier",
	})
	require.NoError(t, err)
	direct, err := l.AddEvent(ctx, "farm", item.ID, EventInput{
		Location: "Huila", Type: model.EventTypeTransferStart,
	})
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusCompleted, direct.Status)

	_, err = l.AcceptTransfer(ctx, "thief", item.ID, transfer.EventID)
	assert.ErrorIs(t, err, ErrNotRecipient)
	_, err = l.RejectTransfer(ctx, "farm", item.ID, transfer.EventID)
	assert.ErrorIs(t, err, ErrNotRecipient)
	_, err = l.AcceptTransfer(ctx, "carrier", item.ID, 9)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.AcceptTransfer(ctx, "carrier", 9, 0)
	assert.ErrorIs(t, err, ErrItemNotFound)
	_, err = l.AcceptTransfer(ctx, "", item.ID, transfer.EventID)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestAcceptStaleTransfer(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	item := register(t, l, "farm")

	first, err := l.AddEvent(ctx, "farm", item.ID, EventInput{
		Location: "Huila", Type: model.EventTypeTransferStart, ToKeeper: "carrier",
	})
	require.NoError(t, err)
	second, err := l.AddEvent(ctx, "farm", item.ID, EventInput{
		Location: "Huila", Type: model.EventTypeTransferStart, ToKeeper: "broker",
	})
	require.NoError(t, err)

	_, err = l.AcceptTransfer(ctx, "broker", item.ID, second.EventID)
	require.NoError(t, err)

	// farm no longer holds the item it offered to carrier.
	_, err = l.AcceptTransfer(ctx, "carrier", item.ID, first.EventID)
	assert.ErrorIs(t, err, ErrNotPending)

	// Rejecting a stale offer is still allowed.
	_, err = l.RejectTransfer(ctx, "carrier", item.ID, first.EventID)
	assert.NoError(t, err)
}

func TestAcceptAfterCustodyReturns(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	item := register(t, l, "farm")

	toCarrier, err := l.AddEvent(ctx, "farm", item.ID, EventInput{
		Location: "Huila", Type: model.EventTypeTransferStart, ToKeeper: "carrier",
	})
	require.NoError(t, err)
	toBroker, err := l.AddEvent(ctx, "farm", item.ID, EventInput{
		Location: "Huila", Type: model.EventTypeTransferStart, ToKeeper: "broker",
	})
	require.NoError(t, err)
	_, err = l.AcceptTransfer(ctx, "broker", item.ID, toBroker.EventID)
	require.NoError(t, err)

	back, err := l.AddEvent(ctx, "broker", item.ID, EventInput{
		Location: "Neiva", Type: model.EventTypeTransferStart, ToKeeper: "farm",
	})
	require.NoError(t, err)
	_, err = l.AcceptTransfer(ctx, "farm", item.ID, back.EventID)
	require.NoError(t, err)

	// farm holds the item again, but the offer to carrier predates the round trip.
	_, err = l.AcceptTransfer(ctx, "carrier", item.ID, toCarrier.EventID)
	assert.ErrorIs(t, err, ErrNotPending)

	got, err := l.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Identity("farm"), got.Keeper)
	assert.Equal(t, uint64(4), got.CustodySeq)

	// Offers made after the last handoff are still acceptable.
	fresh, err := l.AddEvent(ctx, "farm", item.ID, EventInput{
		Location: "Huila", Type: model.EventTypeTransferStart, ToKeeper: "carrier",
	})
	require.NoError(t, err)
	_, err = l.AcceptTransfer(ctx, "carrier", item.ID, fresh.EventID)
	assert.NoError(t, err)
}

func TestInspectorActsForKeeper(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	item := register(t, l, "farm")

	_, err := l.AuthorizeInspector(ctx, "farm", "agent", "Ana", "logistics")
	require.NoError(t, err)

	e, err := l.AddEvent(ctx, "agent", item.ID, EventInput{Location: "Neiva", Type: model.EventTypeCheckpoint})
	require.NoError(t, err)
	assert.Equal(t, model.Identity("agent"), e.Actor)

	// Delegation is scoped to the organization that granted it.
	other := register(t, l, "mill")
	_, err = l.AddEvent(ctx, "agent", other.ID, EventInput{Location: "Neiva", Type: model.EventTypeCheckpoint})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	require.NoError(t, l.RevokeInspector(ctx, "farm", "agent"))
	_, err = l.AddEvent(ctx, "agent", item.ID, EventInput{Location: "Neiva", Type: model.EventTypeCheckpoint})
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestAddEventValidation(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	item := register(t, l, "farm")

	hot, cold, wet := 101, -101, uint(101)
	edgeHot, edgeCold, edgeWet := 100, -100, uint(100)
	tests := []struct {
		name string
		in   EventInput
		ok   bool
	}{
		{"unknown type", EventInput{Location: "x", Type: "teleport"}, false},
		{"empty location", EventInput{Type: model.EventTypeCheckpoint}, false},
		{"too hot", EventInput{Location: "x", Type: model.EventTypeCheckpoint, Temperature: &hot}, false},
		{"too cold", EventInput{Location: "x", Type: model.EventTypeCheckpoint, Temperature: &cold}, false},
		{"too wet", EventInput{Location: "x", Type: model.EventTypeCheckpoint, Humidity: &wet}, false},
		{"null recipient", EventInput{Location: "x", Type: model.EventTypeTransferStart, ToKeeper: model.NullIdentity}, false},
		{"edge readings", EventInput{Location: "x", Type: model.EventTypeCheckpoint, Temperature: &edgeHot, Humidity: &edgeWet}, true},
		{"edge cold", EventInput{Location: "x", Type: model.EventTypeCheckpoint, Temperature: &edgeCold}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.AddEvent(ctx, "farm", item.ID, tt.in)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidInput)
			}
		})
	}
}

func TestCountersMatchEvents(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	item := register(t, l, "farm")

	types := []string{
		model.EventTypeCheckpoint,
		model.EventTypeTransferStart,
		model.EventTypeCheckpoint,
		model.EventTypeTransferComplete,
		model.EventTypeTransferStart,
		model.EventTypeCheckpoint,
	}
	for _, typ := range types {
		_, err := l.AddEvent(ctx, "farm", item.ID, EventInput{Location: "x", Type: typ})
		require.NoError(t, err)
	}

	got, err := l.GetItem(ctx, item.ID)
	require.NoError(t, err)
	events, err := l.ListEvents(ctx, item.ID)
	require.NoError(t, err)

	var checkpoints, transfers uint64
	for i, e := range events {
		assert.Equal(t, uint64(i), e.Seq)
		switch e.Kind {
		case model.EventKindCheckpoint:
			assert.Equal(t, checkpoints, e.EventID)
			checkpoints++
		case model.EventKindTransfer:
			assert.Equal(t, transfers, e.EventID)
			transfers++
		}
	}
	assert.Equal(t, uint64(4), checkpoints)
	assert.Equal(t, uint64(3), transfers)
	assert.Equal(t, checkpoints, got.CheckpointCount)
	assert.Equal(t, transfers, got.TransferCount)
}

func TestGetEvent(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	item := register(t, l, "farm")

	_, err := l.GetEvent(ctx, item.ID, "shipment", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = l.GetEvent(ctx, item.ID, model.EventKindTransfer, 0)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.GetEvent(ctx, 3, model.EventKindCheckpoint, 0)
	assert.ErrorIs(t, err, ErrItemNotFound)
	_, err = l.ListEvents(ctx, 3)
	assert.ErrorIs(t, err, ErrItemNotFound)
}
