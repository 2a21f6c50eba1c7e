package ledger

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/skrbnik/internal/model"
	"github.com/erazemk/skrbnik/internal/store"
)

// EventInput describes an event to append to an item's history.
type EventInput struct {
	Location    string         `json:"location"`
	Type        string         `json:"type"`
	ToKeeper    model.Identity `json:"to_keeper,omitempty"`
	Temperature *int           `json:"temperature,omitempty"`
	Humidity    *uint          `json:"humidity,omitempty"`
	Notes       string         `json:"notes,omitempty"`
}

func (in EventInput) validate() error {
	if err := requireText("location", in.Location, MaxLocationLen); err != nil {
		return err
	}
	if model.EventKind(in.Type) == "" {
		return fmt.Errorf("%w: unknown event type %q", ErrInvalidInput, in.Type)
	}
	if in.ToKeeper != "" {
		if err := checkIdentity("to_keeper", in.ToKeeper); err != nil {
			return err
		}
	}
	if t := in.Temperature; t != nil && (*t < MinTemperature || *t > MaxTemperature) {
		return fmt.Errorf("%w: temperature %d outside [%d, %d]", ErrInvalidInput, *t, MinTemperature, MaxTemperature)
	}
	if h := in.Humidity; h != nil && *h > MaxHumidity {
		return fmt.Errorf("%w: humidity %d outside [0, %d]", ErrInvalidInput, *h, MaxHumidity)
	}
	return optionalText("notes", in.Notes, MaxNotesLen)
}

// digest is the content the event hash commits to.
func (in EventInput) digest() []byte {
	var b bytes.Buffer
	b.WriteString(in.Type)
	b.WriteByte(0)
	b.WriteString(in.Location)
	b.WriteByte(0)
	b.WriteString(string(in.ToKeeper))
	b.WriteByte(0)
	b.WriteString(in.Notes)
	return b.Bytes()
}

// AddEvent appends a checkpoint or transfer event to an item on behalf of
// its current keeper.
//
// The event id comes from the item's counter for the event's kind, so a
// checkpoint and a transfer of the same item may share an event id; Seq is
// unique per item. A checkpoint moves the item to shipping. A transfer
// naming a recipient stays pending until the recipient accepts or rejects
// it; custody does not move before that.
func (l *Ledger) AddEvent(ctx context.Context, caller model.Identity, itemID uint64, in EventInput) (*model.Event, error) {
	var event *model.Event
	err := l.update(ctx, "add_event", caller, func(tx *sql.Tx, height uint64) error {
		if err := in.validate(); err != nil {
			return err
		}

		item, err := loadLiveItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if ok, err := authorized(ctx, tx, item.Keeper, caller); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("%w: %s does not act for keeper of item %d", ErrNotAuthorized, caller, itemID)
		}

		event, err = appendEvent(ctx, tx, l.hash, item, caller, height, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("event added", "item", itemID, "caller", caller, "type", event.Type,
		"event", event.EventID, "seq", event.Seq, "status", event.Status)
	return event, nil
}

// appendEvent writes the event and the item's updated counters. It checks
// nothing; callers own validation and authorization.
func appendEvent(ctx context.Context, tx store.Querier, hash HashFunc, item *model.Item, actor model.Identity, height uint64, in EventInput) (*model.Event, error) {
	digest := hash(in.digest())
	e := &model.Event{
		ItemID:      item.ID,
		Seq:         item.NextSeq(),
		Kind:        model.EventKind(in.Type),
		Type:        in.Type,
		Location:    in.Location,
		Height:      height,
		Actor:       actor,
		ToKeeper:    in.ToKeeper,
		Temperature: in.Temperature,
		Humidity:    in.Humidity,
		Notes:       in.Notes,
		Hash:        digest[:],
		Status:      model.EventStatusCompleted,
	}

	switch e.Kind {
	case model.EventKindCheckpoint:
		e.EventID = item.CheckpointCount
		item.CheckpointCount++
		item.Status = model.ItemStatusShipping
	case model.EventKindTransfer:
		e.EventID = item.TransferCount
		e.FromKeeper = item.Keeper
		item.TransferCount++
		if e.ToKeeper != "" {
			e.Status = model.EventStatusPending
		}
	default:
		return nil, fmt.Errorf("%w: unknown event type %q", ErrInvalidInput, in.Type)
	}

	if err := store.InsertEvent(ctx, tx, e); err != nil {
		return nil, err
	}
	if err := store.SaveItem(ctx, tx, item); err != nil {
		return nil, err
	}
	return e, nil
}

// AcceptTransfer completes a pending transfer addressed to caller. Caller
// becomes the keeper and the item is delivered. Offers made before the last
// custody change can no longer be accepted, even if custody has since
// returned to the sender.
func (l *Ledger) AcceptTransfer(ctx context.Context, caller model.Identity, itemID, eventID uint64) (*model.Event, error) {
	return l.resolveTransfer(ctx, "accept_transfer", caller, itemID, eventID, true)
}

// RejectTransfer declines a pending transfer addressed to caller. The item
// stays with its keeper, unchanged.
func (l *Ledger) RejectTransfer(ctx context.Context, caller model.Identity, itemID, eventID uint64) (*model.Event, error) {
	return l.resolveTransfer(ctx, "reject_transfer", caller, itemID, eventID, false)
}

func (l *Ledger) resolveTransfer(ctx context.Context, op string, caller model.Identity, itemID, eventID uint64, accept bool) (*model.Event, error) {
	var event *model.Event
	err := l.update(ctx, op, caller, func(tx *sql.Tx, height uint64) error {
		item, err := loadLiveItem(ctx, tx, itemID)
		if err != nil {
			return err
		}

		event, err = store.GetEvent(ctx, tx, itemID, model.EventKindTransfer, eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return fmt.Errorf("%w: transfer %d of item %d", ErrNotFound, eventID, itemID)
		}
		if event.ToKeeper != caller {
			return fmt.Errorf("%w: transfer %d of item %d", ErrNotRecipient, eventID, itemID)
		}
		if event.Status != model.EventStatusPending {
			return fmt.Errorf("%w: transfer %d of item %d is %s", ErrNotPending, eventID, itemID, event.Status)
		}
		if accept && (event.FromKeeper != item.Keeper || event.Seq < item.CustodySeq) {
			return fmt.Errorf("%w: custody of item %d moved since transfer %d was offered", ErrNotPending, itemID, eventID)
		}

		event.Status = model.EventStatusRejected
		if accept {
			event.Status = model.EventStatusCompleted
		}
		if err := store.ResolveEvent(ctx, tx, itemID, event.Seq, event.Status); err != nil {
			return err
		}

		if !accept {
			return nil
		}
		item.Keeper = caller
		item.Status = model.ItemStatusDelivered
		item.CustodySeq = item.NextSeq()
		return store.SaveItem(ctx, tx, item)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("transfer resolved", "item", itemID, "event", eventID, "caller", caller, "status", event.Status)
	return event, nil
}

// GetEvent returns an event by kind and per-kind id.
func (l *Ledger) GetEvent(ctx context.Context, itemID uint64, kind string, eventID uint64) (*model.Event, error) {
	if !model.ValidEventKind(kind) {
		return nil, fmt.Errorf("%w: unknown event kind %q", ErrInvalidInput, kind)
	}

	var event *model.Event
	err := l.view(ctx, "get_event", func(tx *sql.Tx, height uint64) error {
		if _, err := loadItem(ctx, tx, itemID); err != nil {
			return err
		}
		var err error
		event, err = store.GetEvent(ctx, tx, itemID, kind, eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return fmt.Errorf("%w: %s %d of item %d", ErrNotFound, kind, eventID, itemID)
		}
		return nil
	})
	return event, err
}

// ListEvents returns an item's full history in append order.
func (l *Ledger) ListEvents(ctx context.Context, itemID uint64) ([]model.Event, error) {
	var events []model.Event
	err := l.view(ctx, "list_events", func(tx *sql.Tx, height uint64) error {
		if _, err := loadItem(ctx, tx, itemID); err != nil {
			return err
		}
		var err error
		events, err = store.ListEvents(ctx, tx, itemID)
		return err
	})
	return events, err
}

// PendingTransfers returns the transfers waiting for recipient to answer.
func (l *Ledger) PendingTransfers(ctx context.Context, recipient model.Identity) ([]model.Event, error) {
	return store.ListPendingTransfers(ctx, l.db, recipient)
}
