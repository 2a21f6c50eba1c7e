package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/skrbnik/internal/model"
	"github.com/erazemk/skrbnik/internal/store"
)

// Registration describes a new item.
type Registration struct {
	Title    string `json:"title"`
	Details  string `json:"details"`
	Lot      string `json:"lot"`
	Category string `json:"category"`
	Location string `json:"location"`
	Metadata string `json:"metadata,omitempty"`
}

func (r Registration) validate() error {
	checks := []error{
		requireText("title", r.Title, MaxTitleLen),
		requireText("details", r.Details, MaxDetailsLen),
		requireText("lot", r.Lot, MaxLotLen),
		requireText("category", r.Category, MaxCategoryLen),
		requireText("location", r.Location, MaxLocationLen),
		optionalText("metadata", r.Metadata, MaxMetadataLen),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

// Register records a new item with caller as creator and keeper, together
// with its initial checkpoint (event id 0, completed, hashing the title).
func (l *Ledger) Register(ctx context.Context, caller model.Identity, reg Registration) (*model.Item, error) {
	var item *model.Item
	err := l.update(ctx, "register", caller, func(tx *sql.Tx, height uint64) error {
		if err := reg.validate(); err != nil {
			return err
		}

		id, err := store.NextItemID(ctx, tx)
		if err != nil {
			return err
		}

		created := &model.Item{
			ID:              id,
			Title:           reg.Title,
			Details:         reg.Details,
			Creator:         caller,
			Lot:             reg.Lot,
			CreatedHeight:   height,
			Status:          model.ItemStatusProduced,
			Category:        reg.Category,
			Origin:          reg.Location,
			Keeper:          caller,
			Metadata:        reg.Metadata,
			CheckpointCount: 1,
		}
		if err := store.InsertItem(ctx, tx, created); err != nil {
			return err
		}

		digest := l.hash([]byte(reg.Title))
		genesis := &model.Event{
			ItemID:   id,
			Seq:      0,
			Kind:     model.EventKindCheckpoint,
			EventID:  0,
			Type:     model.EventTypeCheckpoint,
			Location: reg.Location,
			Height:   height,
			Actor:    caller,
			Hash:     digest[:],
			Status:   model.EventStatusCompleted,
		}
		if err := store.InsertEvent(ctx, tx, genesis); err != nil {
			return err
		}

		item, err = loadItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("item registered", "item", item.ID, "creator", caller, "lot", item.Lot, "height", item.CreatedHeight)
	return item, nil
}

// SetDelivery records where an item is headed and the height it is
// expected to arrive at.
func (l *Ledger) SetDelivery(ctx context.Context, caller model.Identity, itemID uint64, destination string, arrival uint64) (*model.Item, error) {
	var item *model.Item
	err := l.update(ctx, "set_delivery", caller, func(tx *sql.Tx, height uint64) error {
		if err := requireText("destination", destination, MaxDestinationLen); err != nil {
			return err
		}
		if err := checkHeight("arrival height", arrival); err != nil {
			return err
		}

		var err error
		item, err = loadLiveItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if ok, err := authorized(ctx, tx, item.Keeper, caller); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("%w: %s does not act for keeper of item %d", ErrNotAuthorized, caller, itemID)
		}
		if arrival <= height {
			return fmt.Errorf("%w: arrival height %d not after current height %d", ErrInvalidInput, arrival, height)
		}

		item.Destination = destination
		item.ArrivalHeight = &arrival
		return store.SaveItem(ctx, tx, item)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("delivery set", "item", itemID, "caller", caller, "destination", destination, "arrival", arrival)
	return item, nil
}

// MarkSold closes the custody chain of a delivered item.
func (l *Ledger) MarkSold(ctx context.Context, caller model.Identity, itemID uint64) (*model.Item, error) {
	var item *model.Item
	err := l.update(ctx, "mark_sold", caller, func(tx *sql.Tx, height uint64) error {
		var err error
		item, err = loadLiveItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if ok, err := authorized(ctx, tx, item.Keeper, caller); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("%w: %s does not act for keeper of item %d", ErrNotAuthorized, caller, itemID)
		}
		if item.Status != model.ItemStatusDelivered {
			return fmt.Errorf("%w: item %d is %s, not delivered", ErrInvalidInput, itemID, item.Status)
		}

		item.Status = model.ItemStatusSold
		return store.SaveItem(ctx, tx, item)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("item sold", "item", itemID, "caller", caller)
	return item, nil
}

// Recall marks an item recalled and appends a checkpoint carrying reason as
// a permanent audit entry. Only the item's creator may recall; the power
// cannot be delegated, and the creator needs no standing over the current
// keeper to append the audit entry. Recalling an already recalled item
// appends another audit entry.
func (l *Ledger) Recall(ctx context.Context, caller model.Identity, itemID uint64, reason string) (*model.Event, error) {
	var audit *model.Event
	err := l.update(ctx, "recall", caller, func(tx *sql.Tx, height uint64) error {
		if err := requireText("reason", reason, MaxNotesLen); err != nil {
			return err
		}

		item, err := loadItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item.Creator != caller {
			return fmt.Errorf("%w: item %d", ErrOnlyCreator, itemID)
		}

		location := item.Origin
		last, err := store.LatestEvent(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if last != nil {
			location = last.Location
		}

		audit, err = appendEvent(ctx, tx, l.hash, item, caller, height, EventInput{
			Location: location,
			Type:     model.EventTypeCheckpoint,
			Notes:    reason,
		})
		if err != nil {
			return err
		}

		// appendEvent rewrote the item; work from the stored snapshot.
		item, err = loadItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		item.Status = model.ItemStatusRecalled
		return store.SaveItem(ctx, tx, item)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("item recalled", "item", itemID, "creator", caller, "event", audit.EventID, "height", audit.Height)
	return audit, nil
}

// GetItem returns the current snapshot of an item.
func (l *Ledger) GetItem(ctx context.Context, itemID uint64) (*model.Item, error) {
	return loadItem(ctx, l.db, itemID)
}

// ListItems returns items matching f.
func (l *Ledger) ListItems(ctx context.Context, f model.ItemFilter) ([]model.Item, error) {
	if f.Status != "" && !model.ValidItemStatus(f.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, f.Status)
	}
	return store.ListItems(ctx, l.db, f)
}

// VerifyItem returns the public-trust view of an item. Unknown items are
// reported as not authentic rather than as an error.
func (l *Ledger) VerifyItem(ctx context.Context, itemID uint64) (model.Verification, error) {
	item, err := store.GetItem(ctx, l.db, itemID)
	if err != nil {
		return model.Verification{}, err
	}
	if item == nil {
		return model.Verification{Authentic: false}, nil
	}
	return model.Verification{
		Authentic: true,
		Creator:   item.Creator,
		Lot:       item.Lot,
		Status:    item.Status,
	}, nil
}
