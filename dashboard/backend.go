package dashboard

import (
	"contactdash/models"
	"contactdash/storage"
	"context"

	"github.com/pkg/errors"
)

// Backend is the message API as seen from the dashboard. It is served either
// in-process by a StoreBackend or over HTTP by client.Client.
type Backend interface {
	List(ctx context.Context) ([]models.Message, error)
	Create(ctx context.Context, msg models.NewMessage) error
	Perform(ctx context.Context, id string, action models.Action) error
}

// Notifier hears about every mutation a StoreBackend commits
type Notifier interface {
	Created(id string)
	Updated(id string, flag models.Flag, value bool)
	Deleted(id string)
}

// StoreBackend serves a Backend straight from a storage.MessageStore
type StoreBackend struct {
	store    storage.MessageStore
	validate bool
	notifier Notifier
}

// NewStoreBackend wraps store. validate mirrors [api] validate_create.
func NewStoreBackend(store storage.MessageStore, validate bool) *StoreBackend {
	return &StoreBackend{store: store, validate: validate}
}

// WithNotifier reports committed mutations to n
func (b *StoreBackend) WithNotifier(n Notifier) *StoreBackend {
	b.notifier = n
	return b
}

func (b *StoreBackend) List(ctx context.Context) ([]models.Message, error) {
	return b.store.List(ctx)
}

// Create validates msg the way the API does before storing it
func (b *StoreBackend) Create(ctx context.Context, msg models.NewMessage) error {
	if b.validate {
		if err := msg.Validate(); err != nil {
			return err
		}
	}
	created, err := b.store.Create(ctx, msg)
	if err != nil {
		return err
	}
	if b.notifier != nil {
		b.notifier.Created(created.ID)
	}
	return nil
}

func (b *StoreBackend) Perform(ctx context.Context, id string, action models.Action) error {
	if action == models.ActionPermanentDelete {
		if err := b.store.Delete(ctx, id); err != nil {
			return err
		}
		if b.notifier != nil {
			b.notifier.Deleted(id)
		}
		return nil
	}

	flag, value, ok := action.Patch()
	if !ok {
		return errors.Errorf("unsupported action %q", action)
	}
	if err := b.store.Patch(ctx, id, flag, value); err != nil {
		return err
	}
	if b.notifier != nil {
		b.notifier.Updated(id, flag, value)
	}
	return nil
}
