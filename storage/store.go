package storage

import (
	"contactdash/config"
	"contactdash/models"
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when a message id does not exist in the store
var ErrNotFound = errors.New("message not found")

// MessageStore is the collection of contact messages
type MessageStore interface {
	// List returns every message, deleted ones included
	List(ctx context.Context) ([]models.Message, error)
	// Create stores a new message with every flag cleared
	Create(ctx context.Context, msg models.NewMessage) (*models.Message, error)
	// Patch sets a single flag on the message with the given id
	Patch(ctx context.Context, id string, flag models.Flag, value bool) error
	// Delete removes the message permanently
	Delete(ctx context.Context, id string) error
	Close() error
}

// Open returns the store selected by cfg.Driver
func Open(cfg config.StorageConfig) (MessageStore, error) {
	switch cfg.Driver {
	case "", "bolt":
		return NewBoltStore(cfg.Path)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// newID returns a time-ordered identifier so stores iterate in creation order
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
