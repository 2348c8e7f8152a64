package storage

import (
	"contactdash/models"
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

// BoltStore keeps messages as JSON values keyed by id in a single bucket
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens the bolt-backed store in dataDir
func NewBoltStore(dataDir string) (*BoltStore, error) {
	db, err := InitDB(dataDir)
	if err != nil {
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

// Close closes the database connection
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// List retrieves all messages in creation order
func (s *BoltStore) List(ctx context.Context) ([]models.Message, error) {
	messages := []models.Message{}

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(messageBucket))

		return b.ForEach(func(k, v []byte) error {
			var msg models.Message
			if err := json.Unmarshal(v, &msg); err != nil {
				return errors.Wrapf(err, "decode message %s", k)
			}
			messages = append(messages, msg)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// Create stores a new message
func (s *BoltStore) Create(ctx context.Context, in models.NewMessage) (*models.Message, error) {
	msg := in.Build(newID(), time.Now().UTC())

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "encode message")
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(messageBucket)).Put([]byte(msg.ID), data)
	})
	if err != nil {
		return nil, errors.Wrap(err, "save message")
	}

	return &msg, nil
}

// Patch sets one flag on an existing message
func (s *BoltStore) Patch(ctx context.Context, id string, flag models.Flag, value bool) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(messageBucket))

		data := b.Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}

		var msg models.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return errors.Wrapf(err, "decode message %s", id)
		}
		if !msg.Set(flag, value) {
			return errors.Errorf("unknown flag %q", flag)
		}

		updated, err := json.Marshal(msg)
		if err != nil {
			return errors.Wrap(err, "encode message")
		}
		return b.Put([]byte(id), updated)
	})
}

// Delete removes a message permanently
func (s *BoltStore) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(messageBucket))
		if b.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(id))
	})
}
