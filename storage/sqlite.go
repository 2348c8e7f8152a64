package storage

import (
	"contactdash/models"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS messages (
	id          TEXT NOT NULL PRIMARY KEY,
	name        TEXT NOT NULL,
	email       TEXT NOT NULL,
	message     TEXT NOT NULL,
	-- creation time, unix nanoseconds UTC
	timestamp   INTEGER NOT NULL,
	is_read     INTEGER NOT NULL DEFAULT 0,
	is_starred  INTEGER NOT NULL DEFAULT 0,
	is_archived INTEGER NOT NULL DEFAULT 0,
	is_deleted  INTEGER NOT NULL DEFAULT 0,
	priority    TEXT NOT NULL DEFAULT 'medium'
);`

// flagColumns is the whitelist of columns Patch may write
var flagColumns = map[models.Flag]string{
	models.FlagRead:     "is_read",
	models.FlagStarred:  "is_starred",
	models.FlagArchived: "is_archived",
	models.FlagDeleted:  "is_deleted",
}

// SQLiteStore keeps messages in a single SQLite table
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite-backed store in dataDir
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, errors.Wrap(err, "failed to create data directory")
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", filepath.Join(dataDir, "contactdash.sqlite"))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open database at %s", dsn)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "could not create messages table")
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// List retrieves all messages in creation order
func (s *SQLiteStore) List(ctx context.Context) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, email, message, timestamp, is_read, is_starred, is_archived, is_deleted, priority
FROM messages
ORDER BY timestamp, id`)
	if err != nil {
		return nil, errors.Wrap(err, "query messages")
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var (
			msg      models.Message
			ts       int64
			priority string
		)
		err := rows.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Message, &ts,
			&msg.IsRead, &msg.IsStarred, &msg.IsArchived, &msg.IsDeleted, &priority)
		if err != nil {
			return nil, errors.Wrap(err, "scan message")
		}
		msg.Timestamp = time.Unix(0, ts).UTC()
		msg.Priority = models.Priority(priority)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate messages")
	}

	return messages, nil
}

// Create stores a new message
func (s *SQLiteStore) Create(ctx context.Context, in models.NewMessage) (*models.Message, error) {
	msg := in.Build(newID(), time.Now().UTC())

	_, err := s.db.ExecContext(ctx, `
INSERT INTO messages (id, name, email, message, timestamp, priority)
VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.Name, msg.Email, msg.Message, msg.Timestamp.UnixNano(), string(msg.Priority))
	if err != nil {
		return nil, errors.Wrap(err, "insert message")
	}

	return &msg, nil
}

// Patch sets one flag on an existing message
func (s *SQLiteStore) Patch(ctx context.Context, id string, flag models.Flag, value bool) error {
	column, ok := flagColumns[flag]
	if !ok {
		return errors.Errorf("unknown flag %q", flag)
	}

	res, err := s.db.ExecContext(ctx, "UPDATE messages SET "+column+" = ? WHERE id = ?", value, id)
	if err != nil {
		return errors.Wrapf(err, "update %s", column)
	}
	return requireRow(res)
}

// Delete removes a message permanently
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM messages WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "delete message")
	}
	return requireRow(res)
}

// requireRow maps "no row matched" to ErrNotFound
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
