// Package store keeps the index of saved conversations: IDs, titles, and
// recency. The snapshots themselves live in the cache; the store exists so
// they can be found by prefix or title and listed newest first.
package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Lookup errors.
var (
	ErrNoMatches   = errors.New("no conversations matched the given input")
	ErrManyMatches = errors.New("multiple conversations matched the given input")
)

// IDs shorter than this only match titles, so a short word can't
// accidentally prefix-match an ID.
const minIDPrefixLen = 4

// Conversation is one saved conversation's index entry.
type Conversation struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Store is the conversation index, backed by SQLite.
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the index at path. Use ":memory:" for an ephemeral
// one.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("could not open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping db: %w", err)
	}
	if _, err := db.Exec(`
		create table if not exists conversations(
			id string not null primary key,
			title string not null,
			updated_at datetime not null default current_timestamp
		);
	`); err != nil {
		return nil, fmt.Errorf("could not migrate db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close() //nolint:wrapcheck
}

// Save inserts or updates a conversation entry, bumping its recency.
func (s *Store) Save(id, title string) error {
	if id == "" {
		return fmt.Errorf("could not save conversation: no id")
	}
	if title == "" {
		return fmt.Errorf("could not save conversation: no title")
	}
	if _, err := s.db.Exec(`
		update conversations
		set title = $2, updated_at = current_timestamp
		where id = $1
	`, id, title); err != nil {
		return fmt.Errorf("could not save conversation: %w", err)
	}
	if _, err := s.db.Exec(`
		insert or ignore into conversations (id, title)
		values ($1, $2)
	`, id, title); err != nil {
		return fmt.Errorf("could not save conversation: %w", err)
	}
	return nil
}

// Delete removes a conversation entry. Deleting an unknown ID is not an
// error.
func (s *Store) Delete(id string) error {
	if _, err := s.db.Exec(`
		delete from conversations
		where id = $1
	`, id); err != nil {
		return fmt.Errorf("could not delete conversation: %w", err)
	}
	return nil
}

// FindHEAD returns the most recently updated conversation.
func (s *Store) FindHEAD() (*Conversation, error) {
	var convo Conversation
	if err := s.db.Get(&convo, `
		select * from conversations
		order by updated_at desc
		limit 1
	`); err != nil {
		return nil, fmt.Errorf("could not find last conversation: %w", err)
	}
	return &convo, nil
}

// Find resolves in to a single conversation, matching either an ID prefix or
// an exact title. Ambiguity is an error, never a guess.
func (s *Store) Find(in string) (*Conversation, error) {
	var convos []Conversation
	query := `select * from conversations where id like $1 or title = $2`
	args := []any{in + "%", in}
	if len(in) < minIDPrefixLen {
		query = `select * from conversations where title = $1`
		args = []any{in}
	}
	if err := s.db.Select(&convos, query, args...); err != nil {
		return nil, fmt.Errorf("could not find conversation: %w", err)
	}
	switch len(convos) {
	case 0:
		return nil, ErrNoMatches
	case 1:
		return &convos[0], nil
	default:
		ids := make([]string, 0, len(convos))
		for _, c := range convos {
			ids = append(ids, c.ID)
		}
		return nil, fmt.Errorf("%w: %q: %s", ErrManyMatches, in, strings.Join(ids, ", "))
	}
}

// List returns every conversation, newest first.
func (s *Store) List() ([]Conversation, error) {
	var convos []Conversation
	if err := s.db.Select(&convos, `
		select * from conversations
		order by updated_at desc
	`); err != nil {
		return convos, fmt.Errorf("could not list conversations: %w", err)
	}
	return convos, nil
}
