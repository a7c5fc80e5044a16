package repository

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	body       TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT '',
	embedding  BLOB,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_category ON notes (category);
`

// sqliteRepo is the on-device note store backed by a local SQLite file
type sqliteRepo struct {
	db *sql.DB
}

// NewSQLite opens (and initializes if needed) a SQLite note store at path
func NewSQLite(path string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to initialize sqlite schema")
	}

	return &sqliteRepo{db: db}, nil
}

// encodeEmbedding packs a vector as little-endian float32 bytes
func encodeEmbedding(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	buf := make([]byte, 0, len(vec)*4)
	for _, v := range vec {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}

func decodeEmbedding(data []byte) []float32 {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(data)/4)
	reader := bytes.NewReader(data)
	for i := range vec {
		var bits uint32
		if err := binary.Read(reader, binary.LittleEndian, &bits); err != nil {
			return nil
		}
		vec[i] = math.Float32frombits(bits)
	}
	return vec
}

func (r *sqliteRepo) PutNote(ctx context.Context, note *model.Note) error {
	if note.ID == "" {
		note.ID = model.NewNoteID()
	}
	now := time.Now()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	note.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (id, title, body, category, embedding, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(note.ID), note.Title, note.Body, note.Category,
		encodeEmbedding(note.Embedding), note.CreatedAt.Unix(), note.UpdatedAt.Unix(),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert note", goerr.V("note_id", note.ID))
	}
	return nil
}

func (r *sqliteRepo) GetNote(ctx context.Context, id model.NoteID) (*model.Note, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, body, category, embedding, created_at, updated_at
		 FROM notes WHERE id = ?`, string(id))

	note, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, goerr.Wrap(model.ErrNoteNotFound, "no such note", goerr.V("note_id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get note", goerr.V("note_id", id))
	}
	return note, nil
}

func (r *sqliteRepo) UpdateNote(ctx context.Context, note *model.Note) error {
	note.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, body = ?, category = ?, embedding = ?, updated_at = ?
		 WHERE id = ?`,
		note.Title, note.Body, note.Category,
		encodeEmbedding(note.Embedding), note.UpdatedAt.Unix(), string(note.ID),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to update note", goerr.V("note_id", note.ID))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to check update result")
	}
	if affected == 0 {
		return goerr.Wrap(model.ErrNoteNotFound, "no such note", goerr.V("note_id", note.ID))
	}
	return nil
}

func (r *sqliteRepo) DeleteNote(ctx context.Context, id model.NoteID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, string(id))
	if err != nil {
		return goerr.Wrap(err, "failed to delete note", goerr.V("note_id", id))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to check delete result")
	}
	if affected == 0 {
		return goerr.Wrap(model.ErrNoteNotFound, "no such note", goerr.V("note_id", id))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*model.Note, error) {
	var (
		note      model.Note
		id        string
		embedding []byte
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&id, &note.Title, &note.Body, &note.Category, &embedding, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	note.ID = model.NoteID(id)
	note.Embedding = decodeEmbedding(embedding)
	note.CreatedAt = time.Unix(createdAt, 0)
	note.UpdatedAt = time.Unix(updatedAt, 0)
	return &note, nil
}

func (r *sqliteRepo) queryNotes(ctx context.Context, query string, args ...any) ([]*model.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query notes")
	}
	defer rows.Close()

	var notes []*model.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan note row")
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate note rows")
	}
	return notes, nil
}

func (r *sqliteRepo) ListNotes(ctx context.Context, offset, limit int) ([]*model.Note, error) {
	if limit <= 0 {
		limit = -1 // no limit in sqlite
	}
	return r.queryNotes(ctx,
		`SELECT id, title, body, category, embedding, created_at, updated_at
		 FROM notes ORDER BY created_at, id LIMIT ? OFFSET ?`, limit, offset)
}

func (r *sqliteRepo) ListEmbedded(ctx context.Context) ([]*model.Note, error) {
	return r.queryNotes(ctx,
		`SELECT id, title, body, category, embedding, created_at, updated_at
		 FROM notes WHERE embedding IS NOT NULL ORDER BY created_at, id`)
}

func (r *sqliteRepo) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM notes WHERE category != '' ORDER BY category`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query categories")
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, goerr.Wrap(err, "failed to scan category row")
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate category rows")
	}
	return categories, nil
}

func (r *sqliteRepo) Close() error {
	if err := r.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close sqlite database")
	}
	return nil
}
