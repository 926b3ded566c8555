package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/versely/versely/internal/domain/entities"
	"github.com/versely/versely/internal/domain/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS slides (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	html        TEXT NOT NULL,
	slide_order INTEGER NOT NULL,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS collections (
	id          TEXT NOT NULL,
	kind        TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	slide_ids   TEXT NOT NULL DEFAULT '[]',
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL,
	PRIMARY KEY (kind, id)
);

CREATE TABLE IF NOT EXISTS flows (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	items      TEXT NOT NULL DEFAULT '[]',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS contents (
	key        TEXT PRIMARY KEY,
	item_id    TEXT NOT NULL,
	item_type  TEXT NOT NULL,
	content    TEXT NOT NULL DEFAULT '',
	updated_at INTEGER NOT NULL
);
`

// SQLiteStore persists all resources in a single sqlite database. It backs
// the storage server.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	// sqlite handles one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetSlide returns a slide by id.
func (s *SQLiteStore) GetSlide(ctx context.Context, id string) (*entities.Slide, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, html, slide_order, created_at, updated_at FROM slides WHERE id = ?`, id)
	return scanSlide(row, id)
}

// ListSlides returns every slide.
func (s *SQLiteStore) ListSlides(ctx context.Context) ([]entities.Slide, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, html, slide_order, created_at, updated_at FROM slides ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing slides: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []entities.Slide
	for rows.Next() {
		var sl entities.Slide
		var created, updated int64
		if err := rows.Scan(&sl.ID, &sl.Title, &sl.HTML, &sl.Order, &created, &updated); err != nil {
			return nil, fmt.Errorf("scanning slide: %w", err)
		}
		sl.CreatedAt = time.UnixMilli(created)
		sl.UpdatedAt = time.UnixMilli(updated)
		out = append(out, sl)
	}
	return out, rows.Err()
}

// UpsertSlide stores a slide, overwriting by id.
func (s *SQLiteStore) UpsertSlide(ctx context.Context, slide *entities.Slide) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO slides (id, title, html, slide_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			html = excluded.html,
			slide_order = excluded.slide_order,
			updated_at = excluded.updated_at`,
		slide.ID, slide.Title, slide.HTML, slide.Order,
		slide.CreatedAt.UnixMilli(), slide.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("upserting slide %s: %w", slide.ID, err)
	}
	return nil
}

// DeleteSlide removes a slide by id.
func (s *SQLiteStore) DeleteSlide(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM slides WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting slide %s: %w", id, err)
	}
	return requireAffected(res, fmt.Sprintf("slide %s", id))
}

// GetCollection returns a collection by reference.
func (s *SQLiteStore) GetCollection(ctx context.Context, ref entities.CollectionRef) (*entities.Collection, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, title, description, slide_ids, created_at, updated_at
		FROM collections WHERE kind = ? AND id = ?`, ref.Kind.String(), ref.ID)

	c, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection %s: %w", ref, entities.ErrNotFound)
	}
	return c, err
}

// ListCollections returns every collection of a kind ordered by creation
// time.
func (s *SQLiteStore) ListCollections(ctx context.Context, kind entities.CollectionKind) ([]entities.Collection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, title, description, slide_ids, created_at, updated_at
		FROM collections WHERE kind = ? ORDER BY created_at, id`, kind.String())
	if err != nil {
		return nil, fmt.Errorf("listing %s collections: %w", kind, err)
	}
	defer func() { _ = rows.Close() }()

	var out []entities.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// CreateCollection stores a new collection.
func (s *SQLiteStore) CreateCollection(ctx context.Context, c *entities.Collection) error {
	if err := c.Validate(); err != nil {
		return err
	}

	ids, err := json.Marshal(c.SlideIDs)
	if err != nil {
		return fmt.Errorf("encoding slide ids: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO collections (id, kind, title, description, slide_ids, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Kind.String(), c.Title, c.Description, string(ids),
		c.CreatedAt.UnixMilli(), c.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", c.Ref(), err)
	}
	return nil
}

// UpdateCollection overwrites an existing collection.
func (s *SQLiteStore) UpdateCollection(ctx context.Context, c *entities.Collection) error {
	ids, err := json.Marshal(c.SlideIDs)
	if err != nil {
		return fmt.Errorf("encoding slide ids: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE collections SET title = ?, description = ?, slide_ids = ?, updated_at = ?
		WHERE kind = ? AND id = ?`,
		c.Title, c.Description, string(ids), c.UpdatedAt.UnixMilli(),
		c.Kind.String(), c.ID)
	if err != nil {
		return fmt.Errorf("updating collection %s: %w", c.Ref(), err)
	}
	return requireAffected(res, fmt.Sprintf("collection %s", c.Ref()))
}

// DeleteCollection removes a collection by reference.
func (s *SQLiteStore) DeleteCollection(ctx context.Context, ref entities.CollectionRef) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM collections WHERE kind = ? AND id = ?`, ref.Kind.String(), ref.ID)
	if err != nil {
		return fmt.Errorf("deleting collection %s: %w", ref, err)
	}
	return requireAffected(res, fmt.Sprintf("collection %s", ref))
}

// GetFlow returns a flow by id.
func (s *SQLiteStore) GetFlow(ctx context.Context, id string) (*entities.Flow, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, items, created_at, updated_at FROM flows WHERE id = ?`, id)

	f, err := scanFlow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("flow %s: %w", id, entities.ErrNotFound)
	}
	return f, err
}

// ListFlows returns every flow ordered by creation time.
func (s *SQLiteStore) ListFlows(ctx context.Context) ([]entities.Flow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, items, created_at, updated_at FROM flows ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing flows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []entities.Flow
	for rows.Next() {
		f, err := scanFlow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// CreateFlow stores a new flow.
func (s *SQLiteStore) CreateFlow(ctx context.Context, f *entities.Flow) error {
	if err := f.Validate(); err != nil {
		return err
	}

	items, err := json.Marshal(f.Items)
	if err != nil {
		return fmt.Errorf("encoding flow items: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO flows (id, title, items, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.Title, string(items), f.CreatedAt.UnixMilli(), f.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("creating flow %s: %w", f.ID, err)
	}
	return nil
}

// UpdateFlow overwrites an existing flow.
func (s *SQLiteStore) UpdateFlow(ctx context.Context, f *entities.Flow) error {
	items, err := json.Marshal(f.Items)
	if err != nil {
		return fmt.Errorf("encoding flow items: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE flows SET title = ?, items = ?, updated_at = ? WHERE id = ?`,
		f.Title, string(items), f.UpdatedAt.UnixMilli(), f.ID)
	if err != nil {
		return fmt.Errorf("updating flow %s: %w", f.ID, err)
	}
	return requireAffected(res, fmt.Sprintf("flow %s", f.ID))
}

// DeleteFlow removes a flow by id.
func (s *SQLiteStore) DeleteFlow(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM flows WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting flow %s: %w", id, err)
	}
	return requireAffected(res, fmt.Sprintf("flow %s", id))
}

// GetContent returns stored text by key, empty string when absent.
func (s *SQLiteStore) GetContent(ctx context.Context, key string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM contents WHERE key = ?`, key).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading content %s: %w", key, err)
	}
	return content, nil
}

// PutContent upserts a text content record by key.
func (s *SQLiteStore) PutContent(ctx context.Context, content *entities.TextContent) error {
	if err := content.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contents (key, item_id, item_type, content, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			content = excluded.content,
			updated_at = excluded.updated_at`,
		content.Key, content.ItemID, content.ItemType, content.Content,
		content.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("upserting content %s: %w", content.Key, err)
	}
	return nil
}

// DeleteContent removes stored text by key.
func (s *SQLiteStore) DeleteContent(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM contents WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting content %s: %w", key, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlide(row rowScanner, id string) (*entities.Slide, error) {
	var sl entities.Slide
	var created, updated int64
	err := row.Scan(&sl.ID, &sl.Title, &sl.HTML, &sl.Order, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("slide %s: %w", id, entities.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning slide: %w", err)
	}
	sl.CreatedAt = time.UnixMilli(created)
	sl.UpdatedAt = time.UnixMilli(updated)
	return &sl, nil
}

func scanCollection(row rowScanner) (*entities.Collection, error) {
	var c entities.Collection
	var kind, ids string
	var created, updated int64
	if err := row.Scan(&c.ID, &kind, &c.Title, &c.Description, &ids, &created, &updated); err != nil {
		return nil, err
	}
	c.Kind = entities.CollectionKind(kind)
	c.CreatedAt = time.UnixMilli(created)
	c.UpdatedAt = time.UnixMilli(updated)
	if err := json.Unmarshal([]byte(ids), &c.SlideIDs); err != nil {
		return nil, fmt.Errorf("decoding slide ids of %s: %w", c.ID, err)
	}
	return &c, nil
}

func scanFlow(row rowScanner) (*entities.Flow, error) {
	var f entities.Flow
	var items string
	var created, updated int64
	if err := row.Scan(&f.ID, &f.Title, &items, &created, &updated); err != nil {
		return nil, err
	}
	f.CreatedAt = time.UnixMilli(created)
	f.UpdatedAt = time.UnixMilli(updated)
	if err := json.Unmarshal([]byte(items), &f.Items); err != nil {
		return nil, fmt.Errorf("decoding items of flow %s: %w", f.ID, err)
	}
	return &f, nil
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, entities.ErrNotFound)
	}
	return nil
}

var _ ports.Store = (*SQLiteStore)(nil)
