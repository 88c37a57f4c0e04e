package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"bloggenie-server/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	entity TEXT NOT NULL,
	id     TEXT NOT NULL,
	data   TEXT NOT NULL,
	PRIMARY KEY (entity, id)
)`

var jsonKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteStore is a single-file DocumentStore. Each record is a JSON blob keyed
// by entity and id; string equality filters run in SQL via json_extract.
type SQLiteStore struct {
	db     *sql.DB
	logger domain.Logger
}

// NewSQLiteStore opens (and migrates) the database at path. ":memory:" is accepted.
func NewSQLiteStore(ctx context.Context, path string, logger domain.Logger) (*SQLiteStore, error) {
	if path == "" {
		path = "bloggenie.db"
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?"
	} else {
		dsn += "&"
	}
	dsn += "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// one writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate SQLite database: %w", err)
	}

	logger.Info("SQLite store opened", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) List(ctx context.Context, entity string, q domain.Query, token string) ([]domain.Record, error) {
	query, args := buildSQLiteList(entity, q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", entity, err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", entity, err)
		}
		r, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", entity, err)
	}
	return applyQuery(out, q), nil
}

func (s *SQLiteStore) Get(ctx context.Context, entity, id string, token string) (domain.Record, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM records WHERE entity = ? AND id = ?`, entity, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %s: %w", entity, id, err)
	}
	return decodeRecord(data)
}

func (s *SQLiteStore) Create(ctx context.Context, entity string, fields domain.Record, token string) (domain.Record, error) {
	r := cloneRecord(fields)
	if getString(r, "id") == "" {
		r["id"] = uuid.NewString()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", entity, err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO records (entity, id, data) VALUES (?, ?, ?)`, entity, getString(r, "id"), string(data)); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", entity, err)
	}
	// round-trip so callers see the same value types a later Get returns
	return decodeRecord(string(data))
}

func (s *SQLiteStore) Update(ctx context.Context, entity, id string, fields domain.Record, token string) (domain.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin update: %w", err)
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx, `SELECT data FROM records WHERE entity = ? AND id = ?`, entity, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %s: %w", entity, id, err)
	}

	r, err := decodeRecord(data)
	if err != nil {
		return nil, err
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		r[k] = v
	}

	encoded, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", entity, err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE records SET data = ? WHERE entity = ? AND id = ?`, string(encoded), entity, id); err != nil {
		return nil, fmt.Errorf("failed to update %s %s: %w", entity, id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}
	return decodeRecord(string(encoded))
}

func (s *SQLiteStore) Delete(ctx context.Context, entity, id string, token string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE entity = ? AND id = ?`, entity, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", entity, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", entity, id, err)
	}
	if n == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// buildSQLiteList pushes string equality filters down. Other filters, ordering
// and limits are left to applyQuery.
func buildSQLiteList(entity string, q domain.Query) (string, []interface{}) {
	var b strings.Builder
	b.WriteString(`SELECT data FROM records WHERE entity = ?`)
	args := []interface{}{entity}

	keys := make([]string, 0, len(q.Filter))
	for k := range q.Filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, ok := q.Filter[k].(string)
		if !ok || !jsonKeyPattern.MatchString(k) {
			continue
		}
		b.WriteString(` AND json_extract(data, '$.` + k + `') = ?`)
		args = append(args, v)
	}
	b.WriteString(` ORDER BY rowid`)
	return b.String(), args
}

func decodeRecord(data string) (domain.Record, error) {
	var r domain.Record
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return r, nil
}
