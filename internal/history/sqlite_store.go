package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps records in <dir>/history.db while HTML artifacts stay on
// disk next to it, same as FileStore. Selected via HISTORY_BACKEND=sqlite.
type SQLiteStore struct {
	db  *sql.DB
	dir string
	mu  sync.Mutex
}

func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	s := &SQLiteStore{db: db, dir: dir}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS generations (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		prompt TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		html_path TEXT NOT NULL,
		title TEXT
	);`)
	if err != nil {
		return fmt.Errorf("init history db: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Append(rec Record, html string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	id, err := s.newID(now)
	if err != nil {
		return Record{}, err
	}
	rec.ID = id
	rec.CreatedAt = now
	rec.HTMLPath = filepath.Join(s.dir, id+".html")

	if err := os.WriteFile(rec.HTMLPath, []byte(html), 0o644); err != nil {
		return Record{}, fmt.Errorf("write artifact: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO generations (id, created_at, prompt, provider, model, html_path, title) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.Format(time.RFC3339), rec.Prompt, rec.Provider, rec.Model, rec.HTMLPath, rec.Title,
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert history record: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) List() ([]Record, error) {
	rows, err := s.db.Query(`SELECT id, created_at, prompt, provider, model, html_path, title FROM generations ORDER BY rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	var records []Record
	for rows.Next() {
		var rec Record
		var ts string
		if err := rows.Scan(&rec.ID, &ts, &rec.Prompt, &rec.Provider, &rec.Model, &rec.HTMLPath, &rec.Title); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.CreatedAt = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Get(id string) (string, error) {
	var htmlPath string
	err := s.db.QueryRow(`SELECT html_path FROM generations WHERE id = ?`, id).Scan(&htmlPath)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: no record %q", ErrNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("query history record: %w", err)
	}
	body, err := os.ReadFile(htmlPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: artifact file missing for %q", ErrNotFound, id)
		}
		return "", fmt.Errorf("read artifact: %w", err)
	}
	return string(body), nil
}

// newID mirrors FileStore's timestamp-derived scheme, checking the table for
// collisions. Must be called with the lock held.
func (s *SQLiteStore) newID(t time.Time) (string, error) {
	base := "ui_" + t.Format("20060102_150405")
	id := base
	for n := 2; ; n++ {
		var exists int
		err := s.db.QueryRow(`SELECT COUNT(1) FROM generations WHERE id = ?`, id).Scan(&exists)
		if err != nil {
			return "", fmt.Errorf("check id: %w", err)
		}
		if exists == 0 {
			return id, nil
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
}

var _ Store = (*SQLiteStore)(nil)
