package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// FileStore keeps the record array in <dir>/history.json, newest first, with
// one <id>.html artifact per record in the same directory. Appends are
// serialized under a mutex and the log is replaced atomically
// (write-temp-then-rename) so a crash never leaves a half-written file.
type FileStore struct {
	dir  string
	path string
	mu   sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &FileStore{dir: dir, path: filepath.Join(dir, "history.json")}, nil
}

// Dir returns the artifact directory.
func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) Append(rec Record, html string) (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.load()
	if err != nil {
		return Record{}, err
	}

	now := time.Now().UTC()
	rec.ID = f.newID(now, records)
	rec.CreatedAt = now
	rec.HTMLPath = filepath.Join(f.dir, rec.ID+".html")

	if err := os.WriteFile(rec.HTMLPath, []byte(html), 0o644); err != nil {
		return Record{}, fmt.Errorf("write artifact: %w", err)
	}

	records = append([]Record{rec}, records...)
	if err := f.persist(records); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (f *FileStore) List() ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *FileStore) Get(id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.load()
	if err != nil {
		return "", err
	}
	for _, rec := range records {
		if rec.ID != id {
			continue
		}
		body, err := os.ReadFile(rec.HTMLPath)
		if err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("%w: artifact file missing for %q", ErrNotFound, id)
			}
			return "", fmt.Errorf("read artifact: %w", err)
		}
		return string(body), nil
	}
	return "", fmt.Errorf("%w: no record %q", ErrNotFound, id)
}

// newID derives a timestamp id and disambiguates collisions with a numeric
// suffix. Must be called with the lock held.
func (f *FileStore) newID(t time.Time, records []Record) string {
	taken := make(map[string]bool, len(records))
	for _, rec := range records {
		taken[rec.ID] = true
	}
	base := "ui_" + t.Format("20060102_150405")
	id := base
	for n := 2; taken[id] || f.artifactExists(id); n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	return id
}

func (f *FileStore) artifactExists(id string) bool {
	_, err := os.Stat(filepath.Join(f.dir, id+".html"))
	return err == nil
}

func (f *FileStore) load() ([]Record, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history log: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		// Corrupted log: move it aside and start fresh rather than
		// blocking every request on it.
		backup := f.path + ".backup"
		if renameErr := os.Rename(f.path, backup); renameErr == nil {
			log.Warn().Str("backup", backup).Err(err).Msg("history log corrupted, moved aside")
		}
		return nil, nil
	}
	return records, nil
}

func (f *FileStore) persist(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history log: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write history log: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace history log: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
