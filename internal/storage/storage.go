package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"haru/internal/task"
)

// SchemaVersion is written into every persisted snapshot so future
// format changes can migrate old files.
const SchemaVersion = 1

const tasksKey = "tasks"

// Snapshot is the persisted envelope: a version stamp plus the full
// task array.
type Snapshot struct {
	Version int         `json:"version"`
	Tasks   []task.Task `json:"tasks"`
}

// Store persists the task set as a single named entry in a sqlite
// key-value table. The process owns the file exclusively.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`
	_, err := s.db.Exec(ddl)
	return err
}

// Load reads the persisted task set. ok is false when nothing has been
// saved yet, which is not an error.
func (s *Store) Load() ([]task.Task, bool, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?;`, tasksKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version > SchemaVersion {
		return nil, false, fmt.Errorf("snapshot version %d is newer than supported %d", snap.Version, SchemaVersion)
	}
	tasks := snap.Tasks
	if tasks == nil {
		tasks = []task.Task{}
	}
	for i := range tasks {
		tasks[i].Normalize()
	}
	return tasks, true, nil
}

// Save replaces the persisted task set in one write.
func (s *Store) Save(tasks []task.Task) error {
	raw, err := json.Marshal(Snapshot{Version: SchemaVersion, Tasks: tasks})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value;`,
		tasksKey, string(raw),
	)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
