package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the full schedule list in one JSON file, rewritten as
// a whole on every change. The mutex serializes writers within this
// process only; two processes sharing the file can still race and drop
// a write, which mirrors the single-blob storage model this store
// replaces. Use SQLiteStore where that matters.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore at path. Call Init before use.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Init creates the parent directory of the store file.
func (s *FileStore) Init(ctx context.Context) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create schedule dir: %w", err)
		}
	}
	return nil
}

// Close is a no-op; the file is not held open between operations.
func (s *FileStore) Close() error { return nil }

// Append adds rec with a read-modify-write of the whole list.
func (s *FileStore) Append(ctx context.Context, rec ScheduledSend) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.read()
	if err != nil {
		return err
	}
	recs = append(recs, rec)
	return s.write(recs)
}

// List returns every record in file order.
func (s *FileStore) List(ctx context.Context) ([]ScheduledSend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// SetStatus locates the record by id and rewrites the whole list.
func (s *FileStore) SetStatus(ctx context.Context, id string, status Status, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.read()
	if err != nil {
		return err
	}
	for i := range recs {
		if recs[i].ID == id {
			recs[i].Status = status
			recs[i].Error = errMsg
			return s.write(recs)
		}
	}
	return ErrNotFound
}

func (s *FileStore) read() ([]ScheduledSend, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []ScheduledSend{}, nil
		}
		return nil, fmt.Errorf("read schedule file: %w", err)
	}
	if len(data) == 0 {
		return []ScheduledSend{}, nil
	}

	var recs []ScheduledSend
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("unmarshal schedule: %w", err)
	}
	return recs, nil
}

func (s *FileStore) write(recs []ScheduledSend) error {
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write schedule file: %w", err)
	}
	return nil
}
