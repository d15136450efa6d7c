package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/Ashfaaq98/clients-console/internal/table"
)

// FileStore keeps preference slots in a JSON object file.
type FileStore struct {
	path   string
	logger *log.Logger

	mu   sync.Mutex
	last table.Criteria // last value saved or delivered, used to drop our own watch events
}

// NewFileStore creates the parent directory and returns a file backend.
func NewFileStore(path string, logger *log.Logger) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("empty preferences path")
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[prefs] ", log.LstdFlags)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mk preferences dir: %w", err)
	}
	return &FileStore{path: filepath.Clean(path), logger: logger}, nil
}

func (fs *FileStore) Name() string { return "file" }

func (fs *FileStore) Close() error { return nil }

func (fs *FileStore) readSlots() (map[string]json.RawMessage, error) {
	b, err := os.ReadFile(fs.path)
	if err != nil {
		return nil, err
	}
	slots := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &slots); err != nil {
		return nil, fmt.Errorf("unmarshal preferences: %w", err)
	}
	return slots, nil
}

func (fs *FileStore) Load(ctx context.Context) (table.Criteria, bool) {
	slots, err := fs.readSlots()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fs.logger.Printf("Ignoring unreadable preferences %s: %v", fs.path, err)
		}
		return nil, false
	}
	raw, ok := slots[Key]
	if !ok {
		return nil, false
	}
	criteria, err := Decode(raw)
	if err != nil {
		fs.logger.Printf("Ignoring malformed %s in %s: %v", Key, fs.path, err)
		return nil, false
	}
	return criteria, true
}

func (fs *FileStore) Save(ctx context.Context, criteria table.Criteria) error {
	value, err := Encode(criteria)
	if err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	slots, err := fs.readSlots()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fs.logger.Printf("Rewriting unreadable preferences %s: %v", fs.path, err)
		}
		slots = map[string]json.RawMessage{}
	}
	slots[Key] = value

	data, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	if err := writeFileAtomic(fs.path, data); err != nil {
		return err
	}
	fs.last = criteria.Clone()
	return nil
}

// Delete drops the slot and removes the file once no other slot remains.
// An unreadable file is removed.
func (fs *FileStore) Delete(ctx context.Context) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	slots, err := fs.readSlots()
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err == nil {
		delete(slots, Key)
	}
	fs.last = table.Criteria{}

	if err != nil || len(slots) == 0 {
		if err := os.Remove(fs.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove preferences: %w", err)
		}
		return nil
	}
	data, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	return writeFileAtomic(fs.path, data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp preferences: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close preferences: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}

// Watch calls onChange whenever another process rewrites the slot. Writes
// made through this FileStore are not reported. A deleted file reports an
// empty list. Watch blocks until ctx is done.
func (fs *FileStore) Watch(ctx context.Context, onChange func(table.Criteria)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer w.Close()

	// Watch the directory: atomic renames replace the file inode.
	if err := w.Add(filepath.Dir(fs.path)); err != nil {
		return fmt.Errorf("watch add: %w", err)
	}

	fs.mu.Lock()
	if fs.last == nil {
		if c, ok := fs.Load(ctx); ok {
			fs.last = c
		} else {
			fs.last = table.Criteria{}
		}
	}
	fs.mu.Unlock()

	fs.logger.Printf("Watching preferences: %s", fs.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != fs.path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			criteria, found := fs.Load(ctx)
			if !found {
				criteria = table.Criteria{}
			}

			fs.mu.Lock()
			changed := !criteria.Equal(fs.last)
			if changed {
				fs.last = criteria.Clone()
			}
			fs.mu.Unlock()

			if changed {
				fs.logger.Printf("Preferences changed on disk: [%s]", criteria)
				onChange(criteria)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				fs.logger.Printf("watch error: %v", err)
			}
		}
	}
}
