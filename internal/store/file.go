package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/brogergvhs/lntracker/internal/util"
	"github.com/fsnotify/fsnotify"
)

// File keeps every key in one JSON object on disk, the way a browser's
// local storage area holds them. Values must be valid JSON.
type File struct {
	path string
	mu   sync.Mutex
}

func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("file store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("file store: create dir: %w", err)
	}

	return &File{path: path}, nil
}

func (f *File) Path() string { return f.path }

func (f *File) read() (map[string]json.RawMessage, error) {
	b, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file store: read %s: %w", f.path, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("file store: decode %s: %w", f.path, err)
	}
	if m == nil {
		m = map[string]json.RawMessage{}
	}

	return m, nil
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.read()
	if err != nil {
		return nil, err
	}

	v, ok := m[key]
	if !ok {
		return nil, nil
	}

	return []byte(v), nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("file store: value for %q is not valid JSON", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.read()
	if err != nil {
		return err
	}
	m[key] = json.RawMessage(value)

	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("file store: encode: %w", err)
	}

	if _, err := util.WriteFileAtomic(f.path, b); err != nil {
		return fmt.Errorf("file store: %w", err)
	}

	return nil
}

func (f *File) Close() error { return nil }

// Watch reports keys whose values changed on disk, including writes made
// by other processes.
func (f *File) Watch(ctx context.Context) (<-chan Change, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("file store: watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(f.path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("file store: watch %s: %w", filepath.Dir(f.path), err)
	}

	f.mu.Lock()
	last, _ := f.read()
	f.mu.Unlock()

	out := make(chan Change, 16)
	go f.watchLoop(ctx, fw, last, out)

	return out, nil
}

func (f *File) watchLoop(ctx context.Context, fw *fsnotify.Watcher, last map[string]json.RawMessage, out chan<- Change) {
	defer close(out)
	defer fw.Close()

	const debounce = 100 * time.Millisecond
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	var pending time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(f.path) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				pending = time.Now()
			}

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < debounce {
				continue
			}
			pending = time.Time{}

			f.mu.Lock()
			cur, err := f.read()
			f.mu.Unlock()
			if err != nil {
				continue
			}

			if keys := changedKeys(last, cur); len(keys) > 0 {
				select {
				case out <- Change{Keys: keys, Area: "local"}:
				case <-ctx.Done():
					return
				}
			}
			last = cur

		case _, ok := <-fw.Errors:
			if !ok {
				return
			}
		}
	}
}

func changedKeys(before, after map[string]json.RawMessage) []string {
	var keys []string
	for k, v := range after {
		if old, ok := before[k]; !ok || !bytes.Equal(old, v) {
			keys = append(keys, k)
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	return keys
}
