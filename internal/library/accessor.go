package library

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/brogergvhs/lntracker/internal/store"
	"github.com/brogergvhs/lntracker/internal/ui"
)

// ErrNotFound is returned when an id is not in the library.
var ErrNotFound = errors.New("library entry not found")

// Accessor reads and rewrites the library blob in a store. Writes made
// through one Accessor are serialized; writes from other processes to
// the same store are not, and the last one wins.
type Accessor struct {
	store store.Store
	log   *ui.Logger
	now   func() time.Time
	mu    sync.Mutex
}

func NewAccessor(s store.Store, log *ui.Logger) *Accessor {
	if log == nil {
		log = ui.Discard()
	}

	return &Accessor{store: s, log: log, now: time.Now}
}

// SetClock replaces the time source used for updated_at.
func (a *Accessor) SetClock(now func() time.Time) {
	a.now = now
}

// Library loads the whole library. A stored value that is not a JSON
// object reads as an empty library.
func (a *Accessor) Library(ctx context.Context) (Library, error) {
	raw, err := a.store.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}
	if raw == nil {
		return Library{}, nil
	}

	lib, skipped, err := Decode(raw)
	if err != nil {
		a.log.Warnf("stored library is not an object, treating it as empty")
		return Library{}, nil
	}
	if len(skipped) > 0 {
		a.log.Warnf("skipped %d malformed stored entries: %v", len(skipped), skipped)
	}

	return lib, nil
}

func (a *Accessor) save(ctx context.Context, lib Library) error {
	b, err := lib.Encode()
	if err != nil {
		return err
	}
	if err := a.store.Set(ctx, StorageKey, b); err != nil {
		return fmt.Errorf("save library: %w", err)
	}

	return nil
}

// Entry returns the stored entry for (source, novelKey), or nil.
func (a *Accessor) Entry(ctx context.Context, source, novelKey string) (*Entry, error) {
	lib, err := a.Library(ctx)
	if err != nil {
		return nil, err
	}

	e, ok := lib[EntryID(source, novelKey)]
	if !ok {
		return nil, nil
	}

	return &e, nil
}

// Upsert merges rec into its stored entry and persists the library.
func (a *Accessor) Upsert(ctx context.Context, rec Record) (Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	lib, err := a.Library(ctx)
	if err != nil {
		return Entry{}, err
	}

	var existing *Entry
	if e, ok := lib[rec.ID()]; ok {
		existing = &e
	}

	next := Upsert(existing, rec, a.now())
	lib[next.ID] = next

	if err := a.save(ctx, lib); err != nil {
		return Entry{}, err
	}
	a.log.Debugf("updated %s (chapter %s)", next.ID, deref(next.ChapterLabel))

	return next, nil
}

// SetStatus changes the status of one entry.
func (a *Accessor) SetStatus(ctx context.Context, id, status string) (Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	lib, err := a.Library(ctx)
	if err != nil {
		return Entry{}, err
	}

	e, ok := lib[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.Status = string(NormalizeStatus(status))
	e.UpdatedAt = FormatTime(a.now())
	lib[id] = e

	if err := a.save(ctx, lib); err != nil {
		return Entry{}, err
	}

	return e, nil
}

// Delete removes one entry.
func (a *Accessor) Delete(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	lib, err := a.Library(ctx)
	if err != nil {
		return err
	}
	if _, ok := lib[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(lib, id)

	return a.save(ctx, lib)
}

// Migrate renormalizes stored statuses, writing only if one changed.
func (a *Accessor) Migrate(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	lib, err := a.Library(ctx)
	if err != nil {
		return false, err
	}
	if !lib.NormalizeStatuses() {
		return false, nil
	}

	return true, a.save(ctx, lib)
}

// Export wraps the current library in an export file.
func (a *Accessor) Export(ctx context.Context) (ExportFile, error) {
	lib, err := a.Library(ctx)
	if err != nil {
		return ExportFile{}, err
	}

	return NewExport(lib, a.now()), nil
}

// Import decodes payload and merges it into (or replaces) the stored
// library. Nothing is written when the payload is not recognized.
func (a *Accessor) Import(ctx context.Context, payload []byte, mode ImportMode) (Library, error) {
	incoming, err := DecodeImport(payload)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var next Library
	if mode == ReplaceMode {
		next = Replace(incoming)
	} else {
		existing, err := a.Library(ctx)
		if err != nil {
			return nil, err
		}
		next = Merge(existing, incoming)
	}

	if err := a.save(ctx, next); err != nil {
		return nil, err
	}
	a.log.Infof("imported %d entries (%s), library now has %d", len(incoming), mode, len(next))

	return next, nil
}

// Watch forwards change notifications for the library key. ok is false
// when the backend cannot push changes.
func (a *Accessor) Watch(ctx context.Context) (<-chan struct{}, bool, error) {
	w, ok := a.store.(store.Watcher)
	if !ok {
		return nil, false, nil
	}

	changes, err := w.Watch(ctx)
	if err != nil {
		return nil, true, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for c := range changes {
			if !hasKey(c.Keys, StorageKey) {
				continue
			}
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()

	return out, true, nil
}

func hasKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}

	return false
}

func deref(s *string) string {
	if s == nil {
		return "?"
	}

	return *s
}
