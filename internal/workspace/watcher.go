package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"idres/internal/events"
)

// Change sources reported to observers.
const (
	SourceFile = "file"
	SourceAPI  = "api"
)

// Change describes one settings update.
type Change struct {
	Source   string
	Previous Settings
	Current  Settings
	Keys     []string
}

// Observer is called after the settings changed. It runs on the watcher
// goroutine and must not block.
type Observer func(ctx context.Context, change Change)

// Watcher pushes .env changes to observers and the event publisher.
type Watcher struct {
	store     *EnvStore
	logger    *slog.Logger
	publisher events.Publisher
	debounce  time.Duration

	mu        sync.Mutex
	current   Settings
	observers []Observer
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

func WithWatcherPublisher(p events.Publisher) WatcherOption {
	return func(w *Watcher) {
		w.publisher = p
	}
}

// WithDebounce sets how long the file must be quiet before it is re-read.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher reads the current settings and returns a watcher ready to Run.
func NewWatcher(store *EnvStore, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		store:     store,
		logger:    slog.Default(),
		publisher: &events.NoopPublisher{},
		debounce:  250 * time.Millisecond,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	current, err := store.Load()
	if err != nil {
		return nil, err
	}
	w.current = current
	return w, nil
}

// Subscribe registers an observer.
func (w *Watcher) Subscribe(o Observer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.observers = append(w.observers, o)
}

// Current returns the last settings seen.
func (w *Watcher) Current() Settings {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Run watches the directory holding the .env file until ctx is done. The
// directory is watched so editors that replace the file are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.store.Path())
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(w.store.Path())

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "workspace watcher error", "error", err)

		case <-timer.C:
			if _, err := w.Reload(ctx, SourceFile); err != nil {
				w.logger.WarnContext(ctx, "failed to reload workspace settings",
					"path", w.store.Path(),
					"error", err,
				)
			}
		}
	}
}

// Reload re-reads the file and notifies observers if anything changed.
func (w *Watcher) Reload(ctx context.Context, source string) (Change, error) {
	next, err := w.store.Load()
	if err != nil {
		return Change{}, err
	}

	w.mu.Lock()
	change := Change{
		Source:   source,
		Previous: w.current,
		Current:  next,
		Keys:     ChangedKeys(w.current, next),
	}
	w.current = next
	observers := append([]Observer(nil), w.observers...)
	w.mu.Unlock()

	if len(change.Keys) == 0 {
		return change, nil
	}

	w.logger.InfoContext(ctx, "workspace settings changed",
		"source", source,
		"keys", change.Keys,
	)
	for _, o := range observers {
		o(ctx, change)
	}
	evt := events.WorkspaceChanged{
		EventID:    uuid.NewString(),
		Source:     source,
		Keys:       change.Keys,
		OccurredAt: time.Now(),
	}
	if err := w.publisher.Publish(ctx, events.TopicWorkspaceChanged, evt); err != nil {
		w.logger.WarnContext(ctx, "failed to publish workspace change", "error", err)
	}
	return change, nil
}
