package workspace

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"idres/internal/events"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestWatcher(t *testing.T) (*Watcher, *EnvStore, *events.Recorder) {
	t.Helper()
	store := NewEnvStore(filepath.Join(t.TempDir(), ".env"))
	rec := events.NewRecorder()
	w, err := NewWatcher(store,
		WithWatcherLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithWatcherPublisher(rec),
		WithDebounce(20*time.Millisecond),
	)
	require.NoError(t, err)
	return w, store, rec
}

func TestWatcher_NotifiesOnFileChange(t *testing.T) {
	w, store, rec := newTestWatcher(t)

	changes := make(chan Change, 4)
	w.Subscribe(func(_ context.Context, c Change) { changes <- c })

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, w.Run(ctx))
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	// Give the watcher time to register the directory.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(store.Path(), []byte("SEGMENT_UNIFY_SPACE_SLUG=prod\nSEGMENT_WORKSPACE_SLUG=acme\n"), 0o600))

	select {
	case c := <-changes:
		assert.Equal(t, SourceFile, c.Source)
		assert.ElementsMatch(t, []string{KeyWorkspaceSlug, KeySpaceSlug}, c.Keys)
		assert.Equal(t, "prod", w.Current().SpaceSlug)
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification")
	}

	require.Eventually(t, func() bool { return len(rec.Events()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, events.TopicWorkspaceChanged, rec.Events()[0].Topic)
}

func TestWatcher_ReloadWithoutChangeIsQuiet(t *testing.T) {
	w, _, rec := newTestWatcher(t)
	called := false
	w.Subscribe(func(context.Context, Change) { called = true })

	change, err := w.Reload(context.Background(), SourceAPI)
	require.NoError(t, err)
	assert.Empty(t, change.Keys)
	assert.False(t, called)
	assert.Empty(t, rec.Events())
}

func TestService_UpdateNotifiesImmediately(t *testing.T) {
	w, store, rec := newTestWatcher(t)
	svc := NewService(store, w)

	var got []Change
	w.Subscribe(func(_ context.Context, c Change) { got = append(got, c) })

	token := "tok_secret"
	settings, err := svc.Update(context.Background(), Update{AccessToken: &token})
	require.NoError(t, err)
	assert.Equal(t, "tok_secret", settings.AccessToken)
	assert.Equal(t, "tok_secret", svc.Settings().AccessToken)

	require.Len(t, got, 1)
	assert.Equal(t, SourceAPI, got[0].Source)
	assert.Contains(t, got[0].Keys, KeyAccessToken)
	assert.Len(t, rec.Events(), 1)
}
