package watcher

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munazzamapp/munazzam-server/internal/domain"
	"github.com/munazzamapp/munazzam-server/internal/logger"
	"github.com/munazzamapp/munazzam-server/internal/service"
	"github.com/munazzamapp/munazzam-server/internal/store"
	"github.com/munazzamapp/munazzam-server/internal/store/sqlite"
)

// fakeImporter records calls and fails for file names in failOn.
type fakeImporter struct {
	mu     sync.Mutex
	calls  []string
	tags   [][]string
	failOn map[string]bool
}

func (f *fakeImporter) ImportFile(_ context.Context, filename string, r io.Reader, tagNames []string) (*domain.ImportResult, error) {
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, filename)
	f.tags = append(f.tags, tagNames)
	if f.failOn[filename] {
		return nil, errors.New("boom")
	}
	return &domain.ImportResult{Imported: 1}, nil
}

func runDropFolder(t *testing.T, dir string, tags []string, imp Importer) {
	t.Helper()

	d, err := NewDropFolder(dir, tags, imp, logger.Discard(), Options{SettleDelay: 50 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = d.Stop()
	})
}

func waitForFile(t *testing.T, path string) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 3*time.Second, 20*time.Millisecond, "expected %s", path)
}

func TestDropFolder_ImportsAndMovesFiles(t *testing.T) {
	dir := t.TempDir()
	imp := &fakeImporter{failOn: map[string]bool{"bad.csv": true}}
	runDropFolder(t, dir, []string{" drop ", "drop"}, imp)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.csv"), []byte("Name,Phone\nA,111\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.csv"), []byte("Name,Phone\nB,222\n"), 0o644))

	waitForFile(t, filepath.Join(dir, ProcessedDir, "good.csv"))
	waitForFile(t, filepath.Join(dir, FailedDir, "bad.csv"))

	assert.NoFileExists(t, filepath.Join(dir, "good.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "bad.csv"))

	imp.mu.Lock()
	defer imp.mu.Unlock()
	assert.ElementsMatch(t, []string{"good.csv", "bad.csv"}, imp.calls)
	assert.Equal(t, []string{"drop"}, imp.tags[0])
}

func TestDropFolder_ImportsWaitingFilesOnStart(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "waiting.csv"), []byte("Name,Phone\nA,111\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.csv"), []byte("Name,Phone\n"), 0o644))

	imp := &fakeImporter{}
	runDropFolder(t, dir, nil, imp)

	waitForFile(t, filepath.Join(dir, ProcessedDir, "waiting.csv"))
	assert.FileExists(t, filepath.Join(dir, ".hidden.csv"), "hidden files are left alone")
}

func TestDropFolder_NameCollision(t *testing.T) {
	dir := t.TempDir()
	d := &DropFolder{
		dir: dir,
		now: func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ProcessedDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProcessedDir, "c.csv"), []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.csv"), []byte("new"), 0o644))

	require.NoError(t, d.move(filepath.Join(dir, "c.csv"), ProcessedDir))

	assert.FileExists(t, filepath.Join(dir, ProcessedDir, "20260102-030405_c.csv"))
	assert.FileExists(t, filepath.Join(dir, ProcessedDir, "c.csv"))
}

func TestDropFolder_WithImportService(t *testing.T) {
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "drop.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	dir := t.TempDir()
	runDropFolder(t, dir, []string{"from-folder"}, service.NewImportService(st, logger.Discard()))

	csv := "Name,Phone,Source\nA,111,fair\nB,222,fair\nA dup,111,fair\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fair.csv"), []byte(csv), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644))

	waitForFile(t, filepath.Join(dir, ProcessedDir, "fair.csv"))
	waitForFile(t, filepath.Join(dir, FailedDir, "notes.txt"))

	n, err := st.CountAudience(context.Background(), store.AudienceQuery{Tags: []string{"from-folder"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
