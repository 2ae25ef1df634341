package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munazzamapp/munazzam-server/internal/config"
	"github.com/munazzamapp/munazzam-server/internal/di/providers"
	"github.com/munazzamapp/munazzam-server/internal/service"
)

func testFlags(t *testing.T) config.Flags {
	t.Helper()
	t.Setenv("IMPORT_WATCH_DIR", "")
	dir := t.TempDir()
	return config.Flags{
		EnvFile:  filepath.Join(dir, "missing.env"),
		DataPath: dir,
		LogLevel: "error",
	}
}

func TestContainer_ServicesShareStore(t *testing.T) {
	injector := NewContainer(testFlags(t))
	t.Cleanup(func() { _ = injector.Shutdown() })

	tags, err := do.Invoke[*service.TagService](injector)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = tags.CreateTag(ctx, service.TagRequest{Name: "VIP"})
	require.NoError(t, err)

	contacts := do.MustInvoke[*service.ContactService](injector)
	_, err = contacts.CreateContact(ctx, service.CreateContactRequest{
		Name:  "Ahmed",
		Phone: "0501234567",
		Tags:  []string{"VIP"},
	})
	require.NoError(t, err)

	listed, err := tags.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "VIP", listed[0].Name)
	assert.Equal(t, 1, listed[0].ContactCount)
}

func TestContainer_DropFolderDisabledByDefault(t *testing.T) {
	injector := NewContainer(testFlags(t))
	t.Cleanup(func() { _ = injector.Shutdown() })

	handle, err := do.Invoke[*providers.DropFolderHandle](injector)
	require.NoError(t, err)
	assert.Nil(t, handle.DropFolder)
	assert.NoError(t, handle.Shutdown())
}

func TestContainer_InvalidConfig(t *testing.T) {
	flags := testFlags(t)
	flags.ExportFormat = "pdf"

	injector := NewContainer(flags)
	t.Cleanup(func() { _ = injector.Shutdown() })

	_, err := do.Invoke[*config.Config](injector)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid export format")

	_, err = do.Invoke[*service.TagService](injector)
	assert.Error(t, err)
}
