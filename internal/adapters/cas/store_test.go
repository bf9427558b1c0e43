package cas_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tandem/internal/adapters/cas"
	"go.trai.ch/tandem/internal/core/domain"
)

func TestStore_PutGet(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := cas.NewStore()

	info := domain.BuildInfo{
		Image:      domain.RoleBackend,
		Stage:      domain.StageInstallDependencies,
		InputHash:  "abc",
		OutputHash: "def",
		BuildID:    "b-1",
		Timestamp:  time.Now().Truncate(time.Second),
	}

	t.Run("put and get", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, store.Put(root, info))

		got, err := store.Get(root, domain.BuildInfoKey(domain.RoleBackend, domain.StageInstallDependencies))
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, info.Timestamp.Equal(got.Timestamp))
		got.Timestamp = info.Timestamp
		assert.Equal(t, info, *got)
	})

	t.Run("get missing", func(t *testing.T) {
		t.Parallel()
		got, err := store.Get(root, "frontend/export")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestStore_GetCorrupt(t *testing.T) {
	root := t.TempDir()
	store := cas.NewStore()
	info := domain.BuildInfo{Image: domain.RoleFrontend, Stage: domain.StageExport}
	require.NoError(t, store.Put(root, info))

	entries, err := os.ReadDir(filepath.Join(root, domain.DefaultStorePath()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, os.WriteFile(filepath.Join(root, domain.DefaultStorePath(), entries[0].Name()),
		[]byte("{not json"), domain.FilePerm))

	_, err = store.Get(root, info.Key())
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrStoreUnmarshalFailed.Error())
}

func TestStore_ConcurrentRoles(t *testing.T) {
	root := t.TempDir()
	store := cas.NewStore()

	var wg sync.WaitGroup
	for _, role := range domain.Roles() {
		for _, stage := range domain.PipelineOrder() {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, store.Put(root, domain.BuildInfo{Image: role, Stage: stage, OutputHash: string(role)}))
			}()
		}
	}
	wg.Wait()

	for _, role := range domain.Roles() {
		for _, stage := range domain.PipelineOrder() {
			got, err := store.Get(root, domain.BuildInfoKey(role, stage))
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, string(role), got.OutputHash)
		}
	}

	entries, err := os.ReadDir(filepath.Join(root, domain.DefaultStorePath()))
	require.NoError(t, err)
	assert.Len(t, entries, len(domain.Roles())*len(domain.PipelineOrder()))
}
