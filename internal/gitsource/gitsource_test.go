package gitsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitFile(t *testing.T, repoDir, name, content string) {
	t.Helper()
	repo, err := git.PlainOpen(repoDir)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, name), []byte(content), 0o644))
	_, err = wt.Add(name)
	require.NoError(t, err)
	_, err = wt.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func TestSync(t *testing.T) {
	upstream := t.TempDir()
	_, err := git.PlainInit(upstream, false)
	require.NoError(t, err)
	commitFile(t, upstream, "deck.yaml", "parent: One\n")

	checkout := filepath.Join(t.TempDir(), "checkout")
	ctx := context.Background()

	t.Run("clones when missing", func(t *testing.T) {
		require.NoError(t, Sync(ctx, upstream, checkout))
		data, err := os.ReadFile(filepath.Join(checkout, "deck.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "parent: One\n", string(data))
	})

	t.Run("up to date pull is not an error", func(t *testing.T) {
		assert.NoError(t, Sync(ctx, upstream, checkout))
	})

	t.Run("pulls new commits", func(t *testing.T) {
		commitFile(t, upstream, "deck.yaml", "parent: Two\n")
		require.NoError(t, Sync(ctx, upstream, checkout))
		data, err := os.ReadFile(filepath.Join(checkout, "deck.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "parent: Two\n", string(data))
	})
}

func TestSyncNotARepository(t *testing.T) {
	assert.Error(t, Sync(context.Background(), "unused", t.TempDir()))
}
