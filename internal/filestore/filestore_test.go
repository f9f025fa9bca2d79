package filestore

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/vault/internal/errors"
)

func TestStore_View_MissingFile(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "missing.env"), nil)

	err := store.View(func(entries map[string]string) error {
		assert.Empty(t, entries)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_Update(t *testing.T) {
	t.Run("Success_CreatesParentDirectories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "store.env")
		store := New(path, nil)

		err := store.Update(func(entries map[string]string) (bool, error) {
			entries["secret.aa.version"] = "1"
			entries["master.salt"] = "c2FsdA=="
			return true, nil
		})
		require.NoError(t, err)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "master.salt=\"c2FsdA==\"\nsecret.aa.version=\"1\"\n", string(content))
	})

	t.Run("Success_NoChangeSkipsWrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store.env")
		store := New(path, nil)

		err := store.Update(func(entries map[string]string) (bool, error) {
			entries["a"] = "1"
			return false, nil
		})
		require.NoError(t, err)

		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("Error_CallbackFails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store.env")
		store := New(path, nil)

		err := store.Update(func(entries map[string]string) (bool, error) {
			return true, assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)

		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("Error_InvalidKey", func(t *testing.T) {
		store := New(filepath.Join(t.TempDir(), "store.env"), nil)

		err := store.Update(func(entries map[string]string) (bool, error) {
			entries["bad-key"] = "1"
			return true, nil
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Success_NoTemporaryFilesLeft", func(t *testing.T) {
		dir := t.TempDir()
		store := New(filepath.Join(dir, "store.env"), nil)

		for i := 0; i < 3; i++ {
			err := store.Update(func(entries map[string]string) (bool, error) {
				entries["counter"] = string(rune('0' + i))
				return true, nil
			})
			require.NoError(t, err)
		}

		files, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "store.env", files[0].Name())
	})
}

func TestStore_RoundTrip(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "store.env"), nil)
	values := map[string]string{
		"numeric":   "0012",
		"base64":    "q83vASNFZ4mrzQ==",
		"timestamp": "2026-10-14T10:00:00.123456789Z",
		"quoted":    `say "hi" \ $HOME`,
		"multiline": "a\nb",
	}

	err := store.Update(func(entries map[string]string) (bool, error) {
		for k, v := range values {
			entries[k] = v
		}
		return true, nil
	})
	require.NoError(t, err)

	err = store.View(func(entries map[string]string) error {
		assert.Equal(t, values, entries)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_MalformedLines(t *testing.T) {
	const valid = "master.salt=\"c2FsdA==\"\n"
	const broken = "junk-line\nkey=\"unterminated\n"

	newStore := func(t *testing.T) (*Store, string, *bytes.Buffer) {
		t.Helper()
		path := filepath.Join(t.TempDir(), "store.env")
		require.NoError(t, os.WriteFile(path, []byte(valid+broken+"# operator note\n\n"), 0o600))

		var logs bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&logs, nil))
		return New(path, logger), path, &logs
	}

	t.Run("Success_ViewSkipsBadLines", func(t *testing.T) {
		store, _, logs := newStore(t)

		err := store.View(func(entries map[string]string) error {
			assert.Equal(t, map[string]string{"master.salt": "c2FsdA=="}, entries)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(logs.String(), "skipping malformed store line"))
		assert.Contains(t, logs.String(), `"line":2`)
	})

	t.Run("Success_UpdateKeepsBadLinesVerbatim", func(t *testing.T) {
		store, path, _ := newStore(t)

		err := store.Update(func(entries map[string]string) (bool, error) {
			entries["secret.aa.version"] = "1"
			return true, nil
		})
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, valid+"secret.aa.version=\"1\"\n"+broken, string(content))

		err = store.View(func(entries map[string]string) error {
			assert.Len(t, entries, 2)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "store.env"), nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.Update(func(entries map[string]string) (bool, error) {
				entries["key_"+string(rune('a'+i))] = "v"
				return true, nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	err := store.View(func(entries map[string]string) error {
		assert.Len(t, entries, 20)
		return nil
	})
	require.NoError(t, err)
}

func TestValidKey(t *testing.T) {
	assert.True(t, ValidKey("secret.6462.version"))
	assert.True(t, ValidKey("master.canary_nonce"))
	assert.False(t, ValidKey(""))
	assert.False(t, ValidKey("a-b"))
	assert.False(t, ValidKey("a b"))
	assert.False(t, ValidKey("exported.key"))
}
