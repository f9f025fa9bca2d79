package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/vault/internal/auth/domain"
	secretsDomain "github.com/allisson/vault/internal/secrets/domain"
	"github.com/allisson/vault/internal/secrets/usecase/mocks"
)

const testIdentity = "AB12CD"

func TestRunPut(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Now().UTC()

	t.Run("text", func(t *testing.T) {
		mockUseCase := &mocks.MockSecretUseCase{}
		mockUseCase.On("Put", ctx, testIdentity, "db/prod", []byte("hunter2")).
			Return(&secretsDomain.Secret{Path: "db/prod", Version: 3, CreatedAt: now, UpdatedAt: now}, nil)

		var out bytes.Buffer
		err := RunPut(ctx, mockUseCase, logger, testIdentity, "db/prod", "hunter2", NoCAS, "text", IOTuple{Writer: &out})

		require.NoError(t, err)
		require.Equal(t, "Stored db/prod (version 3)\n", out.String())
		mockUseCase.AssertExpectations(t)
	})

	t.Run("stdin-json-with-cas", func(t *testing.T) {
		mockUseCase := &mocks.MockSecretUseCase{}
		mockUseCase.On("PutWithVersion", ctx, testIdentity, "db/prod", []byte("from stdin"), uint(0)).
			Return(&secretsDomain.Secret{Path: "db/prod", Version: 1, CreatedAt: now, UpdatedAt: now}, nil)

		var out bytes.Buffer
		err := RunPut(ctx, mockUseCase, logger, testIdentity, "db/prod", "-", 0, "json", IOTuple{
			Reader: strings.NewReader("from stdin\n"),
			Writer: &out,
		})

		require.NoError(t, err)
		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, "db/prod", result["path"])
		require.EqualValues(t, 1, result["version"])
		require.NotContains(t, out.String(), "from stdin")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("error", func(t *testing.T) {
		mockUseCase := &mocks.MockSecretUseCase{}
		mockUseCase.On("Put", ctx, testIdentity, "db/prod", mock.Anything).
			Return(nil, authDomain.ErrAccessDenied)

		err := RunPut(ctx, mockUseCase, logger, testIdentity, "db/prod", "x", NoCAS, "text", IOTuple{Writer: io.Discard})

		require.ErrorIs(t, err, authDomain.ErrAccessDenied)
	})
}

func TestRunGet(t *testing.T) {
	ctx := context.Background()

	t.Run("text", func(t *testing.T) {
		plaintext := []byte("hunter2")
		mockUseCase := &mocks.MockSecretUseCase{}
		mockUseCase.On("Get", ctx, testIdentity, "db/prod").
			Return(&secretsDomain.Secret{Path: "db/prod", Version: 1, Plaintext: plaintext}, nil)

		var out bytes.Buffer
		err := RunGet(ctx, mockUseCase, testIdentity, "db/prod", "text", IOTuple{Writer: &out})

		require.NoError(t, err)
		require.Equal(t, "hunter2\n", out.String())
		require.Equal(t, make([]byte, 7), plaintext, "plaintext must be zeroed")
	})

	t.Run("json", func(t *testing.T) {
		mockUseCase := &mocks.MockSecretUseCase{}
		mockUseCase.On("Get", ctx, testIdentity, "db/prod").
			Return(&secretsDomain.Secret{Path: "db/prod", Version: 2, Plaintext: []byte("hunter2")}, nil)

		var out bytes.Buffer
		err := RunGet(ctx, mockUseCase, testIdentity, "db/prod", "json", IOTuple{Writer: &out})

		require.NoError(t, err)
		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, "hunter2", result["secret"])
		require.EqualValues(t, 2, result["version"])
	})

	t.Run("not-found", func(t *testing.T) {
		mockUseCase := &mocks.MockSecretUseCase{}
		mockUseCase.On("Get", ctx, testIdentity, "db/none").Return(nil, secretsDomain.ErrSecretNotFound)

		err := RunGet(ctx, mockUseCase, testIdentity, "db/none", "text", IOTuple{Writer: io.Discard})

		require.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)
	})
}

func TestRunDelete(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mockUseCase := &mocks.MockSecretUseCase{}
	mockUseCase.On("Delete", ctx, testIdentity, "db/prod").Return(nil).Once()
	mockUseCase.On("Delete", ctx, testIdentity, "app/x").Return(errors.New("boom")).Once()

	var out bytes.Buffer
	require.NoError(t, RunDelete(ctx, mockUseCase, logger, testIdentity, "db/prod", IOTuple{Writer: &out}))
	require.Equal(t, "Deleted db/prod\n", out.String())

	require.Error(t, RunDelete(ctx, mockUseCase, logger, testIdentity, "app/x", IOTuple{Writer: io.Discard}))
	mockUseCase.AssertExpectations(t)
}

func TestRunListAndKeys(t *testing.T) {
	ctx := context.Background()

	t.Run("list-text", func(t *testing.T) {
		mockUseCase := &mocks.MockSecretUseCase{}
		mockUseCase.On("List", ctx, testIdentity, "db/").Return([]string{"db/dev", "db/prod"}, nil)

		var out bytes.Buffer
		require.NoError(t, RunList(ctx, mockUseCase, testIdentity, "db/", "text", IOTuple{Writer: &out}))
		require.Equal(t, "db/dev\ndb/prod\n", out.String())
	})

	t.Run("keys-json", func(t *testing.T) {
		mockUseCase := &mocks.MockSecretUseCase{}
		mockUseCase.On("ListKeys", ctx, testIdentity, "db").Return([]string{"dev", "prod/"}, nil)

		var out bytes.Buffer
		require.NoError(t, RunKeys(ctx, mockUseCase, testIdentity, "db", "json", IOTuple{Writer: &out}))

		var keys []string
		require.NoError(t, json.Unmarshal(out.Bytes(), &keys))
		if diff := cmp.Diff([]string{"dev", "prod/"}, keys); diff != "" {
			t.Errorf("keys mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty-json", func(t *testing.T) {
		mockUseCase := &mocks.MockSecretUseCase{}
		mockUseCase.On("List", ctx, testIdentity, "").Return(nil, nil)

		var out bytes.Buffer
		require.NoError(t, RunList(ctx, mockUseCase, testIdentity, "", "json", IOTuple{Writer: &out}))
		require.Equal(t, "[]\n", out.String())
	})

	t.Run("error", func(t *testing.T) {
		mockUseCase := &mocks.MockSecretUseCase{}
		mockUseCase.On("ListKeys", ctx, testIdentity, "db").Return(nil, errors.New("boom"))

		require.Error(t, RunKeys(ctx, mockUseCase, testIdentity, "db", "text", IOTuple{Writer: io.Discard}))
	})
}

func TestReadValue(t *testing.T) {
	value, err := readValue("literal", nil)
	require.NoError(t, err)
	require.Equal(t, []byte("literal"), value)

	value, err = readValue("-", strings.NewReader("line one\nline two\r\n"))
	require.NoError(t, err)
	require.Equal(t, []byte("line one\nline two"), value)

	_, err = readValue("-", nil)
	require.Error(t, err)
}
