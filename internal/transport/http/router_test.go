package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("ok when all dependencies respond", func(t *testing.T) {
		router := NewRouter(discardLogger(), nil, CombineHealth(
			func(ctx context.Context) error { return nil },
			func(ctx context.Context) error { return nil },
		))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"ok"`)
	})

	t.Run("unavailable when any dependency fails", func(t *testing.T) {
		router := NewRouter(discardLogger(), nil, CombineHealth(
			func(ctx context.Context) error { return nil },
			func(ctx context.Context) error { return errors.New("connection refused") },
		))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("nil checker reports ok", func(t *testing.T) {
		router := NewRouter(discardLogger(), nil, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCombineHealth(t *testing.T) {
	boom := errors.New("boom")
	ctx := context.Background()

	t.Run("skips nil entries", func(t *testing.T) {
		check := CombineHealth(nil, func(ctx context.Context) error { return nil }, nil)
		require.NoError(t, check(ctx))
	})

	t.Run("first failure wins", func(t *testing.T) {
		var secondRan bool
		check := CombineHealth(
			func(ctx context.Context) error { return boom },
			func(ctx context.Context) error { secondRan = true; return nil },
		)
		assert.ErrorIs(t, check(ctx), boom)
		assert.False(t, secondRan)
	})

	t.Run("no checks means healthy", func(t *testing.T) {
		require.NoError(t, CombineHealth()(ctx))
	})
}
