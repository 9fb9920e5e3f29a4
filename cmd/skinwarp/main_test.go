package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dense-analysis/skinwarp/internal/env"
	"github.com/dense-analysis/skinwarp/internal/query"
	"github.com/dense-analysis/skinwarp/internal/store"
)

func setupTestApp(t *testing.T) *app {
	t.Helper()

	config := &env.Config{
		APIURL:         "http://localhost:0/api",
		StoragePath:    filepath.Join(t.TempDir(), "skinwarp.db"),
		CacheStaleTime: time.Minute,
		CacheGCTime:    5 * time.Minute,
	}

	application, cleanup, err := setup(context.Background(), config)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	return application
}

func TestQueryErrorsReachTheNotifier(t *testing.T) {
	application := setupTestApp(t)

	fetchErr := errors.New("items are unavailable")
	_, err := query.Fetch(context.Background(), application.cache, query.Key("items"),
		func(ctx context.Context) (int, error) {
			return 0, fetchErr
		})

	require.Equal(t, fetchErr, err)
	assert.Equal(t, fetchErr, application.queryErr)

	notification, ok := application.notifier.Dequeue()
	require.True(t, ok)
	assert.Equal(t, store.SeverityError, notification.Severity)
	assert.Equal(t, "items are unavailable", notification.Message)

	// Successful fetches queue nothing.
	value, err := query.Fetch(context.Background(), application.cache, query.Key("items", "2"),
		func(ctx context.Context) (int, error) {
			return 3, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 3, value)
	assert.Equal(t, 0, application.notifier.Len())
}
