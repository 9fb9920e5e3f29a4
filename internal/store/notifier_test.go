package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierIsFIFO(t *testing.T) {
	notifier := NewNotifier()

	notifier.Error("first")
	notifier.Success("second")
	notifier.Error("first")

	require.Equal(t, 3, notifier.Len())

	notification, ok := notifier.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "first", notification.Message)
	assert.Equal(t, SeverityError, notification.Severity)

	notification, ok = notifier.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "second", notification.Message)
	assert.Equal(t, SeveritySuccess, notification.Severity)

	// Duplicates are kept in arrival order.
	notification, ok = notifier.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "first", notification.Message)

	_, ok = notifier.Dequeue()
	assert.False(t, ok)
}

func TestNotifierClear(t *testing.T) {
	notifier := NewNotifier()

	notifier.Error("gone")
	notifier.Clear()

	assert.Equal(t, 0, notifier.Len())

	_, ok := notifier.Dequeue()
	assert.False(t, ok)
}

func TestNotifierEmptyErrorMessage(t *testing.T) {
	notifier := NewNotifier()

	notifier.Error("")

	notification, ok := notifier.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "unknown error", notification.Message)
}
