package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dense-analysis/skinwarp/internal/model"
)

type fakeChecker struct {
	user *model.User
	err  error
}

func (checker *fakeChecker) CurrentUser(ctx context.Context) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return checker.user, checker.err
}

func TestInitWithoutToken(t *testing.T) {
	store := openTestStorage(t)
	notifier := NewNotifier()
	userStore := NewUserStore(store, notifier)

	require.NoError(t, userStore.Init(context.Background(), &fakeChecker{}))

	assert.Equal(t, AuthLoggedOut, userStore.State())
	assert.False(t, userStore.LoggedIn())
	assert.False(t, userStore.Loading())
	assert.Equal(t, 0, notifier.Len())
}

func TestInitRestoresSession(t *testing.T) {
	store := openTestStorage(t)
	notifier := NewNotifier()
	userStore := NewUserStore(store, notifier)
	user := &model.User{ID: "user-1", Username: "w0rp"}

	require.NoError(t, userStore.Login(user, "abc123"))

	// Simulate a reload with the same storage.
	restored := NewUserStore(store, notifier)
	require.NoError(t, restored.Init(context.Background(), &fakeChecker{user: user}))

	assert.Equal(t, AuthLoggedIn, restored.State())
	assert.True(t, restored.LoggedIn())
	assert.Equal(t, "abc123", restored.Token())
	assert.Equal(t, "w0rp", restored.User().Username)
}

func TestInitDowngradesOnFailedCheck(t *testing.T) {
	store := openTestStorage(t)
	notifier := NewNotifier()
	userStore := NewUserStore(store, notifier)
	require.NoError(t, userStore.Login(&model.User{ID: "user-1"}, "expired"))

	restored := NewUserStore(store, notifier)
	checker := &fakeChecker{err: errors.New("token expired")}

	// A failed check is not fatal.
	require.NoError(t, restored.Init(context.Background(), checker))

	assert.Equal(t, AuthLoggedOut, restored.State())
	assert.False(t, restored.LoggedIn())

	notification, ok := notifier.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "token expired", notification.Message)
	assert.Equal(t, SeverityError, notification.Severity)
}

func TestInitPassesCancellationThrough(t *testing.T) {
	store := openTestStorage(t)
	notifier := NewNotifier()
	userStore := NewUserStore(store, notifier)
	require.NoError(t, userStore.Login(&model.User{ID: "user-1"}, "abc123"))

	restored := NewUserStore(store, notifier)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := restored.Init(ctx, &fakeChecker{user: &model.User{}})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, notifier.Len())
}

func TestLogoutClearsTokenAndUser(t *testing.T) {
	store := openTestStorage(t)
	notifier := NewNotifier()
	userStore := NewUserStore(store, notifier)
	require.NoError(t, userStore.Login(&model.User{ID: "user-1"}, "abc123"))

	require.NoError(t, userStore.Logout())

	assert.Equal(t, "", userStore.Token())
	assert.Nil(t, userStore.User())
	assert.Equal(t, AuthLoggedOut, userStore.State())

	// The token is gone from storage as well.
	restored := NewUserStore(store, notifier)
	require.NoError(t, restored.Init(context.Background(), &fakeChecker{}))
	assert.Equal(t, AuthLoggedOut, restored.State())
}

func TestLoadingStates(t *testing.T) {
	store := openTestStorage(t)
	userStore := NewUserStore(store, NewNotifier())

	assert.True(t, userStore.Loading())

	require.NoError(t, userStore.Init(context.Background(), &fakeChecker{}))
	assert.False(t, userStore.Loading())
}
