package store

import (
	"context"
	"errors"
	"sync"

	"github.com/dense-analysis/skinwarp/internal/model"
	"github.com/dense-analysis/skinwarp/internal/storage"
)

const tokenKey = "token"

// AuthState tracks where session restoration stands. Guarded pages wait
// until the state leaves INIT and PENDING.
type AuthState int

const (
	AuthInit AuthState = iota
	AuthPending
	AuthLoggedIn
	AuthLoggedOut
)

// AuthChecker validates a restored session by fetching the user the
// stored token belongs to.
type AuthChecker interface {
	CurrentUser(ctx context.Context) (*model.User, error)
}

// UserStore holds the session: a persisted token, and the in-memory user
// profile and auth state derived from it.
type UserStore struct {
	persisted *Persisted
	notifier  *Notifier

	mutex sync.RWMutex
	user  *model.User
	state AuthState
}

// NewUserStore creates the user store. Notifications for failed session
// restoration go to the notifier.
func NewUserStore(store *storage.Store, notifier *Notifier) *UserStore {
	return &UserStore{
		persisted: NewPersisted(store, []string{tokenKey}, []string{tokenKey}, nil),
		notifier:  notifier,
		state:     AuthInit,
	}
}

// Init restores the session: it loads the persisted token and, when one
// is present, validates it against the auth endpoint. A failed check
// downgrades to logged out and queues a notification rather than
// failing; only storage errors and cancellation are returned. Callers
// must wait for Init before reading auth state.
func (userStore *UserStore) Init(ctx context.Context, checker AuthChecker) error {
	if err := userStore.persisted.Load(); err != nil {
		return err
	}

	if userStore.Token() == "" {
		userStore.setState(AuthLoggedOut)

		return nil
	}

	userStore.setState(AuthPending)

	user, err := checker.CurrentUser(ctx)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		userStore.notifier.Error(err.Error())
		userStore.setState(AuthLoggedOut)

		return nil
	}

	userStore.setUser(user)
	userStore.setState(AuthLoggedIn)

	return nil
}

// Login stores the session token and user together.
func (userStore *UserStore) Login(user *model.User, token string) error {
	if err := userStore.persisted.Set(tokenKey, token); err != nil {
		return err
	}

	userStore.setUser(user)
	userStore.setState(AuthLoggedIn)

	return nil
}

// Logout clears the session token and user together.
func (userStore *UserStore) Logout() error {
	if err := userStore.persisted.Remove(tokenKey); err != nil {
		return err
	}

	userStore.setUser(nil)
	userStore.setState(AuthLoggedOut)

	return nil
}

// Token returns the persisted session token, or "" when logged out.
func (userStore *UserStore) Token() string {
	return userStore.persisted.GetString(tokenKey)
}

// User returns the current user profile, or nil.
func (userStore *UserStore) User() *model.User {
	userStore.mutex.RLock()
	defer userStore.mutex.RUnlock()

	return userStore.user
}

// State returns the current auth state.
func (userStore *UserStore) State() AuthState {
	userStore.mutex.RLock()
	defer userStore.mutex.RUnlock()

	return userStore.state
}

// LoggedIn reports whether a user profile is loaded.
func (userStore *UserStore) LoggedIn() bool {
	return userStore.User() != nil
}

// Loading reports whether session restoration is still in progress.
func (userStore *UserStore) Loading() bool {
	state := userStore.State()

	return state == AuthInit || state == AuthPending
}

func (userStore *UserStore) setUser(user *model.User) {
	userStore.mutex.Lock()
	defer userStore.mutex.Unlock()

	userStore.user = user
}

func (userStore *UserStore) setState(state AuthState) {
	userStore.mutex.Lock()
	defer userStore.mutex.Unlock()

	userStore.state = state
}
