package services

import (
	"canteen-storefront/libs"
	"canteen-storefront/models"
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrGuestDisabled      = errors.New("guest access is disabled")
)

// AuthBackend is the slice of the remote API the auth container needs.
type AuthBackend interface {
	Login(ctx context.Context, creds models.Credentials) (string, error)
	CurrentUser(ctx context.Context, token string) (*models.User, error)
	Logout(ctx context.Context, token string) error
}

// TokenStore is the durable, per-device credential store.
type TokenStore interface {
	GetToken(ctx context.Context, deviceID string) (string, error)
	SaveToken(ctx context.Context, deviceID, token string) error
	DeleteToken(ctx context.Context, deviceID string) error
	// CompareAndDeleteToken deletes the device's token only while it still
	// equals token.
	CompareAndDeleteToken(ctx context.Context, deviceID, token string) error
}

type AuthOptions struct {
	AllowGuest    bool
	LogoutTimeout time.Duration
}

// AuthService owns one Auth container per device.
type AuthService struct {
	backend AuthBackend
	tokens  TokenStore
	opts    AuthOptions
	logger  *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Auth
}

func NewAuthService(backend AuthBackend, tokens TokenStore, opts AuthOptions, logger *zap.Logger) *AuthService {
	if opts.LogoutTimeout <= 0 {
		opts.LogoutTimeout = 5 * time.Second
	}
	return &AuthService{
		backend:  backend,
		tokens:   tokens,
		opts:     opts,
		logger:   logger,
		sessions: map[string]*Auth{},
	}
}

// Session returns the container for a device, creating and resolving it on
// first use. Requests arriving while the creator is still resolving see
// IsLoading.
func (s *AuthService) Session(ctx context.Context, deviceID string) *Auth {
	s.mu.Lock()
	if a, ok := s.sessions[deviceID]; ok {
		s.mu.Unlock()
		a.touch()
		return a
	}

	a := &Auth{
		deviceID: deviceID,
		loading:  true,
		backend:  s.backend,
		tokens:   s.tokens,
		opts:     s.opts,
		logger:   s.logger.With(zap.String("device_id", deviceID)),
		lastSeen: time.Now(),
	}
	s.sessions[deviceID] = a
	s.mu.Unlock()

	a.Resolve(ctx)
	return a
}

// SignIn exchanges credentials for an API token and logs the device in with
// it. Only a rejected credential pair is reported as an error; problems while
// fetching the profile leave the container unauthenticated.
func (s *AuthService) SignIn(ctx context.Context, deviceID string, creds models.Credentials) (models.Session, error) {
	a := s.Session(ctx, deviceID)

	token, err := s.backend.Login(ctx, creds)
	if err != nil {
		var apiErr *libs.APIError
		if errors.Is(err, libs.ErrUnauthorized) || (errors.As(err, &apiErr) && apiErr.Status == 400) {
			return a.Snapshot(), ErrInvalidCredentials
		}
		return a.Snapshot(), err
	}
	return a.Login(ctx, token), nil
}

// Sweep drops containers that have been idle for longer than idle. Stored
// tokens survive and are resolved again on the next request.
func (s *AuthService) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, a := range s.sessions {
		if a.idleSince(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *AuthService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Auth holds the credential and resolved profile of one device.
type Auth struct {
	deviceID string
	backend  AuthBackend
	tokens   TokenStore
	opts     AuthOptions
	logger   *zap.Logger

	mu       sync.Mutex
	token    string
	user     *models.User
	loading  bool
	guest    bool
	gen      uint64
	lastSeen time.Time
}

func (a *Auth) Snapshot() models.Session {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := models.Session{
		Token:     a.token,
		IsLoading: a.loading,
		IsGuest:   a.guest,
	}
	if a.user != nil {
		u := *a.user
		s.User = &u
	}
	return s
}

// Resolve restores the device's session from the durable store.
func (a *Auth) Resolve(ctx context.Context) models.Session {
	token, err := a.tokens.GetToken(context.WithoutCancel(ctx), a.deviceID)
	if err != nil {
		a.logger.Error("failed to read stored token", zap.Error(err))
	}

	switch token {
	case "":
		a.mu.Lock()
		a.token, a.user, a.guest, a.loading = "", nil, false, false
		a.mu.Unlock()
		return a.Snapshot()
	case models.GuestToken:
		if err := a.LoginAsGuest(ctx); err != nil {
			a.logger.Info("stored guest session rejected", zap.Error(err))
			a.clear(ctx)
		}
		return a.Snapshot()
	default:
		return a.validate(ctx, token)
	}
}

// Login makes token the device's credential and validates it against the
// backend. The outcome is observed through the returned snapshot.
func (a *Auth) Login(ctx context.Context, token string) models.Session {
	if err := a.tokens.SaveToken(ctx, a.deviceID, token); err != nil {
		a.logger.Error("failed to store token", zap.Error(err))
	}
	return a.validate(ctx, token)
}

func (a *Auth) validate(ctx context.Context, token string) models.Session {
	a.mu.Lock()
	a.gen++
	gen := a.gen
	a.token, a.user, a.guest, a.loading = token, nil, false, true
	a.mu.Unlock()

	// A client disconnect must not be mistaken for a rejected token.
	user, err := a.backend.CurrentUser(context.WithoutCancel(ctx), token)

	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return a.Snapshot()
	}
	if err != nil {
		a.token, a.user, a.loading = "", nil, false
		a.gen++
		a.mu.Unlock()

		a.logger.Warn("failed to fetch user, clearing session", zap.Error(err))
		if err := a.tokens.CompareAndDeleteToken(context.WithoutCancel(ctx), a.deviceID, token); err != nil {
			a.logger.Error("failed to delete token", zap.Error(err))
		}
		return a.Snapshot()
	}
	a.user = user
	a.loading = false
	a.mu.Unlock()

	a.logger.Info("session resolved", zap.Int("user_id", user.ID), zap.String("role", string(user.Role())))
	return a.Snapshot()
}

// LoginAsGuest attaches the fixed guest profile to the sentinel token. The
// backend is never consulted.
func (a *Auth) LoginAsGuest(ctx context.Context) error {
	if !a.opts.AllowGuest {
		return ErrGuestDisabled
	}

	guest := models.GuestUser()

	a.mu.Lock()
	a.gen++
	a.token, a.user, a.guest, a.loading = models.GuestToken, &guest, true, false
	a.mu.Unlock()

	if err := a.tokens.SaveToken(ctx, a.deviceID, models.GuestToken); err != nil {
		a.logger.Error("failed to store guest token", zap.Error(err))
	}
	return nil
}

// Logout always clears the local session. The backend is notified in the
// background and its answer is ignored.
func (a *Auth) Logout(ctx context.Context) {
	a.mu.Lock()
	token, guest := a.token, a.guest
	a.mu.Unlock()

	a.clear(ctx)

	if token == "" || guest {
		return
	}
	go func() {
		logoutCtx, cancel := context.WithTimeout(context.Background(), a.opts.LogoutTimeout)
		defer cancel()
		if err := a.backend.Logout(logoutCtx, token); err != nil {
			a.logger.Warn("backend logout failed", zap.Error(err))
		}
	}()
}

// Invalidate is called when the backend answers 401 to an authenticated
// call: the stored credential is no longer usable.
func (a *Auth) Invalidate(ctx context.Context) {
	a.logger.Info("credential rejected by backend")
	a.clear(ctx)
}

func (a *Auth) clear(ctx context.Context) {
	a.mu.Lock()
	a.gen++
	a.token, a.user, a.guest, a.loading = "", nil, false, false
	a.mu.Unlock()

	if err := a.tokens.DeleteToken(ctx, a.deviceID); err != nil {
		a.logger.Error("failed to delete token", zap.Error(err))
	}
}

func (a *Auth) touch() {
	a.mu.Lock()
	a.lastSeen = time.Now()
	a.mu.Unlock()
}

func (a *Auth) idleSince(cutoff time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.loading && a.lastSeen.Before(cutoff)
}
