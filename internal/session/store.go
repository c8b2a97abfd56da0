// Package session holds the authenticated session: the bearer token and the
// cached user profile, mirrored to durable storage so the session survives
// restarts. It implements the gateway's auth-failure hooks.
package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chequelab/carteira/internal/domain"
)

// Durable storage keys.
const (
	keyToken  = "token"
	keyUser   = "usuario"
	keyDevice = "expotoken"
)

// stateFileName is the session state file inside the state directory.
const stateFileName = "state.json"

// Store is the session store. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	token  string
	user   *domain.User
	device string

	kv     *KV
	logger zerolog.Logger
}

// NewStore opens the session store rooted at stateDir. An empty stateDir
// falls back to the user config directory. The device token is generated on
// first use and persisted, so the same identifier accompanies every request
// from this installation.
func NewStore(stateDir string, logger zerolog.Logger) (*Store, error) {
	if stateDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		stateDir = filepath.Join(base, "carteira")
	}

	kv, err := NewKV(filepath.Join(stateDir, stateFileName))
	if err != nil {
		return nil, err
	}

	s := &Store{kv: kv, logger: logger}

	device, ok, err := kv.Get(keyDevice)
	if err != nil {
		return nil, err
	}
	if !ok || device == "" {
		device = uuid.NewString()
		if err := kv.Set(keyDevice, device); err != nil {
			return nil, err
		}
	}
	s.device = device

	return s, nil
}

// Token returns the current bearer token, or empty when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// DeviceToken returns the persistent device identifier sent as the
// expotoken header.
func (s *Store) DeviceToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.device
}

// User returns the cached user profile, or nil when logged out.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Authenticated reports whether both a token and a user are present.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// SetSession stores a fresh token and user in memory and on disk.
func (s *Store) SetSession(token string, user *domain.User) error {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	if err := s.kv.Set(keyToken, token); err != nil {
		return err
	}
	return s.persistUser(user)
}

// Invalidate clears the session in memory and on disk. Called by the gateway
// on 401 and by explicit logout.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.kv.Delete(keyToken); err != nil {
		s.logger.Error().Err(err).Msg("failed to remove stored token")
	}
	if err := s.kv.Delete(keyUser); err != nil {
		s.logger.Error().Err(err).Msg("failed to remove stored user")
	}
}

// DowngradePermissions replaces the cached user's permission set with the
// server-corrected list attached to a 403 response. The token and the rest
// of the profile are kept.
func (s *Store) DowngradePermissions(perms []domain.Permission) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	if perms == nil {
		perms = []domain.Permission{}
	}
	s.user.Perms = perms
	user := s.user
	s.mu.Unlock()

	s.logger.Warn().Interface("permissoes", perms).Msg("session permissions downgraded by backend")
	if err := s.persistUser(user); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist downgraded user")
	}
}

// Restore loads a previously persisted session and revalidates it against
// the backend before trusting it. validate is expected to hit an
// authenticated heartbeat route through the gateway, which reads the token
// from this store. A failed revalidation clears the stored session.
func (s *Store) Restore(ctx context.Context, validate func(ctx context.Context) error) (bool, error) {
	token, hasToken, err := s.kv.Get(keyToken)
	if err != nil {
		return false, err
	}
	raw, hasUser, err := s.kv.Get(keyUser)
	if err != nil {
		return false, err
	}
	if !hasToken || !hasUser || token == "" {
		return false, nil
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.Invalidate()
		return false, nil
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	if err := validate(ctx); err != nil {
		s.Invalidate()
		return false, err
	}

	return true, nil
}

func (s *Store) persistUser(user *domain.User) error {
	if user == nil {
		return s.kv.Delete(keyUser)
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.kv.Set(keyUser, string(data))
}
