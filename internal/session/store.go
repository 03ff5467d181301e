// Package session holds the process-wide view of who is signed in.
//
// Every state change goes through resolveMu, so Resolve and the sign-out
// path are the only writers. Any number of readers may take snapshots or
// subscribe to transitions.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mhsenam/rentmio/internal/client"
	"github.com/mhsenam/rentmio/internal/dtos"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/utils"
)

type State string

const (
	Uninitialized State = "uninitialized"
	Initializing  State = "initializing"
	Authenticated State = "authenticated"
	Anonymous     State = "anonymous"
)

const DefaultProbeTimeout = 5 * time.Second

var (
	ErrOffline     = errors.New("network unreachable")
	ErrNotSignedIn = errors.New("not signed in")
	errEmptyMarker = errors.New("session marker has no tokens")
)

// Snapshot is an immutable copy of the session state. Profile may be nil
// while Authenticated when the profile could not be loaded; Err says why.
type Snapshot struct {
	State   State
	UserID  string
	Profile *models.UserProfile
	Err     string
}

// marker is the on-disk token pair. Its presence means a session probably
// exists, so Load can start in Initializing instead of Anonymous.
type marker struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Store struct {
	api          *client.Client
	markerPath   string
	probeTimeout time.Duration

	resolveMu sync.Mutex

	mu        sync.RWMutex
	snap      Snapshot
	listeners map[int]func(Snapshot)
	nextID    int
}

// NewStore persists every token change of api to markerPath.
func NewStore(api *client.Client, markerPath string) *Store {
	s := &Store{
		api:          api,
		markerPath:   markerPath,
		probeTimeout: DefaultProbeTimeout,
		snap:         Snapshot{State: Uninitialized},
		listeners:    map[int]func(Snapshot){},
	}
	api.OnTokens(s.persist)
	return s
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers fn for every later transition and returns its
// cancel function.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// transition must be called with resolveMu held.
func (s *Store) transition(next Snapshot) {
	s.mu.Lock()
	s.snap = next
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}

// Load reads the marker left by a previous run. A usable marker moves the
// store to Initializing; a corrupt one is removed.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.markerPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session marker: %w", err)
	}

	var m marker
	if err := json.Unmarshal(data, &m); err != nil || m.AccessToken == "" || m.RefreshToken == "" {
		utils.Logger.WithError(errors.Join(err, errEmptyMarker)).Warn("discarding unreadable session marker")
		_ = os.Remove(s.markerPath)
		return nil
	}

	s.resolveMu.Lock()
	defer s.resolveMu.Unlock()
	s.api.SetTokens(m.AccessToken, m.RefreshToken)
	s.transition(Snapshot{State: Initializing})
	return nil
}

func (s *Store) persist(accessToken, refreshToken string) {
	if accessToken == "" && refreshToken == "" {
		if err := os.Remove(s.markerPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			utils.Logger.WithError(err).Warn("failed to remove session marker")
		}
		return
	}

	data, err := json.Marshal(marker{AccessToken: accessToken, RefreshToken: refreshToken})
	if err == nil {
		if err = os.MkdirAll(filepath.Dir(s.markerPath), 0o700); err == nil {
			err = os.WriteFile(s.markerPath, data, 0o600)
		}
	}
	if err != nil {
		utils.Logger.WithError(err).Warn("failed to write session marker")
	}
}

// probe reports whether the API answers at all. An error status still
// means the network is up.
func (s *Store) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	err := s.api.Health(ctx)
	var apiErr *client.APIError
	if err == nil || errors.As(err, &apiErr) {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrOffline, err)
}

// Resolve asks the server for the current session and moves to
// Authenticated or Anonymous. When the network is down the state is left
// as it is and ErrOffline is returned.
func (s *Store) Resolve(ctx context.Context) error {
	s.resolveMu.Lock()
	defer s.resolveMu.Unlock()
	return s.resolveLocked(ctx)
}

func (s *Store) resolveLocked(ctx context.Context) error {
	if err := s.probe(ctx); err != nil {
		return err
	}

	resp, err := s.api.Session(ctx)
	if client.IsStatus(err, http.StatusUnauthorized) {
		// the stored tokens are dead; forget them
		s.api.SetTokens("", "")
		s.transition(Snapshot{State: Anonymous})
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve session: %w", err)
	}

	if resp.State != dtos.SessionAuthenticated {
		if access, _ := s.api.Tokens(); access != "" {
			s.api.SetTokens("", "")
		}
		s.transition(Snapshot{State: Anonymous})
		return nil
	}
	s.transition(Snapshot{
		State:   Authenticated,
		UserID:  resp.UserID,
		Profile: resp.Profile,
		Err:     resp.Error,
	})
	return nil
}

// The sign-in family stores the new token pair (through the client's
// token listener) and lets Resolve drive the transition.

func (s *Store) SignUp(ctx context.Context, email, password, displayName string) error {
	if _, err := s.api.SignUp(ctx, email, password, displayName); err != nil {
		return err
	}
	return s.Resolve(ctx)
}

func (s *Store) SignIn(ctx context.Context, email, password string) error {
	if _, err := s.api.Login(ctx, email, password); err != nil {
		return err
	}
	return s.Resolve(ctx)
}

func (s *Store) SignInWithGoogle(ctx context.Context, idToken string) error {
	if _, err := s.api.SignInWithGoogle(ctx, idToken); err != nil {
		return err
	}
	return s.Resolve(ctx)
}

// SignOut revokes the refresh token when possible. The local session is
// dropped regardless.
func (s *Store) SignOut(ctx context.Context) error {
	s.resolveMu.Lock()
	defer s.resolveMu.Unlock()

	err := s.api.Logout(ctx)
	if err != nil {
		utils.Logger.WithError(err).Warn("server-side sign-out failed")
	}
	s.transition(Snapshot{State: Anonymous})
	return err
}

func (s *Store) RequestPasswordReset(ctx context.Context, email string) error {
	return s.api.RequestPasswordReset(ctx, email)
}

// UpdateProfile patches the profile and merges the server's copy into the
// snapshot.
func (s *Store) UpdateProfile(ctx context.Context, u client.ProfileUpdate) (*models.UserProfile, error) {
	if s.Snapshot().State != Authenticated {
		return nil, ErrNotSignedIn
	}
	p, err := s.api.UpdateProfile(ctx, u)
	if err != nil {
		return nil, err
	}

	s.resolveMu.Lock()
	defer s.resolveMu.Unlock()
	if cur := s.Snapshot(); cur.State == Authenticated {
		cur.Profile = p
		cur.Err = ""
		s.transition(cur)
	}
	return p, nil
}
