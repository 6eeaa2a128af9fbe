package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dimitrije/teampulse/internal/api"
	"github.com/dimitrije/teampulse/internal/store"
	"github.com/dimitrije/teampulse/pkg/dto"
	"golang.org/x/oauth2"
)

// Reason classifies a session transition so consumers can decide what to do
// (navigate to the dashboard, back to login, print an expiry notice).
type Reason string

const (
	ReasonBootstrap  Reason = "bootstrap"
	ReasonLogin      Reason = "login"
	ReasonRegistered Reason = "registered"
	ReasonLogout     Reason = "logout"
	ReasonExpired    Reason = "expired"
)

// State is the current authentication state. User is non-nil only when Token
// is non-empty, never the reverse.
type State struct {
	User    *dto.User
	Token   string
	Loading bool
}

func (s State) Authenticated() bool {
	return s.User != nil
}

// Event is delivered to OnChange listeners after every session transition.
type Event struct {
	State  State
	Reason Reason
	// Notice carries a user-facing message, set only for expiry.
	Notice string
}

// Manager owns the session: the token, the resolved user, and the persisted
// copy of the token. It is the only writer of the token; the fetch client
// reads it through the token source and reports 401s back through the
// unauthorized handler.
type Manager struct {
	client *api.Client
	store  store.TokenStore

	passwordGrant *oauth2.Config

	mu        sync.RWMutex
	user      *dto.User
	token     string
	loading   bool
	listeners []func(Event)
}

func NewManager(baseURL string, tokenStore store.TokenStore) *Manager {
	m := &Manager{
		store:   tokenStore,
		loading: true,
		// /auth/login is an OAuth2 resource-owner password grant: it takes
		// form-encoded credentials and answers {access_token, token_type}.
		// This is the server's contract, not ours to change.
		passwordGrant: &oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL:  baseURL + "/auth/login",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}

	client := api.NewClient(baseURL)
	client.SetTokenSource(m.currentToken)
	client.SetUnauthorizedHandler(m.expire)
	m.client = client

	return m
}

// Client returns the fetch client wired to this session.
func (m *Manager) Client() *api.Client {
	return m.client
}

// Current returns a copy of the session state.
func (m *Manager) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return State{User: m.user, Token: m.token, Loading: m.loading}
}

// OnChange registers a listener invoked after every session transition.
func (m *Manager) OnChange(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Bootstrap restores a persisted session. If a token is stored but the
// profile cannot be resolved with it, the session is fully cleared so a
// token never survives without an identity. Loading flips to false exactly
// once, after bootstrap completes either way.
func (m *Manager) Bootstrap(ctx context.Context) error {
	token, err := m.store.Load(ctx)
	if err != nil {
		m.finishBootstrap()
		return fmt.Errorf("load persisted token: %w", err)
	}

	if token == "" {
		m.finishBootstrap()
		return nil
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	user, err := m.client.Me(ctx)
	if err != nil {
		// A 401 already cleared everything through the expiry hook; any
		// other failure must leave the same fully-cleared state behind.
		if !errors.Is(err, api.ErrSessionExpired) {
			m.clear(ctx)
		}
		m.finishBootstrap()
		return err
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
	m.finishBootstrap()
	return nil
}

func (m *Manager) finishBootstrap() {
	m.mu.Lock()
	done := m.loading
	m.loading = false
	m.mu.Unlock()
	if done {
		m.emit(ReasonBootstrap, "")
	}
}

// Login exchanges credentials for a token, persists it and resolves the
// profile. On failure the server's error message is returned verbatim and
// the session stays unauthenticated.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	token, err := m.passwordGrant.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		return loginError(err)
	}

	if err := m.store.Save(ctx, token.AccessToken); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}

	m.mu.Lock()
	m.token = token.AccessToken
	m.mu.Unlock()

	user, err := m.client.Me(ctx)
	if err != nil {
		m.Logout()
		return err
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
	m.emit(ReasonLogin, "")
	return nil
}

// Register validates the role-specific payload and creates the account. It
// never touches the session: a registered user still has to log in.
func (m *Manager) Register(ctx context.Context, reg Registration) (*dto.User, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	user, err := m.client.Register(ctx, reg.request())
	if err != nil {
		return nil, err
	}
	m.emit(ReasonRegistered, "")
	return user, nil
}

// Logout clears the in-memory session and the persisted token. It is
// idempotent and safe to call when already logged out.
func (m *Manager) Logout() {
	m.clear(context.Background())
	m.emit(ReasonLogout, "")
}

// expire is the fetch client's 401 hook, invoked once per failed call.
func (m *Manager) expire() {
	m.clear(context.Background())
	m.emit(ReasonExpired, "Your session has expired. Please log in again.")
}

func (m *Manager) clear(ctx context.Context) {
	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.mu.Unlock()
	_ = m.store.Clear(ctx)
}

func (m *Manager) currentToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) emit(reason Reason, notice string) {
	state := m.Current()
	m.mu.RLock()
	listeners := make([]func(Event), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()

	for _, fn := range listeners {
		fn(Event{State: state, Reason: reason, Notice: notice})
	}
}

// loginError unwraps the oauth2 failure and surfaces the server's {detail}
// message verbatim when one is present.
func loginError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		var body struct {
			Detail string `json:"detail"`
		}
		if jsonErr := json.Unmarshal(retrieveErr.Body, &body); jsonErr == nil && body.Detail != "" {
			return &api.Error{
				StatusCode: retrieveErr.Response.StatusCode,
				Detail:     body.Detail,
			}
		}
		return &api.Error{
			StatusCode: retrieveErr.Response.StatusCode,
			Detail:     "failed to log in",
		}
	}
	return fmt.Errorf("login request: %w", err)
}
