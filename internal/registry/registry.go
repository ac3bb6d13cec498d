// Package registry tracks the live coordinator for each configured account.
// Every coordinator is created and torn down through the registry; nothing
// holds coordinator state outside it.
package registry

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Roagert/fluidra-pool/internal/auth"
	"github.com/Roagert/fluidra-pool/internal/coordinator"
	"github.com/Roagert/fluidra-pool/internal/fluidra"
	"github.com/Roagert/fluidra-pool/internal/rate"
)

var accountIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Account bundles everything owned by one registered account.
type Account struct {
	ID          string
	Coordinator *coordinator.Coordinator
	Dispatcher  *coordinator.Dispatcher
	Limiter     *rate.Limiter
}

// Options describes one account to register.
type Options struct {
	Username string
	Password string

	// BaseURL overrides the API host, used by tests.
	BaseURL string
	// CognitoEndpoint overrides the auth endpoint, used by tests.
	CognitoEndpoint string

	RateLimit   int
	Coordinator coordinator.Options
}

// Registry is the process-wide account table.
type Registry struct {
	mu       sync.RWMutex
	accounts map[string]*Account
	log      zerolog.Logger
}

func New(log zerolog.Logger) *Registry {
	return &Registry{
		accounts: make(map[string]*Account),
		log:      log.With().Str("component", "registry").Logger(),
	}
}

// Create validates the id, wires up auth, transport, rate limiting, and the
// coordinator for one account, and registers it. The caller starts the
// coordinator's refresh loop.
func (r *Registry) Create(id string, opts Options) (*Account, error) {
	if id == "" {
		return nil, fmt.Errorf("account id is empty")
	}
	if !accountIDPattern.MatchString(id) {
		return nil, fmt.Errorf("account id %q does not match %s", id, accountIDPattern.String())
	}
	if opts.Username == "" || opts.Password == "" {
		return nil, fmt.Errorf("account %s: username and password are required", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[id]; exists {
		return nil, fmt.Errorf("duplicate account id: %s", id)
	}

	authn := auth.NewCognito(auth.Config{
		Username: opts.Username,
		Password: opts.Password,
		Endpoint: opts.CognitoEndpoint,
	}, r.log)
	rateLimit := opts.RateLimit
	if rateLimit <= 0 {
		rateLimit = rate.DefaultLimit
	}
	limiter := rate.NewLimiter(rateLimit)
	api := fluidra.NewClient(opts.BaseURL, authn)

	coord := coordinator.New(api, authn, limiter, opts.Coordinator, r.log.With().Str("account", id).Logger())
	account := &Account{
		ID:          id,
		Coordinator: coord,
		Dispatcher:  coordinator.NewDispatcher(coord, r.log.With().Str("account", id).Logger()),
		Limiter:     limiter,
	}
	r.accounts[id] = account
	accountsGauge.Set(float64(len(r.accounts)))
	r.log.Info().Str("account", id).Msg("account registered")
	return account, nil
}

// Get returns the registered account for id.
func (r *Registry) Get(id string) (*Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	return a, ok
}

// Accounts returns all registered accounts.
func (r *Registry) Accounts() []*Account {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, a)
	}
	return out
}

// Delete closes and removes one account. Removing an unknown id is a no-op.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	a, ok := r.accounts[id]
	delete(r.accounts, id)
	accountsGauge.Set(float64(len(r.accounts)))
	r.mu.Unlock()

	if ok {
		a.Coordinator.Close()
		r.log.Info().Str("account", id).Msg("account removed")
	}
}

// Close tears down every registered account.
func (r *Registry) Close() {
	r.mu.Lock()
	accounts := r.accounts
	r.accounts = make(map[string]*Account)
	accountsGauge.Set(0)
	r.mu.Unlock()

	for id, a := range accounts {
		a.Coordinator.Close()
		r.log.Debug().Str("account", id).Msg("account closed")
	}
}
