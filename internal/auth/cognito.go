package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/rs/zerolog"
)

const (
	// DefaultRegion and DefaultClientID match the Fluidra EMEA user pool.
	DefaultRegion   = "eu-west-1"
	DefaultClientID = "g3njunelkcbtefosqm9bdhhq1"

	defaultExpiry = time.Hour

	// refreshThreshold is how close to expiry a token may get before
	// EnsureValid renews it.
	refreshThreshold = 10 * time.Minute
)

// Config holds the Cognito settings for one account.
type Config struct {
	Username string
	Password string
	Region   string
	ClientID string

	// Endpoint overrides the Cognito endpoint, used by tests.
	Endpoint string
}

// Cognito authenticates against the Fluidra user pool with the direct
// password flow (USER_PASSWORD_AUTH) and renews via REFRESH_TOKEN_AUTH.
type Cognito struct {
	client   *cip.Client
	clientID string
	username string
	password string
	log      zerolog.Logger

	mu           sync.Mutex
	accessToken  string
	idToken      string
	refreshToken string
	expiresAt    time.Time

	now func() time.Time
}

func NewCognito(cfg Config, log zerolog.Logger) *Cognito {
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = DefaultClientID
	}

	opts := cip.Options{
		Region:      region,
		Credentials: aws.AnonymousCredentials{},
		HTTPClient:  &http.Client{Timeout: 15 * time.Second},
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	return &Cognito{
		client:   cip.New(opts),
		clientID: clientID,
		username: cfg.Username,
		password: cfg.Password,
		log:      log.With().Str("component", "auth").Logger(),
		now:      time.Now,
	}
}

// Authenticate performs a full password login, replacing all cached tokens.
func (a *Cognito) Authenticate(ctx context.Context) error {
	out, err := a.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(a.clientID),
		AuthParameters: map[string]string{
			"USERNAME": a.username,
			"PASSWORD": a.password,
		},
	})
	if err != nil {
		authFailure.Inc()
		tokenValid.Set(0)
		return fmt.Errorf("cognito auth: %w", err)
	}
	if err := a.storeResult(out.AuthenticationResult, true); err != nil {
		authFailure.Inc()
		tokenValid.Set(0)
		return err
	}

	authSuccess.Inc()
	tokenValid.Set(1)
	a.log.Debug().Msg("authenticated")
	return nil
}

// EnsureValid refreshes the token when it is absent or expires within the
// threshold. A failed refresh falls back to a full re-authentication.
func (a *Cognito) EnsureValid(ctx context.Context) error {
	a.mu.Lock()
	token := a.refreshToken
	valid := a.accessToken != "" && a.expiresAt.Sub(a.now()) > refreshThreshold
	a.mu.Unlock()

	if valid {
		return nil
	}
	if token == "" {
		return a.Authenticate(ctx)
	}

	out, err := a.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeRefreshTokenAuth,
		ClientId: aws.String(a.clientID),
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": token,
		},
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("token refresh failed, re-authenticating")
		return a.Authenticate(ctx)
	}
	if err := a.storeResult(out.AuthenticationResult, false); err != nil {
		return a.Authenticate(ctx)
	}

	authSuccess.Inc()
	tokenValid.Set(1)
	return nil
}

// Headers returns the request headers for the current tokens. The identity
// token rides in x-api-key; the API rejects calls without it.
func (a *Cognito) Headers() http.Header {
	a.mu.Lock()
	defer a.mu.Unlock()

	h := http.Header{}
	if a.accessToken == "" {
		return h
	}
	h.Set("Authorization", "Bearer "+a.accessToken)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("x-api-key", a.idToken)
	h.Set("x-access-token", a.accessToken)
	h.Set("User-Agent", "fluidra-pool/1.0")
	return h
}

func (a *Cognito) storeResult(res *types.AuthenticationResultType, full bool) error {
	if res == nil || res.AccessToken == nil {
		return fmt.Errorf("cognito auth: empty authentication result")
	}

	expiry := defaultExpiry
	if res.ExpiresIn > 0 {
		expiry = time.Duration(res.ExpiresIn) * time.Second
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.accessToken = aws.ToString(res.AccessToken)
	if res.IdToken != nil {
		a.idToken = aws.ToString(res.IdToken)
	}
	if res.RefreshToken != nil {
		a.refreshToken = aws.ToString(res.RefreshToken)
	} else if full {
		a.refreshToken = ""
	}
	a.expiresAt = a.now().Add(expiry)
	return nil
}
