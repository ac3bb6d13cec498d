package auth

import (
	"context"
	"errors"
	"net/http"
)

// ErrNotAuthenticated is returned when headers are requested before any
// successful authentication.
var ErrNotAuthenticated = errors.New("not authenticated")

// Authenticator produces short-lived bearer credentials for the Fluidra API.
//
// Authenticate performs a full login and replaces all tokens. EnsureValid
// refreshes only when the cached token is missing or close to expiry.
// Headers returns the request headers derived from the current tokens.
type Authenticator interface {
	Authenticate(ctx context.Context) error
	EnsureValid(ctx context.Context) error
	Headers() http.Header
}
