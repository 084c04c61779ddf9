package contexthelpers

import (
	"context"
	"github.com/myrjola/whodunit/internal/game"
	"net/http"
)

func SetCurrentPath(r *http.Request, currentPath string) *http.Request {
	ctx := context.WithValue(r.Context(), currentPathContextKey, currentPath)
	return r.WithContext(ctx)
}

func SetCSRFToken(r *http.Request, csrfToken string) *http.Request {
	ctx := context.WithValue(r.Context(), csrfTokenContextKey, csrfToken)
	return r.WithContext(ctx)
}

func SetCSPNonce(r *http.Request, nonce string) *http.Request {
	ctx := context.WithValue(r.Context(), cspNonceContextKey, nonce)
	return r.WithContext(ctx)
}

func SetGameSession(r *http.Request, s *game.Session) *http.Request {
	ctx := context.WithValue(r.Context(), gameSessionContextKey, s)
	return r.WithContext(ctx)
}
