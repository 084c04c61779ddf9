package contexthelpers

import (
	"context"
	"github.com/myrjola/whodunit/internal/game"
)

func CurrentPath(ctx context.Context) string {
	currentPath, ok := ctx.Value(currentPathContextKey).(string)
	if !ok {
		return ""
	}

	return currentPath
}

func CSRFToken(ctx context.Context) string {
	csrfToken, ok := ctx.Value(csrfTokenContextKey).(string)
	if !ok {
		return ""
	}

	return csrfToken
}

func CSPNonce(ctx context.Context) string {
	nonce, ok := ctx.Value(cspNonceContextKey).(string)
	if !ok {
		return ""
	}

	return nonce
}

// GameSession returns the play-through of the current visitor, or nil outside the session middleware.
func GameSession(ctx context.Context) *game.Session {
	s, ok := ctx.Value(gameSessionContextKey).(*game.Session)
	if !ok {
		return nil
	}

	return s
}
