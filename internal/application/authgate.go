package application

import (
	"log/slog"
	"strings"

	"github.com/ericfisherdev/examdesk/internal/domain/model"
)

// TokenVerifier verifies a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (map[string]any, error)
}

// AuthGate admits admin requests that present a valid bearer token. It keeps
// no state: the same token always gets the same answer.
type AuthGate struct {
	verifier TokenVerifier
	logger   *slog.Logger
}

// NewAuthGate creates an AuthGate backed by verifier.
func NewAuthGate(verifier TokenVerifier, logger *slog.Logger) *AuthGate {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthGate{verifier: verifier, logger: logger}
}

// Admit checks an Authorization header value of the form "Bearer <token>".
// Every failure returns ErrUnauthorized; the cause is only logged.
func (g *AuthGate) Admit(authorization string) (model.AdminPrincipal, error) {
	token, ok := bearerToken(authorization)
	if !ok {
		g.logger.Debug("admin request rejected", "reason", "missing bearer token")
		return model.AdminPrincipal{}, ErrUnauthorized
	}

	// Customer and recovery tokens live in their own namespaces.
	if strings.HasPrefix(token, model.AccessTokenPrefix) || strings.HasPrefix(token, model.RecoveryTokenPrefix) {
		g.logger.Debug("admin request rejected", "reason", "non-admin token kind")
		return model.AdminPrincipal{}, ErrUnauthorized
	}

	claims, err := g.verifier.Verify(token)
	if err != nil {
		g.logger.Debug("admin request rejected", "reason", err)
		return model.AdminPrincipal{}, ErrUnauthorized
	}

	return PrincipalFromClaims(claims), nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
