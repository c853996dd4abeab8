package application

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ericfisherdev/examdesk/internal/domain/model"
)

// TokenCodec issues and verifies stateless HS256 bearer tokens. The signing
// secret is fixed for the life of the codec; rotating it invalidates every
// token issued before.
type TokenCodec struct {
	secret []byte
	clock  Clock
}

// NewTokenCodec creates a TokenCodec signing with secret. clock may be nil.
func NewTokenCodec(secret []byte, clock Clock) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token codec: empty signing secret")
	}
	return &TokenCodec{secret: secret, clock: clock}, nil
}

type issueOptions struct {
	ttl    time.Duration
	hasTTL bool
}

// IssueOption customizes a single Issue call.
type IssueOption func(*issueOptions)

// WithTTL sets exp = iat + ttl (whole seconds). Without it the token never expires.
func WithTTL(ttl time.Duration) IssueOption {
	return func(o *issueOptions) {
		o.ttl = ttl
		o.hasTTL = true
	}
}

// Issue signs claims merged with iat, and exp when WithTTL is given.
// Verify hands numeric claims back as json.Number, so an int passed here
// comes back as json.Number("42").
func (c *TokenCodec) Issue(claims map[string]any, opts ...IssueOption) (string, error) {
	var o issueOptions
	for _, opt := range opts {
		opt(&o)
	}

	iat := c.clock.now().Unix()
	body := make(jwt.MapClaims, len(claims)+2)
	for k, v := range claims {
		body[k] = v
	}
	body["iat"] = iat
	if o.hasTTL {
		body["exp"] = iat + int64(o.ttl/time.Second)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, body).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns its claims.
// Numeric claims are returned as json.Number. Failures wrap ErrMalformed,
// ErrInvalidSignature or ErrExpired. Every segment must be canonical
// base64url: a signature segment with stray padding bits in its final symbol
// is an invalid signature, not an alternate spelling of a valid one.
func (c *TokenCodec) Verify(token string) (map[string]any, error) {
	if parts := strings.Split(token, "."); len(parts) == 3 {
		if _, err := base64.RawURLEncoding.Strict().DecodeString(parts[2]); err != nil {
			return nil, fmt.Errorf("%w: signature segment: %v", ErrInvalidSignature, err)
		}
	}

	// exp is compared at whole-second resolution and the exp second itself
	// is still valid.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithJSONNumber(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.clock.now),
		jwt.WithLeeway(time.Second),
	)

	parsed, err := parser.Parse(token, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, classifyJWTError(err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type %T", ErrMalformed, parsed.Claims)
	}
	return claims, nil
}

func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

// PrincipalFromClaims builds the admin identity carried by verified claims.
func PrincipalFromClaims(claims map[string]any) model.AdminPrincipal {
	mc := jwt.MapClaims(claims)
	p := model.AdminPrincipal{Claims: claims}
	p.ClientID, _ = claims["clientId"].(string)
	p.Role, _ = claims["role"].(string)

	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time.UTC()
		p.IssuedAt = &t
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time.UTC()
		p.ExpiresAt = &t
	}
	return p
}
