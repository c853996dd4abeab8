package application

import (
	"errors"
	"fmt"
)

// Token Codec failures. Callers outside the trust boundary only ever see
// ErrUnauthorized; these distinctions are for logs and tests.
var (
	ErrMalformed        = errors.New("token malformed")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
)

// ErrUnauthorized is the uniform rejection returned by the AuthGate.
var ErrUnauthorized = errors.New("unauthorized")

// Account lifecycle failures.
var (
	ErrDuplicateEmail = errors.New("email already exists")
	ErrNotFound       = errors.New("not found")
	ErrInvalidEmail   = errors.New("invalid email")
)

// ErrRecoveryInvalid is the parent of every reason a recovery token cannot be
// used. The HTTP layer reports all of them identically.
var ErrRecoveryInvalid = errors.New("invalid or expired recovery token")

var (
	ErrRecoveryUnknown = fmt.Errorf("%w: unknown token", ErrRecoveryInvalid)
	ErrAlreadyConsumed = fmt.Errorf("%w: already consumed", ErrRecoveryInvalid)
	ErrRecoveryExpired = fmt.Errorf("%w: expired", ErrRecoveryInvalid)
)
