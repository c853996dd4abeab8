package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/examdesk/internal/domain/model"
)

// Sentinel errors returned by CredentialStore implementations.
var (
	// ErrCredentialNotFound indicates no credential matched the given id.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrEmailTaken indicates another credential already owns the email.
	ErrEmailTaken = errors.New("email already registered")
)

// CredentialStore defines the driven port for customer credential persistence.
// All lookups read the same underlying record set; Get* methods return
// (nil, nil) when nothing matches.
type CredentialStore interface {
	// Insert persists a new credential. Returns ErrEmailTaken if the email is
	// already owned by another credential.
	Insert(ctx context.Context, cred model.Credential) error

	// Update replaces the mutable fields (token, status, updated_at, last_login)
	// of an existing credential. Returns ErrCredentialNotFound if id is unknown.
	Update(ctx context.Context, cred model.Credential) error

	// Delete removes a credential by id. Returns ErrCredentialNotFound if id is unknown.
	Delete(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (*model.Credential, error)
	GetByEmail(ctx context.Context, email string) (*model.Credential, error)
	GetByToken(ctx context.Context, token string) (*model.Credential, error)
	ListAll(ctx context.Context) ([]model.Credential, error)
}
