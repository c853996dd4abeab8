package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"

	"github.com/ericfisherdev/examdesk/internal/domain/model"
	"github.com/ericfisherdev/examdesk/internal/domain/port/driven"
)

// CredentialService owns the set of customer credentials. Mutations are
// serialized so the email uniqueness check and the insert behave as one
// atomic step within the process; the store's unique index covers the rest.
type CredentialService struct {
	mu     sync.Mutex
	store  driven.CredentialStore
	clock  Clock
	logger *slog.Logger
}

// NewCredentialService creates a CredentialService. clock may be nil.
func NewCredentialService(store driven.CredentialStore, clock Clock, logger *slog.Logger) *CredentialService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialService{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// ValidateEmail trims email and checks that it is a syntactically valid address.
func ValidateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	return email, nil
}

// Create registers a new active credential for email with a fresh token.
// Returns ErrDuplicateEmail if email is already registered. A revoked
// credential still holds its email; the store keeps email unique across
// every status.
func (s *CredentialService) Create(ctx context.Context, email string) (*model.Credential, error) {
	email, err := ValidateEmail(email)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	token, err := newOpaqueToken(model.AccessTokenPrefix)
	if err != nil {
		return nil, err
	}

	now := s.clock.now().UTC()
	cred := model.Credential{
		ID:        "cust-" + uuid.NewString(),
		Email:     email,
		Token:     token,
		Status:    model.CredentialStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Insert(ctx, cred); err != nil {
		if errors.Is(err, driven.ErrEmailTaken) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert credential: %w", err)
	}

	s.logger.Info("credential created", "id", cred.ID)
	return &cred, nil
}

// Get returns the credential with the given id, or nil if none exists.
func (s *CredentialService) Get(ctx context.Context, id string) (*model.Credential, error) {
	cred, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup credential by id: %w", err)
	}
	return cred, nil
}

// GetByEmail returns the credential owning email, or nil if none exists.
func (s *CredentialService) GetByEmail(ctx context.Context, email string) (*model.Credential, error) {
	cred, err := s.store.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("lookup credential by email: %w", err)
	}
	return cred, nil
}

// GetByToken returns the credential currently holding token, or nil.
func (s *CredentialService) GetByToken(ctx context.Context, token string) (*model.Credential, error) {
	cred, err := s.store.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("lookup credential by token: %w", err)
	}
	return cred, nil
}

// List returns every credential.
func (s *CredentialService) List(ctx context.Context) ([]model.Credential, error) {
	creds, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	if creds == nil {
		creds = []model.Credential{}
	}
	return creds, nil
}

// Remove deletes the credential with the given id and reports whether it existed.
func (s *CredentialService) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, driven.ErrCredentialNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("remove credential: %w", err)
	}

	s.logger.Info("credential removed", "id", id)
	return true, nil
}

// ReissueToken replaces the token of credential id with a fresh one. The old
// token stops resolving as soon as this returns. Returns ErrNotFound for an
// unknown id.
func (s *CredentialService) ReissueToken(ctx context.Context, id string) (*model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup credential by id: %w", err)
	}
	if cred == nil {
		return nil, ErrNotFound
	}

	token, err := newOpaqueToken(model.AccessTokenPrefix)
	if err != nil {
		return nil, err
	}
	cred.Token = token
	cred.UpdatedAt = s.clock.now().UTC()

	if err := s.store.Update(ctx, *cred); err != nil {
		if errors.Is(err, driven.ErrCredentialNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update credential: %w", err)
	}

	s.logger.Info("credential token reissued", "id", cred.ID)
	return cred, nil
}
