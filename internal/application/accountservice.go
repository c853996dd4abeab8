package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/examdesk/internal/domain/model"
	"github.com/ericfisherdev/examdesk/internal/domain/port/driven"
)

// DefaultRecoveryTTL is how long a recovery grant stays redeemable.
const DefaultRecoveryTTL = 60 * time.Minute

// AccountService composes credentials, recovery grants and notifications into
// the customer account lifecycle.
type AccountService struct {
	credentials *CredentialService
	ledger      *RecoveryLedger
	notifier    driven.Notifier
	recoveryTTL time.Duration
	recoveryURL string
	logger      *slog.Logger
}

// NewAccountService creates an AccountService. notifier may be nil, in which
// case nothing is sent. recoveryURL is prefixed to the recovery token to form
// the link mailed to the customer.
func NewAccountService(
	credentials *CredentialService,
	ledger *RecoveryLedger,
	notifier driven.Notifier,
	recoveryTTL time.Duration,
	recoveryURL string,
	logger *slog.Logger,
) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	if recoveryTTL <= 0 {
		recoveryTTL = DefaultRecoveryTTL
	}
	return &AccountService{
		credentials: credentials,
		ledger:      ledger,
		notifier:    notifier,
		recoveryTTL: recoveryTTL,
		recoveryURL: recoveryURL,
		logger:      logger,
	}
}

// CreateCustomer registers email and mails the new token to it.
func (s *AccountService) CreateCustomer(ctx context.Context, email string) (*model.Credential, error) {
	cred, err := s.credentials.Create(ctx, email)
	if err != nil {
		return nil, err
	}
	_ = s.notify(ctx, cred.Email, welcomeMessage(cred.Email, cred.Token))
	return cred, nil
}

// ListCustomers returns every customer credential.
func (s *AccountService) ListCustomers(ctx context.Context) ([]model.Credential, error) {
	return s.credentials.List(ctx)
}

// DeleteCustomer removes a customer. Returns ErrNotFound for an unknown id.
func (s *AccountService) DeleteCustomer(ctx context.Context, id string) error {
	removed, err := s.credentials.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

// RegenerateToken rotates a customer's token and mails the new one.
func (s *AccountService) RegenerateToken(ctx context.Context, id string) (*model.Credential, error) {
	cred, err := s.credentials.ReissueToken(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = s.notify(ctx, cred.Email, welcomeMessage(cred.Email, cred.Token))
	return cred, nil
}

// Login resolves an access token to an active customer. last_login is not
// maintained.
func (s *AccountService) Login(ctx context.Context, token string) (*model.Credential, error) {
	token = strings.TrimSpace(token)
	if !strings.HasPrefix(token, model.AccessTokenPrefix) {
		return nil, ErrNotFound
	}

	cred, err := s.credentials.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if cred == nil || !cred.IsActive() {
		return nil, ErrNotFound
	}
	return cred, nil
}

// RequestRecovery issues a recovery grant for a registered email and mails
// the recovery link. Returns ErrNotFound if no customer owns email.
func (s *AccountService) RequestRecovery(ctx context.Context, email string) (*model.RecoveryGrant, error) {
	cred, err := s.credentials.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, ErrNotFound
	}

	grant, err := s.ledger.Issue(ctx, cred.Email, s.recoveryTTL)
	if err != nil {
		return nil, err
	}

	_ = s.notify(ctx, grant.Email, recoveryMessage(s.recoveryURL+grant.Token))
	return grant, nil
}

// ConfirmRecovery reports the grant behind token without consuming it.
func (s *AccountService) ConfirmRecovery(ctx context.Context, token string) (*model.RecoveryGrant, error) {
	return s.ledger.Peek(ctx, token)
}

// FinalizeRecovery consumes token and issues the customer a new access token,
// which is both mailed and returned.
func (s *AccountService) FinalizeRecovery(ctx context.Context, token string) (*model.Credential, error) {
	grant, err := s.ledger.Consume(ctx, token)
	if err != nil {
		return nil, err
	}

	cred, err := s.credentials.GetByEmail(ctx, grant.Email)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, ErrNotFound
	}

	updated, err := s.credentials.ReissueToken(ctx, cred.ID)
	if err != nil {
		return nil, err
	}

	_ = s.notify(ctx, updated.Email, welcomeMessage(updated.Email, updated.Token))
	return updated, nil
}

// notify delivers msg and logs any failure. Call sites discard the returned
// error: a delivery failure never fails the surrounding operation.
func (s *AccountService) notify(ctx context.Context, address string, msg model.Message) error {
	if s.notifier == nil {
		return nil
	}
	if err := s.notifier.Notify(ctx, address, msg); err != nil {
		s.logger.Warn("notification failed", "kind", msg.Kind, "error", err)
		return err
	}
	return nil
}
