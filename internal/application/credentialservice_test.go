package application_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/examdesk/internal/application"
	"github.com/ericfisherdev/examdesk/internal/domain/model"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "ada@example.com", want: "ada@example.com"},
		{in: "  Ada@Example.com\t", want: "Ada@Example.com"},
		{in: "", wantErr: true},
		{in: "   ", wantErr: true},
		{in: "ada", wantErr: true},
		{in: "ada@", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := application.ValidateEmail(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, application.ErrInvalidEmail)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCredentialService_Create(t *testing.T) {
	store := newMemCredentialStore()
	svc := application.NewCredentialService(store, newFakeClock().Now, nil)

	cred, err := svc.Create(context.Background(), " ada@example.com ")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(cred.ID, "cust-"))
	assert.Equal(t, "ada@example.com", cred.Email)
	assert.Regexp(t, `^cust_[0-9a-f]{32}$`, cred.Token)
	assert.Equal(t, model.CredentialStatusActive, cred.Status)
	assert.Equal(t, testTime, cred.CreatedAt)
	assert.Equal(t, testTime, cred.UpdatedAt)
	assert.Nil(t, cred.LastLogin)

	stored, err := svc.Get(context.Background(), cred.ID)
	require.NoError(t, err)
	assert.Equal(t, *cred, *stored)
}

func TestCredentialService_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	store := newMemCredentialStore()
	svc := application.NewCredentialService(store, nil, nil)

	_, err := svc.Create(ctx, "ada@example.com")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "ada@example.com")
	require.ErrorIs(t, err, application.ErrDuplicateEmail)

	// Matching is case-sensitive.
	_, err = svc.Create(ctx, "Ada@example.com")
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCredentialService_CreateDuplicateCaughtByStore(t *testing.T) {
	ctx := context.Background()
	store := newMemCredentialStore()
	svc := application.NewCredentialService(store, nil, nil)

	_, err := svc.Create(ctx, "ada@example.com")
	require.NoError(t, err)

	store.hideEmails = true
	_, err = svc.Create(ctx, "ada@example.com")
	require.ErrorIs(t, err, application.ErrDuplicateEmail)
}

func TestCredentialService_CreateRevokedEmailStaysTaken(t *testing.T) {
	ctx := context.Background()
	store := newMemCredentialStore()
	svc := application.NewCredentialService(store, nil, nil)

	cred, err := svc.Create(ctx, "ada@example.com")
	require.NoError(t, err)
	revoked := *cred
	revoked.Status = model.CredentialStatusRevoked
	require.NoError(t, store.Update(ctx, revoked))

	_, err = svc.Create(ctx, "ada@example.com")
	require.ErrorIs(t, err, application.ErrDuplicateEmail)
}

func TestCredentialService_ConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	store := newMemCredentialStore()
	svc := application.NewCredentialService(store, nil, nil)

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, "race@example.com")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, application.ErrDuplicateEmail):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, dup)
}

func TestCredentialService_CreateInvalidEmail(t *testing.T) {
	store := newMemCredentialStore()
	svc := application.NewCredentialService(store, nil, nil)

	_, err := svc.Create(context.Background(), "nope")

	require.ErrorIs(t, err, application.ErrInvalidEmail)
	assert.Empty(t, store.creds)
}

func TestCredentialService_Lookups(t *testing.T) {
	ctx := context.Background()
	svc := application.NewCredentialService(newMemCredentialStore(), nil, nil)

	cred, err := svc.Create(ctx, "ada@example.com")
	require.NoError(t, err)

	byEmail, err := svc.GetByEmail(ctx, "  ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, cred.ID, byEmail.ID)

	byToken, err := svc.GetByToken(ctx, cred.Token)
	require.NoError(t, err)
	require.NotNil(t, byToken)
	assert.Equal(t, cred.ID, byToken.ID)

	missing, err := svc.GetByToken(ctx, "cust_00000000000000000000000000000000")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = svc.Get(ctx, "cust-unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCredentialService_ListEmpty(t *testing.T) {
	svc := application.NewCredentialService(newMemCredentialStore(), nil, nil)

	all, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestCredentialService_Remove(t *testing.T) {
	ctx := context.Background()
	svc := application.NewCredentialService(newMemCredentialStore(), nil, nil)

	cred, err := svc.Create(ctx, "ada@example.com")
	require.NoError(t, err)

	removed, err := svc.Remove(ctx, cred.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.Remove(ctx, cred.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	byToken, err := svc.GetByToken(ctx, cred.Token)
	require.NoError(t, err)
	assert.Nil(t, byToken)
}

func TestCredentialService_ReissueToken(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	svc := application.NewCredentialService(newMemCredentialStore(), clock.Now, nil)

	cred, err := svc.Create(ctx, "ada@example.com")
	require.NoError(t, err)
	oldToken := cred.Token

	clock.Advance(time.Minute)
	updated, err := svc.ReissueToken(ctx, cred.ID)
	require.NoError(t, err)

	assert.Equal(t, cred.ID, updated.ID)
	assert.Equal(t, cred.Email, updated.Email)
	assert.Equal(t, cred.CreatedAt, updated.CreatedAt)
	assert.Equal(t, testTime.Add(time.Minute), updated.UpdatedAt)
	assert.NotEqual(t, oldToken, updated.Token)
	assert.Regexp(t, `^cust_[0-9a-f]{32}$`, updated.Token)

	old, err := svc.GetByToken(ctx, oldToken)
	require.NoError(t, err)
	assert.Nil(t, old)

	current, err := svc.GetByToken(ctx, updated.Token)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, cred.ID, current.ID)

	_, err = svc.ReissueToken(ctx, "cust-unknown")
	require.ErrorIs(t, err, application.ErrNotFound)
}

func TestCredentialService_StoreFailure(t *testing.T) {
	store := newMemCredentialStore()
	store.err = errors.New("disk I/O error")
	svc := application.NewCredentialService(store, nil, nil)

	_, err := svc.Create(context.Background(), "ada@example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, application.ErrDuplicateEmail)

	_, err = svc.List(context.Background())
	require.Error(t, err)
}
