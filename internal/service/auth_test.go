package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/enerlink/parceiros-api-go/internal/domain"
)

type fakeAuthStore struct {
	principal *domain.Principal
	updates   []map[string]any
	tokens    map[string]*domain.RefreshToken
	revoked   []string
}

func newFakeAuthStore(p *domain.Principal) *fakeAuthStore {
	return &fakeAuthStore{principal: p, tokens: make(map[string]*domain.RefreshToken)}
}

func (f *fakeAuthStore) GetPrincipalByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	if f.principal != nil && f.principal.Email == email {
		p := *f.principal
		return &p, nil
	}
	return nil, nil
}

func (f *fakeAuthStore) GetPrincipalByID(ctx context.Context, id string) (*domain.Principal, error) {
	if f.principal != nil && f.principal.ID == id {
		p := *f.principal
		return &p, nil
	}
	return nil, &domain.ErrNotFound{Resource: "principal", ID: id}
}

func (f *fakeAuthStore) UpdatePrincipal(ctx context.Context, id string, updates map[string]any) error {
	f.updates = append(f.updates, updates)
	if v, ok := updates["failed_logins"].(int); ok {
		f.principal.FailedLogins = v
	}
	return nil
}

func (f *fakeAuthStore) StoreRefreshToken(ctx context.Context, principalID, tokenHash string, expiresAt time.Time) error {
	f.tokens[tokenHash] = &domain.RefreshToken{
		PrincipalID: principalID,
		TokenHash:   tokenHash,
		ExpiresAt:   expiresAt,
	}
	return nil
}

func (f *fakeAuthStore) GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	return f.tokens[tokenHash], nil
}

func (f *fakeAuthStore) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	f.revoked = append(f.revoked, tokenHash)
	delete(f.tokens, tokenHash)
	return nil
}

func (f *fakeAuthStore) RevokeAllRefreshTokens(ctx context.Context, principalID string) error {
	for h, t := range f.tokens {
		if t.PrincipalID == principalID {
			f.revoked = append(f.revoked, h)
			delete(f.tokens, h)
		}
	}
	return nil
}

func testPrincipal(t *testing.T, password string) *domain.Principal {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.Principal{
		ID:           "p-1",
		Email:        "rui@enerlink.pt",
		Name:         "Rui Costa",
		Role:         domain.RolePartner,
		PasswordHash: string(hash),
		Status:       domain.UserActive,
	}
}

func TestLoginSuccess(t *testing.T) {
	store := newFakeAuthStore(testPrincipal(t, "secret123"))
	svc := NewAuthService(store, "test-secret", 15*time.Minute, 24*time.Hour, zap.NewNop())

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "rui@enerlink.pt", Password: "secret123"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "p-1", resp.UserID)
	assert.Equal(t, domain.RolePartner, resp.Role)
	assert.Len(t, store.tokens, 1, "refresh token hash stored")

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "p-1", claims.Sub)
	assert.Equal(t, "access", claims.Type)
}

func TestLoginWrongPasswordCountsAttempts(t *testing.T) {
	store := newFakeAuthStore(testPrincipal(t, "secret123"))
	svc := NewAuthService(store, "test-secret", 15*time.Minute, 24*time.Hour, zap.NewNop())

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "rui@enerlink.pt", Password: "wrong"})
	var unauth *domain.ErrUnauthorized
	require.ErrorAs(t, err, &unauth)
	assert.Contains(t, unauth.Message, "remaining")
	assert.Equal(t, 1, store.principal.FailedLogins)
}

func TestLoginLocksAfterMaxAttempts(t *testing.T) {
	p := testPrincipal(t, "secret123")
	p.FailedLogins = maxFailedAttempts - 1
	store := newFakeAuthStore(p)
	svc := NewAuthService(store, "test-secret", 15*time.Minute, 24*time.Hour, zap.NewNop())

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "rui@enerlink.pt", Password: "wrong"})
	require.Error(t, err)

	require.NotEmpty(t, store.updates)
	last := store.updates[len(store.updates)-1]
	assert.Contains(t, last, "locked_until")
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	p := testPrincipal(t, "secret123")
	p.Status = domain.UserInactive
	store := newFakeAuthStore(p)
	svc := NewAuthService(store, "test-secret", 15*time.Minute, 24*time.Hour, zap.NewNop())

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "rui@enerlink.pt", Password: "secret123"})
	var unauth *domain.ErrUnauthorized
	require.ErrorAs(t, err, &unauth)
}

func TestRefreshRotatesToken(t *testing.T) {
	store := newFakeAuthStore(testPrincipal(t, "secret123"))
	svc := NewAuthService(store, "test-secret", 15*time.Minute, 24*time.Hour, zap.NewNop())

	login, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "rui@enerlink.pt", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), &domain.RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)

	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.Len(t, store.revoked, 1, "old token revoked on rotation")

	// The rotated-out token must no longer work.
	_, err = svc.Refresh(context.Background(), &domain.RefreshRequest{RefreshToken: login.RefreshToken})
	var unauth *domain.ErrUnauthorized
	require.ErrorAs(t, err, &unauth)
}

func TestLogoutRevokesAllTokens(t *testing.T) {
	store := newFakeAuthStore(testPrincipal(t, "secret123"))
	svc := NewAuthService(store, "test-secret", 15*time.Minute, 24*time.Hour, zap.NewNop())

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "rui@enerlink.pt", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), "p-1"))
	assert.Empty(t, store.tokens)
}

func TestChangePasswordRehashesAndRevokesSessions(t *testing.T) {
	store := newFakeAuthStore(testPrincipal(t, "secret123"))
	svc := NewAuthService(store, "test-secret", 15*time.Minute, 24*time.Hour, zap.NewNop())

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "rui@enerlink.pt", Password: "secret123"})
	require.NoError(t, err)
	require.Len(t, store.tokens, 1)

	err = svc.ChangePassword(context.Background(), "p-1", &domain.PasswordChangeRequest{
		CurrentPassword: "secret123",
		NewPassword:     "muito-mais-forte",
	})
	require.NoError(t, err)

	require.NotEmpty(t, store.updates)
	last := store.updates[len(store.updates)-1]
	hash, ok := last["password_hash"].(string)
	require.True(t, ok, "password_hash persisted")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("muito-mais-forte")))

	assert.Empty(t, store.tokens, "existing sessions revoked")
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	store := newFakeAuthStore(testPrincipal(t, "secret123"))
	svc := NewAuthService(store, "test-secret", 15*time.Minute, 24*time.Hour, zap.NewNop())

	err := svc.ChangePassword(context.Background(), "p-1", &domain.PasswordChangeRequest{
		CurrentPassword: "wrong",
		NewPassword:     "muito-mais-forte",
	})
	var unauth *domain.ErrUnauthorized
	require.ErrorAs(t, err, &unauth)
	assert.Empty(t, store.updates, "no hash written on mismatch")
}

func TestChangePasswordRejectsShortPassword(t *testing.T) {
	store := newFakeAuthStore(testPrincipal(t, "secret123"))
	svc := NewAuthService(store, "test-secret", 15*time.Minute, 24*time.Hour, zap.NewNop())

	err := svc.ChangePassword(context.Background(), "p-1", &domain.PasswordChangeRequest{
		CurrentPassword: "secret123",
		NewPassword:     "curta",
	})
	var invalid *domain.ErrValidation
	require.ErrorAs(t, err, &invalid)
	require.Len(t, invalid.Fields, 1)
	assert.Equal(t, "new_password", invalid.Fields[0].Field)
}

func TestValidateAccessTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(newFakeAuthStore(nil), "test-secret", 15*time.Minute, 24*time.Hour, zap.NewNop())

	_, err := svc.ValidateAccessToken("not-a-jwt")
	var unauth *domain.ErrUnauthorized
	require.ErrorAs(t, err, &unauth)
}
