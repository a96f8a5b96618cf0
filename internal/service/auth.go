// Package service — AuthService handles login, token refresh and logout
// against the principals table.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/enerlink/parceiros-api-go/internal/domain"
	"github.com/enerlink/parceiros-api-go/internal/port"
)

var authTracer = otel.Tracer("service/auth")

const (
	maxFailedAttempts = 5
	lockDuration      = 30 * time.Minute
	bcryptCost        = 12
	minPasswordLen    = 10
)

// AuthService orchestrates authentication flows.
type AuthService struct {
	store      port.AuthStore
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(store port.AuthStore, jwtSecret string, accessTTL, refreshTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:      store,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

// ============================================================
// Login — POST /v1/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()
	span.SetAttributes(attribute.String("email", req.Email))

	principal, err := s.store.GetPrincipalByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("get principal: %w", err)
	}
	if principal == nil {
		return nil, &domain.ErrUnauthorized{Message: "Invalid credentials"}
	}

	if principal.Status == domain.UserInactive {
		s.logger.Warn("login: inactive account",
			zap.String("principal_id", principal.ID),
		)
		return nil, &domain.ErrUnauthorized{Message: "Account is inactive"}
	}

	if principal.LockedUntil != nil && principal.LockedUntil.After(time.Now()) {
		remaining := time.Until(*principal.LockedUntil).Minutes()
		s.logger.Warn("login: account temporarily locked",
			zap.String("principal_id", principal.ID),
			zap.Float64("remaining_minutes", remaining),
		)
		return nil, &domain.ErrUnauthorized{
			Message: fmt.Sprintf("Account temporarily locked. Try again in %.0f minutes", remaining),
		}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(req.Password)); err != nil {
		newAttempts := principal.FailedLogins + 1
		updates := map[string]any{"failed_logins": newAttempts}
		if newAttempts >= maxFailedAttempts {
			lockedUntil := time.Now().Add(lockDuration)
			updates["locked_until"] = lockedUntil.Format(time.RFC3339)
			s.logger.Warn("login: account locked after max attempts",
				zap.String("principal_id", principal.ID),
				zap.Int("attempts", newAttempts),
				zap.Duration("lock_duration", lockDuration),
			)
		} else {
			s.logger.Warn("login: failed password attempt",
				zap.String("principal_id", principal.ID),
				zap.Int("attempts", newAttempts),
				zap.Int("max", maxFailedAttempts),
			)
		}
		_ = s.store.UpdatePrincipal(ctx, principal.ID, updates)

		remaining := maxFailedAttempts - newAttempts
		if remaining <= 0 {
			return nil, &domain.ErrUnauthorized{
				Message: fmt.Sprintf("Account locked for %d minutes after %d attempts", int(lockDuration.Minutes()), maxFailedAttempts),
			}
		}
		return nil, &domain.ErrUnauthorized{
			Message: fmt.Sprintf("Invalid credentials. %d attempt(s) remaining", remaining),
		}
	}

	// Reset failed attempts on successful login
	_ = s.store.UpdatePrincipal(ctx, principal.ID, map[string]any{
		"failed_logins": 0,
		"locked_until":  nil,
		"last_login_at": time.Now().Format(time.RFC3339),
	})

	accessToken, err := s.signAccessToken(principal.ID, principal.Role)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, refreshHash, err := s.generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.store.StoreRefreshToken(ctx, principal.ID, refreshHash, time.Now().Add(s.refreshTTL)); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	s.logger.Info("user logged in", zap.String("principal_id", principal.ID))

	return &domain.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.accessTTL.Seconds()),
		UserID:       principal.ID,
		Name:         principal.Name,
		Role:         principal.Role,
	}, nil
}

// ============================================================
// Refresh — POST /v1/auth/refresh
// ============================================================

func (s *AuthService) Refresh(ctx context.Context, req *domain.RefreshRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Refresh")
	defer span.End()

	tokenHash := hashToken(req.RefreshToken)

	stored, err := s.store.GetRefreshToken(ctx, tokenHash)
	if err != nil {
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	if stored == nil {
		return nil, &domain.ErrUnauthorized{Message: "Invalid refresh token"}
	}

	if stored.ExpiresAt.Before(time.Now()) {
		s.logger.Warn("refresh: expired token used",
			zap.String("principal_id", stored.PrincipalID),
		)
		_ = s.store.RevokeRefreshToken(ctx, tokenHash)
		return nil, &domain.ErrUnauthorized{Message: "Refresh token expired"}
	}

	// Revoke old token (rotation)
	_ = s.store.RevokeRefreshToken(ctx, tokenHash)

	principal, err := s.store.GetPrincipalByID(ctx, stored.PrincipalID)
	if err != nil {
		return nil, fmt.Errorf("get principal: %w", err)
	}

	accessToken, err := s.signAccessToken(principal.ID, principal.Role)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	newRefreshToken, newRefreshHash, err := s.generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.store.StoreRefreshToken(ctx, principal.ID, newRefreshHash, time.Now().Add(s.refreshTTL)); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &domain.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    int(s.accessTTL.Seconds()),
		UserID:       principal.ID,
		Name:         principal.Name,
		Role:         principal.Role,
	}, nil
}

// ============================================================
// Logout — POST /v1/auth/logout
// ============================================================

func (s *AuthService) Logout(ctx context.Context, principalID string) error {
	ctx, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	if err := s.store.RevokeAllRefreshTokens(ctx, principalID); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}

	s.logger.Info("user logged out", zap.String("principal_id", principalID))
	return nil
}

// ============================================================
// ChangePassword — PUT /v1/auth/password
// ============================================================

// ChangePassword rehashes the principal's password after verifying the
// current one, then revokes every refresh token so stolen sessions die with
// the old password.
func (s *AuthService) ChangePassword(ctx context.Context, principalID string, req *domain.PasswordChangeRequest) error {
	ctx, span := authTracer.Start(ctx, "AuthService.ChangePassword")
	defer span.End()

	principal, err := s.store.GetPrincipalByID(ctx, principalID)
	if err != nil {
		return fmt.Errorf("get principal: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		s.logger.Warn("change password: current password mismatch",
			zap.String("principal_id", principalID),
		)
		return &domain.ErrUnauthorized{Message: "Current password is incorrect"}
	}

	if len(req.NewPassword) < minPasswordLen {
		return &domain.ErrValidation{
			Entity: "password",
			Fields: []domain.FieldError{{
				Field:   "new_password",
				Message: fmt.Sprintf("must be at least %d characters", minPasswordLen),
			}},
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.UpdatePrincipal(ctx, principalID, map[string]any{
		"password_hash": string(hash),
	}); err != nil {
		return fmt.Errorf("update principal: %w", err)
	}

	if err := s.store.RevokeAllRefreshTokens(ctx, principalID); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}

	s.logger.Info("password changed", zap.String("principal_id", principalID))
	return nil
}

// ============================================================
// ValidateToken — used by middleware
// ============================================================

// JWTClaims represents the custom claims in access tokens.
type JWTClaims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Invalid or expired token"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "Invalid token"}
	}

	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "Invalid token type"}
	}

	return claims, nil
}

// ============================================================
// Internal helpers
// ============================================================

func (s *AuthService) signAccessToken(principalID, role string) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Sub:  principalID,
		Role: role,
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    "parceiros-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) generateRefreshToken() (raw string, hashed string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(b)
	hashed = hashToken(raw)
	return raw, hashed, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
