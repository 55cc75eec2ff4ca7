package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dom "vidtube/internal/domain"
)

// UserStore is the part of the user repository the token service and
// session middleware depend on.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (dom.User, error)
	GetPublicByID(ctx context.Context, id int64) (dom.User, error)
	SetRefreshToken(ctx context.Context, id int64, token *string) error
	RotateRefreshToken(ctx context.Context, id int64, current, next string) (bool, error)
}

// TokenConfig holds signing secrets and lifetimes. Access and refresh tokens
// use different secrets so one can never be presented as the other.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// AccessClaims identify the caller of a single request window.
type AccessClaims struct {
	UserID   int64  `json:"_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// RefreshClaims carry only the user id; jti keeps every issued token unique.
type RefreshClaims struct {
	UserID int64 `json:"_id"`
	jwt.RegisteredClaims
}

// TokenPair is what a client receives after login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService issues, verifies and rotates session tokens. It stores nothing
// itself: the live refresh token lives on the user record.
type TokenService struct {
	users UserStore
	cfg   TokenConfig
	now   func() time.Time
}

// NewTokenService returns a TokenService signing with HS256.
func NewTokenService(users UserStore, cfg TokenConfig) *TokenService {
	return &TokenService{users: users, cfg: cfg, now: time.Now}
}

// IssueAccessToken signs identity claims for u.
func (t *TokenService) IssueAccessToken(u dom.User) (string, error) {
	now := t.now()
	claims := AccessClaims{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
		FullName: u.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.AccessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.AccessSecret)
}

// IssueRefreshToken signs a refresh token for u.
func (t *TokenService) IssueRefreshToken(u dom.User) (string, error) {
	now := t.now()
	claims := RefreshClaims{
		UserID: u.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.RefreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.RefreshSecret)
}

// IssueSessionPair issues both tokens and makes the new refresh token the live one.
func (t *TokenService) IssueSessionPair(ctx context.Context, u dom.User) (TokenPair, error) {
	pair, err := t.issuePair(u)
	if err != nil {
		return TokenPair{}, err
	}
	if err := t.users.SetRefreshToken(ctx, u.ID, &pair.RefreshToken); err != nil {
		return TokenPair{}, fmt.Errorf("%w: persist refresh token: %v", dom.ErrInternal, err)
	}
	return pair, nil
}

// VerifyAndRotate checks a presented refresh token against the live one and
// replaces it with a fresh pair. The resolved user is returned whenever the
// token's subject exists, including on ErrTokenStale.
func (t *TokenService) VerifyAndRotate(ctx context.Context, presented string) (dom.User, TokenPair, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return dom.User{}, TokenPair{}, fmt.Errorf("%w: refresh token is required", dom.ErrUnauthorized)
	}
	claims, err := t.parseRefreshToken(presented)
	if err != nil {
		return dom.User{}, TokenPair{}, err
	}
	u, err := t.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, dom.ErrNotFound) {
			return dom.User{}, TokenPair{}, dom.ErrUserNotFound
		}
		return dom.User{}, TokenPair{}, fmt.Errorf("load user: %w", err)
	}
	if u.RefreshToken == nil || subtle.ConstantTimeCompare([]byte(*u.RefreshToken), []byte(presented)) != 1 {
		return u, TokenPair{}, dom.ErrTokenStale
	}

	pair, err := t.issuePair(u)
	if err != nil {
		return u, TokenPair{}, err
	}
	swapped, err := t.users.RotateRefreshToken(ctx, u.ID, presented, pair.RefreshToken)
	if err != nil {
		return u, TokenPair{}, fmt.Errorf("%w: persist refresh token: %v", dom.ErrInternal, err)
	}
	if !swapped {
		// another refresh with the same token won the race
		return u, TokenPair{}, dom.ErrTokenStale
	}
	return u, pair, nil
}

// Revoke clears the live refresh token, ending the session.
func (t *TokenService) Revoke(ctx context.Context, userID int64) error {
	return t.users.SetRefreshToken(ctx, userID, nil)
}

// ParseAccessToken verifies signature and expiry of an access token.
func (t *TokenService) ParseAccessToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := t.parse(token, claims, t.cfg.AccessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (t *TokenService) parseRefreshToken(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := t.parse(token, claims, t.cfg.RefreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (t *TokenService) parse(token string, claims jwt.Claims, secret []byte) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", dom.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return dom.ErrInvalidToken
	}
	return nil
}

func (t *TokenService) issuePair(u dom.User) (TokenPair, error) {
	access, err := t.IssueAccessToken(u)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: sign access token: %v", dom.ErrInternal, err)
	}
	refresh, err := t.IssueRefreshToken(u)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: sign refresh token: %v", dom.ErrInternal, err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
