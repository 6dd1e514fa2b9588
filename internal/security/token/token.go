// Package token signs and verifies the access and refresh JWTs.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

var ErrMissingBearer = errors.New("missing bearer token")

// RoleClaim is the role snapshot embedded at issue time.
type RoleClaim struct {
	ID            string   `json:"id"`
	RoleName      string   `json:"roleName"`
	AccessModules []string `json:"accessModules"`
}

// Claims is the payload shared by access and refresh tokens.
type Claims struct {
	UserID string    `json:"userId"`
	Role   RoleClaim `json:"role"`
	jwt.RegisteredClaims
}

// Pair is a freshly signed access/refresh token pair.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// Manager issues and parses tokens. Access and refresh tokens use separate secrets so one can
// never be presented as the other.
type Manager struct {
	cfg Config
	now func() time.Time
}

func NewManager(cfg Config) *Manager {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 24 * time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "rbac"
	}
	return &Manager{cfg: cfg, now: time.Now}
}

// IssuePair signs a new access and refresh token over the same subject.
func (m *Manager) IssuePair(userID string, role RoleClaim) (Pair, error) {
	if userID == "" {
		return Pair{}, fmt.Errorf("user id required")
	}
	access, err := m.sign(userID, role, m.cfg.AccessSecret, m.cfg.AccessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := m.sign(userID, role, m.cfg.RefreshSecret, m.cfg.RefreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *Manager) ParseAccess(raw string) (*Claims, error) {
	return m.parse(raw, m.cfg.AccessSecret)
}

func (m *Manager) ParseRefresh(raw string) (*Claims, error) {
	return m.parse(raw, m.cfg.RefreshSecret)
}

func (m *Manager) sign(userID string, role RoleClaim, secret string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			Subject:   userID,
			Issuer:    m.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (m *Manager) parse(raw, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(m.now), jwt.WithIssuer(m.cfg.Issuer))
	if err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// ExtractBearer returns the credential of an "Authorization: Bearer <token>" header.
func ExtractBearer(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", ErrMissingBearer
	}
	return parts[1], nil
}
