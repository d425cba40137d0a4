// Package session issues and verifies the signed bearer tokens that carry a caller's identity.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/clubhouse/internal/dependencies/clock"
	"github.com/mcoot/clubhouse/internal/model"
)

// TokenTTL is the fixed lifetime of an issued token. Tokens cannot be revoked
// before they expire.
const TokenTTL = 7 * 24 * time.Hour

// Errors
var (
	ErrMissingToken = errors.New("access token required")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims is the JWT payload
type Claims struct {
	AccountID int64  `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	PlayerID  *int64 `json:"player_id"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 tokens with a process-wide secret
type Issuer struct {
	secret []byte
	clock  clock.Clock
}

// NewIssuer creates an Issuer signing with secret
func NewIssuer(secret []byte, clock clock.Clock) *Issuer {
	return &Issuer{
		secret: secret,
		clock:  clock,
	}
}

// Issue signs a token for identity and returns it with its expiry
func (i *Issuer) Issue(identity model.Identity) (string, time.Time, error) {
	now := i.clock.Now()
	expiresAt := now.Add(TokenTTL)

	claims := Claims{
		AccountID: int64(identity.AccountID),
		Email:     identity.Email,
		Role:      string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(int64(identity.AccountID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if identity.PlayerID != nil {
		pid := int64(*identity.PlayerID)
		claims.PlayerID = &pid
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify checks the token's signature and expiry and returns the identity it carries.
// An empty token yields ErrMissingToken; anything else that fails yields ErrInvalidToken.
func (i *Issuer) Verify(token string) (*model.Identity, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	role := model.Role(claims.Role)
	if !role.IsValid() || claims.AccountID <= 0 {
		return nil, ErrInvalidToken
	}

	identity := &model.Identity{
		AccountID: model.AccountID(claims.AccountID),
		Email:     claims.Email,
		Role:      role,
	}
	if claims.PlayerID != nil {
		pid := model.PlayerID(*claims.PlayerID)
		identity.PlayerID = &pid
	}
	return identity, nil
}
