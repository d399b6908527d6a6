package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quarrylab/quarry/internal/policy"
)

// Claims holds the typed JWT payload.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer constructs a TokenIssuer with the given HMAC secret and
// token lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed JWT for the given user.
func (t *TokenIssuer) Issue(user *User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses and validates a token string and returns the principal it
// encodes. Tokens carrying an unknown role are rejected here so the policy
// core never sees an invalid principal.
func (t *TokenIssuer) Verify(raw string) (policy.Principal, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		return policy.Principal{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return policy.Principal{}, jwt.ErrTokenInvalidClaims
	}

	role := policy.Role(claims.Role)
	if !role.Valid() || claims.UserID <= 0 {
		return policy.Principal{}, jwt.ErrTokenInvalidClaims
	}

	return policy.Principal{ID: claims.UserID, Role: role}, nil
}
