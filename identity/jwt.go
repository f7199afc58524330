package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"eshopperz/ent"
)

var (
	// ErrInvalidToken is returned when the token is malformed, badly signed or
	// issued for someone else.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

type Claims struct {
	UserID int64    `json:"uid"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type TokenConfig struct {
	Key    string
	Issuer string
	TTL    time.Duration
}

// TokenManager issues and validates HS256 bearer tokens.
type TokenManager struct {
	config TokenConfig
	now    func() time.Time
}

func NewTokenManager(config TokenConfig) *TokenManager {
	return &TokenManager{config: config, now: time.Now}
}

// Issue signs a token carrying the user's identity and role claims. Issuer
// and audience are both the configured issuer.
func (m *TokenManager) Issue(u ent.User) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Roles:  append([]string{}, u.Roles...),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Audience:  jwt.ClaimStrings{m.config.Issuer},
			Subject:   u.Email,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.config.Key))
}

func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(m.config.Key), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
