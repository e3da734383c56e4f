package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"estatedesk.app/internal/ids"
)

const cookieIssuer = "estatedesk"

// ErrInvalidCookie covers tampered, expired or foreign cookie values.
var ErrInvalidCookie = errors.New("session: invalid cookie")

type cookieClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Codec signs and verifies the cookie that carries the session id.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret string) (*Codec, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	return &Codec{secret: []byte(secret), now: time.Now}, nil
}

// Encode returns an HS256 token binding sid for ttl.
func (c *Codec) Encode(sid string, ttl time.Duration) (string, error) {
	if !ids.Valid(sid) {
		return "", fmt.Errorf("encode cookie: malformed session id %q", sid)
	}
	now := c.now().UTC()
	claims := cookieClaims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cookieIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign cookie: %w", err)
	}
	return signed, nil
}

// Decode verifies the token and returns the session id.
func (c *Codec) Decode(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidCookie
	}
	parsed, err := jwt.ParseWithClaims(token, &cookieClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidCookie
		}
		return c.secret, nil
	},
		jwt.WithIssuer(cookieIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", ErrInvalidCookie
	}
	claims, ok := parsed.Claims.(*cookieClaims)
	if !ok || !parsed.Valid || !ids.Valid(claims.SessionID) {
		return "", ErrInvalidCookie
	}
	return claims.SessionID, nil
}
