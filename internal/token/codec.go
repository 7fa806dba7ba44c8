package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long an issued check-in token stays valid unless
// the caller overrides it.
const DefaultTTL = 24 * time.Hour

var (
	// ErrTokenExpired means the payload was well-formed and correctly
	// signed but past its expiry.
	ErrTokenExpired = errors.New("check-in token expired")
	// ErrTokenInvalid covers tampered signatures and malformed payloads.
	ErrTokenInvalid = errors.New("check-in token invalid")
)

// Pair is the (event, user) binding carried by a verified token.
type Pair struct {
	EventID string
	UserID  string
}

// Codec issues and verifies the signed, expiring check-in tokens that
// bind an (event, user) pair. Tokens are never persisted; validity is
// entirely signature plus expiry at verification time.
type Codec struct {
	secret []byte
}

// NewCodec creates a codec around the process-wide signing secret.
func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

// Issue produces an opaque signed string encoding the pair and an
// expiry. ttl == 0 falls back to DefaultTTL.
func (c *Codec) Issue(eventID, userID string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	now := time.Now()

	claims := jwt.MapClaims{
		"event": eventID,
		"user":  userID,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign check-in token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the bound pair. The
// two failure kinds are distinguished so callers can surface stable
// error codes.
func (c *Codec) Verify(tokenString string) (*Pair, error) {
	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return nil, ErrTokenInvalid
	}

	eventID, ok := claims["event"].(string)
	if !ok || eventID == "" {
		return nil, ErrTokenInvalid
	}
	userID, ok := claims["user"].(string)
	if !ok || userID == "" {
		return nil, ErrTokenInvalid
	}

	return &Pair{EventID: eventID, UserID: userID}, nil
}
