package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"authdemo/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSession = errors.New("invalid session")

const sessionIssuer = "authdemo"

// SessionCodec turns an Identity into a cookie value and back.
type SessionCodec interface {
	Encode(identity models.Identity, ttl time.Duration) (string, error)
	Decode(value string) (*models.Identity, error)
}

// JSONCodec stores the identity as plain JSON, percent-encoded so it survives as a
// cookie value. It carries no integrity protection.
type JSONCodec struct{}

func (JSONCodec) Encode(identity models.Identity, _ time.Duration) (string, error) {
	b, err := json.Marshal(identity)
	if err != nil {
		return "", err
	}
	return url.PathEscape(string(b)), nil
}

func (JSONCodec) Decode(value string) (*models.Identity, error) {
	raw, err := url.PathUnescape(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	var identity *models.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if identity == nil {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidSession)
	}
	return identity, nil
}

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// SignedCodec stores the identity in an HS256 token that expires with the cookie.
type SignedCodec struct {
	secret []byte
	now    func() time.Time
}

func NewSignedCodec(secret string) (*SignedCodec, error) {
	if len(secret) < 32 {
		return nil, errors.New("session secret must be at least 32 bytes")
	}
	return &SignedCodec{secret: []byte(secret), now: time.Now}, nil
}

func (c *SignedCodec) Encode(identity models.Identity, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("session ttl must be positive")
	}
	now := c.now()
	claims := sessionClaims{
		Email: identity.Email,
		Name:  identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			Issuer:    sessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *SignedCodec) Decode(value string) (*models.Identity, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return &models.Identity{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
	}, nil
}

// NewSessionCodec picks the signed codec when a secret is configured.
func NewSessionCodec(secret string) (SessionCodec, error) {
	if secret == "" {
		return JSONCodec{}, nil
	}
	codec, err := NewSignedCodec(secret)
	if err != nil {
		return nil, err
	}
	return codec, nil
}
