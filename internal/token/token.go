package token

import (
	"fmt"
	"time"

	"filemart/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// Kind selects which signing secret a token is bound to. Admin and user
// tokens are disjoint: a token of one kind never verifies as the other.
type Kind string

const (
	KindAdmin Kind = "admin"
	KindUser  Kind = "user"
)

// Policy TTLs. These are defaults, not protocol requirements.
const (
	AdminTTL = 24 * time.Hour
	UserTTL  = 30 * 24 * time.Hour
)

// Claims is the payload carried by a session token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Codec issues and verifies HS256 session tokens. Secrets are fixed at
// construction; there is no revocation list, rotation happens by restarting
// with a new secret.
type Codec struct {
	secrets map[Kind][]byte
}

func NewCodec(adminSecret, userSecret string) *Codec {
	return &Codec{
		secrets: map[Kind][]byte{
			KindAdmin: []byte(adminSecret),
			KindUser:  []byte(userSecret),
		},
	}
}

// Issue signs a token for the given kind with issuedAt=now, expiresAt=now+ttl.
func (c *Codec) Issue(kind Kind, subject, email, name string, ttl time.Duration) (string, error) {
	secret, ok := c.secrets[kind]
	if !ok {
		return "", fmt.Errorf("unknown token kind %q", kind)
	}

	now := time.Now()
	claims := &Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}

	return signed, nil
}

// Verify checks signature and expiry under the secret bound to kind.
// Malformed, expired and forged tokens all come back as ErrInvalidToken;
// callers are not told which.
func (c *Codec) Verify(kind Kind, tokenString string) (*Claims, error) {
	secret, ok := c.secrets[kind]
	if !ok {
		return nil, model.ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, model.ErrInvalidToken
	}

	return claims, nil
}
