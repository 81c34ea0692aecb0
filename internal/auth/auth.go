// Package auth guards the control plane's mutating routes with a
// bearer-token admin check: an operator-configured shared secret
// (stored only as a bcrypt hash) exchanges for a short-lived signed
// session token, the same two-step shape pkg/auth uses for its
// JWT-over-bcrypt login flow.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// SessionTTL is how long an issued session token stays valid.
const SessionTTL = time.Hour

// Claims is the session token payload; there is exactly one subject
// here (the admin), so it carries no role/permission lists.
type Claims struct {
	jwt.RegisteredClaims
}

// Guard validates the admin secret and issues/validates session
// tokens signed with a process-lifetime HMAC key.
type Guard struct {
	adminTokenHash string
	jwtSecret      []byte
	// enabled is false when no admin token hash is configured —
	// matches the default local/loopback deployment in spec §6 where
	// the control surface is not guarded.
	enabled bool
}

// New constructs a Guard. adminTokenHash is a bcrypt hash of the
// shared admin secret (from config); an empty hash disables the
// guard entirely. The signing key is generated fresh per process, so
// every session token is invalidated on restart — acceptable since
// there is no persisted session store to invalidate instead.
func New(adminTokenHash string) (*Guard, error) {
	if adminTokenHash == "" {
		return &Guard{enabled: false}, nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("auth: generate signing secret: %w", err)
	}

	return &Guard{
		adminTokenHash: adminTokenHash,
		jwtSecret:      []byte(hex.EncodeToString(secret)),
		enabled:        true,
	}, nil
}

// Enabled reports whether this Guard actually checks anything.
func (g *Guard) Enabled() bool {
	return g.enabled
}

// Login exchanges the admin secret for a signed session token.
func (g *Guard) Login(secret string) (token string, expiresAt int64, err error) {
	if err := bcrypt.CompareHashAndPassword([]byte(g.adminTokenHash), []byte(secret)); err != nil {
		return "", 0, errors.New("auth: invalid admin secret")
	}

	expiry := time.Now().Add(SessionTTL)
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiry),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    "netspot-control",
		Subject:   "admin",
	}}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.jwtSecret)
	if err != nil {
		return "", 0, fmt.Errorf("auth: sign session token: %w", err)
	}
	return signed, expiry.Unix(), nil
}

// Validate checks a bearer token presented on a mutating request.
func (g *Guard) Validate(token string) error {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.jwtSecret, nil
	})
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if !parsed.Valid {
		return errors.New("auth: invalid session token")
	}
	return nil
}

// HashSecret bcrypt-hashes an admin secret for storage in config.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash secret: %w", err)
	}
	return string(hash), nil
}
