// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the cookie carrying a signed room session.
const CookieName = "room_session"

// SessionTTL bounds how long a room session cookie stays valid.
const SessionTTL = 24 * time.Hour

// privateKey and publicKey are used for signing and verifying room tokens.
var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
)

var ErrInvalidToken = errors.New("invalid room session")

// InitFromSecret derives the signing key from secret so tokens survive restarts.
// An empty secret generates a random key; generated reports that case.
func InitFromSecret(secret string) (generated bool, err error) {
	if secret == "" {
		publicKey, privateKey, err = ed25519.GenerateKey(nil)
		if err != nil {
			return false, fmt.Errorf("failed to generate ed25519 key pair: %w", err)
		}
		return true, nil
	}
	seed := sha256.Sum256([]byte(secret))
	privateKey = ed25519.NewKeyFromSeed(seed[:])
	publicKey = privateKey.Public().(ed25519.PublicKey)
	return false, nil
}

// CreateRoomToken signs a token with "sub" = roomID.
func CreateRoomToken(roomID uuid.UUID) (string, error) {
	if privateKey == nil {
		return "", errors.New("session signing key not initialized")
	}
	claims := jwt.MapClaims{
		"sub": roomID.String(),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(SessionTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// AuthenticateRoomToken verifies a room token and returns its room id.
func AuthenticateRoomToken(tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, fmt.Errorf("%w: missing token", ErrInvalidToken)
	}
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !t.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	sub, err := t.Claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	roomID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed room id", ErrInvalidToken)
	}
	return roomID, nil
}
