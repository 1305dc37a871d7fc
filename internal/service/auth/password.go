package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier defines the interface for comparing secrets against hashes.
type PasswordVerifier interface {
	// Compare compares a hashed password with its possible plaintext equivalent.
	// Returns nil on success, or an error on failure (e.g., mismatch).
	Compare(hashedPassword, password string) error
}

// BcryptVerifier implements PasswordVerifier using bcrypt.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare implements the PasswordVerifier interface using bcrypt.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// HashToken returns the bcrypt hash of a static API token.
func HashToken(token string, cost int) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hash), nil
}

// Authenticator validates bearer credentials. A JWT is tried first; a static
// token is checked against the configured bcrypt hash.
type Authenticator struct {
	jwt       JWTService
	tokenHash string
	verifier  PasswordVerifier
}

// NewAuthenticator builds an Authenticator. Either jwtService or tokenHash
// may be empty, but not both.
func NewAuthenticator(jwtService JWTService, tokenHash string, verifier PasswordVerifier) (*Authenticator, error) {
	if jwtService == nil && tokenHash == "" {
		return nil, ErrAuthNotConfigured
	}
	if verifier == nil {
		verifier = NewBcryptVerifier()
	}
	return &Authenticator{jwt: jwtService, tokenHash: tokenHash, verifier: verifier}, nil
}

// Authenticate returns the caller's claims. Static tokens carry user id 0.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	var jwtErr error
	if a.jwt != nil {
		claims, err := a.jwt.ValidateToken(ctx, token)
		if err == nil {
			return claims, nil
		}
		jwtErr = err
		// A well-formed but expired JWT is never a static token.
		if errors.Is(err, ErrExpiredToken) || errors.Is(err, ErrTokenNotYetValid) {
			return nil, err
		}
	}

	if a.tokenHash != "" {
		if err := a.verifier.Compare(a.tokenHash, token); err == nil {
			return &Claims{Subject: "api-token"}, nil
		}
		return nil, ErrInvalidToken
	}
	return nil, jwtErr
}
