package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ohulko/matkarnia/internal/kv"
)

type settings struct {
	JWTSecret string `json:"jwt_secret,omitempty"`
}

// GetJWTSecret retrieves the JWT secret from settings. If no secret exists,
// it generates one, stores it, and returns it. The generate-then-write runs
// inside one transaction to avoid a TOCTOU race on concurrent startup.
func GetJWTSecret(ctx context.Context, s *kv.Store) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	var secret string
	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		var cfg settings
		if err := tx.Get(keySettings, &cfg); err != nil {
			return err
		}
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = candidate
			if err := tx.Put(keySettings, cfg); err != nil {
				return err
			}
		}
		secret = cfg.JWTSecret
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("loading jwt secret: %w", err)
	}
	return secret, nil
}

type revocation struct {
	JTI       string    `json:"jti"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RevokeToken adds a token's JTI to the revocation list, opportunistically
// dropping entries that have already expired.
func RevokeToken(ctx context.Context, s *kv.Store, jti string, expiresAt time.Time) error {
	return s.WithTx(ctx, func(tx *kv.Tx) error {
		var revoked []revocation
		if err := tx.Get(keyRevokedTokens, &revoked); err != nil {
			return err
		}

		now := time.Now()
		kept := revoked[:0]
		for _, r := range revoked {
			if r.ExpiresAt.After(now) {
				kept = append(kept, r)
			}
		}
		for _, r := range kept {
			if r.JTI == jti {
				return tx.Put(keyRevokedTokens, kept)
			}
		}
		kept = append(kept, revocation{JTI: jti, ExpiresAt: expiresAt})
		return tx.Put(keyRevokedTokens, kept)
	})
}

// IsTokenRevoked checks if a token's JTI has been revoked.
func IsTokenRevoked(ctx context.Context, s *kv.Store, jti string) (bool, error) {
	var revoked []revocation
	if err := s.Get(ctx, keyRevokedTokens, &revoked); err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	for _, r := range revoked {
		if r.JTI == jti {
			return true, nil
		}
	}
	return false, nil
}
