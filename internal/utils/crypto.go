// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
)

const (
	apiKeyPrefix = "kp_"
	apiKeyLength = 32
	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RandomToken draws n characters uniformly from [a-zA-Z0-9].
func RandomToken(n int) (string, error) {
	max := big.NewInt(int64(len(alphanumeric)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphanumeric[idx.Int64()]
	}
	return string(out), nil
}

// GenerateAPIKey returns a fresh account secret such as "kp_3fZ...".
func GenerateAPIKey() (string, error) {
	token, err := RandomToken(apiKeyLength)
	if err != nil {
		return "", err
	}
	return apiKeyPrefix + token, nil
}

// KeyFingerprint identifies an API key in logs without revealing it.
func KeyFingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:4])
}
