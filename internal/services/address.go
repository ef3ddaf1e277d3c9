// internal/services/address.go
package services

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/javajoker/kpay-backend/internal/models"
)

// NormalizeAddress validates a 0x-prefixed 20-byte hex address and returns it
// lower-cased.
func NormalizeAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if len(addr) != 42 || !(strings.HasPrefix(addr, "0x") || strings.HasPrefix(addr, "0X")) {
		return "", fail(ErrInvalidArgument, "malformed address")
	}
	lower := strings.ToLower(addr)
	if _, err := hex.DecodeString(lower[2:]); err != nil {
		return "", fail(ErrInvalidArgument, "malformed address")
	}
	return lower, nil
}

// accountAddress is NormalizeAddress that also rejects the zero address.
func accountAddress(addr string) (string, error) {
	normalized, err := NormalizeAddress(addr)
	if err != nil {
		return "", err
	}
	if normalized == models.ZeroAddress {
		return "", fail(ErrInvalidArgument, "zero address")
	}
	return normalized, nil
}

// DeriveAddress returns the last 20 bytes of keccak256(deployer || nonce).
// Contract and token addresses are derived this way so they are stable.
func DeriveAddress(deployer string, nonce uint64) string {
	raw, _ := hex.DecodeString(strings.TrimPrefix(strings.ToLower(deployer), "0x"))
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], nonce)

	h := sha3.NewLegacyKeccak256()
	h.Write(raw)
	h.Write(n[:])
	sum := h.Sum(nil)
	return "0x" + hex.EncodeToString(sum[12:])
}

func RandomAddress() (string, error) {
	var b [20]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(b[:]), nil
}
