package config

import (
	"encoding/hex"
	"fmt"
)

// decodeHexKey decodes a hex-encoded AES-256 key and enforces its length.
func decodeHexKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key from hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes (64 hex characters), got %d bytes", len(key))
	}
	return key, nil
}
