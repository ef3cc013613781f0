package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const apiKeyPrefix = "mgw_"

// GenerateAPIKey возвращает непредсказуемый ключ вида mgw_<64 hex символа>
func GenerateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return apiKeyPrefix + hex.EncodeToString(buf), nil
}
