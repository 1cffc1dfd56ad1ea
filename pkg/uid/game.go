package uid

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateGameID returns a random 128-bit hex game ID
func GenerateGameID() string {
	return randomHex(16)
}

// GenerateConnectionID returns a short random ID used to tag websocket
// connections in logs
func GenerateConnectionID() string {
	return randomHex(6)
}

func randomHex(n int) string {
	bytes := make([]byte, n)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
