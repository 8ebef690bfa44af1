package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

const batchIDBytes = 6

// NewBatchID returns an id such as "20250601-3F9A0C12B7DE" for a send batch
// started at t.
func NewBatchID(t time.Time) (string, error) {
	suffix := make([]byte, batchIDBytes)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	return t.UTC().Format("20060102") + "-" + strings.ToUpper(hex.EncodeToString(suffix)), nil
}
