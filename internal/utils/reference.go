package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const referenceCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReference generates a unique reference such as an application,
// award or payout number, e.g. APP_20250901_X7K2M9QD
func GenerateReference(prefix string) string {
	result := make([]byte, 8)
	for i := range result {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(referenceCharset))))
		result[i] = referenceCharset[n.Int64()]
	}

	timestamp := time.Now().Format("20060102")
	return fmt.Sprintf("%s_%s_%s", prefix, timestamp, string(result))
}

// GenerateAgentCode creates a short unique code an agent is identified by
func GenerateAgentCode(length int) string {
	result := make([]byte, length)
	for i := range result {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(referenceCharset))))
		result[i] = referenceCharset[n.Int64()]
	}
	return string(result)
}
