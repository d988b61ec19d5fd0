package helpers

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// IDGenerator generates various types of IDs
type IDGenerator struct {
	rand *rand.Rand
}

// NewIDGenerator creates a new ID generator
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GenerateUUID generates a UUID v4
func (g *IDGenerator) GenerateUUID() string {
	return uuid.New().String()
}

// GenerateLedgerEntryID generates a ledger entry ID (VARCHAR format)
// Format: TRX-YYYYMMDD-XXXXXX (e.g., TRX-20241029-A1B2C3)
func (g *IDGenerator) GenerateLedgerEntryID() string {
	now := time.Now()
	dateStr := now.Format("20060102")

	// Generate 6 character random alphanumeric suffix
	suffix := g.randomAlphanumeric(6)

	return fmt.Sprintf("TRX-%s-%s", dateStr, suffix)
}

// GenerateEvidenceReference generates an opaque reference for a stored evidence frame
func (g *IDGenerator) GenerateEvidenceReference(sessionID uint64) string {
	return fmt.Sprintf("EVD-%d-%s", sessionID, uuid.New().String())
}

// GenerateOrderID generates a payment order ID
func (g *IDGenerator) GenerateOrderID() string {
	now := time.Now()
	timestamp := now.Unix()
	random := g.rand.Intn(9999)
	return fmt.Sprintf("ORD-%d-%04d", timestamp, random)
}

// GenerateCode generates a random alphanumeric code
func (g *IDGenerator) GenerateCode(length int) string {
	return g.randomAlphanumeric(length)
}

// randomAlphanumeric generates a random alphanumeric string
func (g *IDGenerator) randomAlphanumeric(length int) string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		result[i] = chars[g.rand.Intn(len(chars))]
	}
	return string(result)
}
