package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func hexUpper(n int) string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:n]
}

// GenerateOrderNumber returns a human-scannable order number, e.g.
// ORD_20250829_3F9A1C02.
func GenerateOrderNumber() string {
	return fmt.Sprintf("ORD_%s_%s", time.Now().UTC().Format("20060102"), hexUpper(8))
}

// GenerateTicketNumber returns a globally unique ticket number.
func GenerateTicketNumber() string {
	return fmt.Sprintf("TKT_%s", hexUpper(16))
}

// GenerateTransactionID returns a globally unique payment transaction id.
func GenerateTransactionID() string {
	return fmt.Sprintf("TXN_%s", hexUpper(16))
}

// NewID returns a random UUID string for primary keys.
func NewID() string {
	return uuid.NewString()
}
