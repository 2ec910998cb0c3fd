package utils_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tickethub/internal/utils"
)

func TestGenerateOrderNumber(t *testing.T) {
	n := utils.GenerateOrderNumber()
	pattern := regexp.MustCompile(`^ORD_\d{8}_[0-9A-F]{8}$`)
	assert.Regexp(t, pattern, n)
	assert.Contains(t, n, time.Now().UTC().Format("20060102"))
}

func TestGenerateTicketNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^TKT_[0-9A-F]{16}$`)
	assert.Regexp(t, pattern, utils.GenerateTicketNumber())
}

func TestGenerateTransactionID(t *testing.T) {
	pattern := regexp.MustCompile(`^TXN_[0-9A-F]{16}$`)
	assert.Regexp(t, pattern, utils.GenerateTransactionID())
}

func TestNumbersAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := utils.GenerateTicketNumber()
		assert.False(t, seen[n], "duplicate ticket number %s", n)
		seen[n] = true
	}
}
