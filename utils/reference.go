package utils

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var mu sync.Mutex
var seededRand *rand.Rand

func init() {
	seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))
}

// GenerateReference produces a transaction reference of the form
// TXN-<unix>-<random>. References are unique-indexed in the database; callers
// regenerate on a duplicate-key collision.
func GenerateReference() string {
	mu.Lock()
	defer mu.Unlock()

	return fmt.Sprintf("TXN-%d-%06d", time.Now().Unix(), seededRand.Intn(1000000))
}

// GenerateInvestmentReference produces a reference for investment records.
func GenerateInvestmentReference(userID uint) string {
	mu.Lock()
	defer mu.Unlock()

	nanoPart := time.Now().UnixNano() % 1000000
	randPart := seededRand.Intn(900) + 100
	return fmt.Sprintf("INV-%06d%03d%d", nanoPart, randPart, userID)
}
