package service

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	orderNumberPrefix = "ORD"
	suffixMin         = 1000
	suffixMax         = 9999
	pickupMin         = 100
	pickupMax         = 999
)

// Rand is the source of the random parts of order numbers and pickup codes.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the runtime's goroutine-safe generator.
var DefaultRand Rand = globalRand{}

func between(r Rand, lo, hi int) int { return lo + r.IntN(hi-lo+1) }

// NewOrderNumber formats ORD-yyyyMMdd-NNNN using the creation date.
func NewOrderNumber(r Rand, at time.Time) string {
	return fmt.Sprintf("%s-%s-%d", orderNumberPrefix, at.Format("20060102"), between(r, suffixMin, suffixMax))
}

func NewPickupCode(r Rand) string {
	return fmt.Sprintf("%d", between(r, pickupMin, pickupMax))
}
