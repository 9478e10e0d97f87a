package service

import (
	"fmt"
	"math/rand"
	"time"
)

// NewOrderReference builds the human-facing correlation id for one
// checkout attempt: "AH" + yymmdd + 4 random digits. The same value is
// written to the order, the invoice number and the gateway session, so a
// provider callback maps back to exactly one order.
func NewOrderReference(now time.Time) string {
	return fmt.Sprintf("AH%s%04d", now.Format("060102"), rand.Intn(10000))
}
