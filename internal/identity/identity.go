// Package identity computes the content-derived identifier that keys every
// transaction. The same date, description, and amount always hash to the
// same ID, which is what makes re-imports deduplicate.
//
// These are deterministic identity algorithms; no randomness allowed.
package identity

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"

	"fjacquet/budget-cli/internal/budgeterror"

	"github.com/shopspring/decimal"
)

// dateLayout fixes the serialization of the date component so hashes stay
// stable across runs and platforms.
const dateLayout = "2006-01-02"

// Hash derives the transaction ID from its date, description, and amount.
// The amount is converted to an exact integer count of minor currency units
// before hashing, so float formatting can never shift the identity. Account
// and import source deliberately do not participate: logically identical
// transactions from different sources must collide.
func Hash(date time.Time, description string, amount decimal.Decimal) (string, error) {
	if date.IsZero() {
		return "", &budgeterror.IdentityError{Field: "date", Reason: "is zero"}
	}
	if description == "" {
		return "", &budgeterror.IdentityError{Field: "description", Reason: "is empty"}
	}

	minorUnits := amount.Shift(2).Truncate(0).IntPart()
	var amountBytes [8]byte
	binary.BigEndian.PutUint64(amountBytes[:], uint64(minorUnits))

	h := sha256.New()
	h.Write([]byte(date.Format(dateLayout)))
	h.Write([]byte(description))
	h.Write(amountBytes[:])
	return hex.EncodeToString(h.Sum(nil)), nil
}
