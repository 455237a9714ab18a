package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
)

// Record identifiers are content-derived: a SHA-256 over the salient fields
// plus a disambiguating sequence number. Identical logical requests hash to
// the same identifier and deduplicate; deliberate repeat filings (same fields
// after a revocation) advance the sequence and stay unique. Every replica
// derives the same identifier from the same operation order.

const (
	KindMarriage = "ml"
	KindBirth    = "bc"
	KindDeath    = "dc"
	KindLicense  = "dl"
)

// DeriveID builds a deterministic identifier for a record kind.
func DeriveID(kind string, seq uint64, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(kind))
	for _, p := range parts {
		h.Write([]byte{0x00})
		h.Write([]byte(p))
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seq)
	h.Write(buf[:])
	sum := h.Sum(nil)
	return fmt.Sprintf("%s_%x", kind, sum[:16])
}

// PairKey canonicalizes a partner pair so (A,B) and (B,A) key identically.
func PairKey(account1, account2 string) string {
	accounts := []string{account1, account2}
	sort.Strings(accounts)
	return strings.Join(accounts, "|")
}
