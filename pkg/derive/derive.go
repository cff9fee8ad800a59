// Package derive computes deterministic custody addresses from stable seeds.
// The same seeds always yield the same 32-char lowercase hex address, so a
// record's address doubles as its uniqueness guard.
package derive

import (
	"crypto/sha256"
	"encoding/hex"
)

func derive(seeds ...string) string {
	h := sha256.New()
	for _, s := range seeds {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// ConfigAddress is the storage address of an admin's protocol config.
func ConfigAddress(admin string) string { return derive("config", admin) }

// LoanAddress is the storage address of the loan for one
// (borrower, collateral asset) pair.
func LoanAddress(borrower, asset string) string { return derive("loan", borrower, asset) }

// EscrowAuthorityAddress is the custody identity holding a loan's collateral.
func EscrowAuthorityAddress(loanID string) string { return derive("escrow", loanID) }

// CurrencyEscrowAddress is the account holding a loan's escrowed principal
// and repayment funds.
func CurrencyEscrowAddress(loanID string) string { return derive("escrow-funds", loanID) }
