// Package models holds the search-history ledger types.
package models

import (
	"strings"
	"time"

	dErrors "seva/pkg/domain-errors"
)

// MaskedPAN is the fixed placeholder returned in place of a PAN number when
// the entry's visibility gate is closed.
const MaskedPAN = "•••••••••"

// Entry is one append-only record of a lookup against an Aadhaar number. The
// PAN number and status are cached copies of the matched application's state
// and are lazily refreshed on read.
type Entry struct {
	ID         int64
	UserID     string
	Aadhaar    string
	IPAddress  string
	UserAgent  string
	Service    string
	PANNumber  *string
	Status     string
	Visible    bool
	SearchedAt time.Time
}

// ValidateAadhaar checks the lookup-time rule: exactly 12 characters. The
// stricter all-digits rule applies at application submission, not lookup.
func ValidateAadhaar(aadhaar string) error {
	if len(aadhaar) != 12 {
		return dErrors.New(dErrors.CodeValidation, "invalid Aadhaar number: must be 12 characters")
	}
	return nil
}

// FormatAadhaar renders an Aadhaar number in 4-character groups for display.
func FormatAadhaar(aadhaar string) string {
	var b strings.Builder
	for i, r := range aadhaar {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DisplayPAN applies the visibility gate to an entry's cached PAN number.
func (e *Entry) DisplayPAN() string {
	if e.Visible && e.PANNumber != nil {
		return *e.PANNumber
	}
	return MaskedPAN
}
