// Package models holds the application domain types and the validation rules
// attached to them.
package models

import (
	"regexp"
	"time"

	dErrors "seva/pkg/domain-errors"
)

// Kind distinguishes the two application subtypes.
type Kind string

const (
	// KindPAN is an identity-document issuance request keyed by a 12-digit
	// Aadhaar number.
	KindPAN Kind = "pan"
	// KindLL is a learner's licence driving-test application keyed by an
	// application number and date of birth.
	KindLL Kind = "ll"
)

// Status is the lifecycle status of an application.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// TestStatus is the outcome state of an LL test result.
type TestStatus string

const (
	TestStatusPending TestStatus = "pending"
	TestStatusPassed  TestStatus = "passed"
	TestStatusFailed  TestStatus = "failed"
)

// Application is one citizen-service application. ID is the sequence-allocated
// public identifier; RowID is the storage row and never leaves the store.
type Application struct {
	RowID          int64
	ID             int64
	Kind           Kind
	Name           string
	Mobile         string
	Aadhaar        string
	PANNumber      *string
	AppNo          *string
	DOB            *time.Time
	Password       string
	WalletBalance  float64
	Status         Status
	TextFeed       *string
	DocumentStatus *string
	CreatedAt      time.Time

	// TestResult is populated for LL applications.
	TestResult *TestResult
}

// TestResult is the one-to-one driving-test outcome for an LL application.
type TestResult struct {
	ApplicationID   int64
	Score           int
	Status          TestStatus
	ExaminerRemarks *string
	TestDate        *time.Time
}

var (
	aadhaarRE = regexp.MustCompile(`^\d{12}$`)
	panRE     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	dateRE    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ValidateAadhaar checks the submission-time rule: exactly 12 numeric digits.
func ValidateAadhaar(aadhaar string) error {
	if !aadhaarRE.MatchString(aadhaar) {
		return dErrors.New(dErrors.CodeValidation, "invalid Aadhaar number: must be 12 digits")
	}
	return nil
}

/// ValidatePANNumber checks the generated document number shape:
// 5 letters, 4 digits, 1 letter (e.g. ABCDE1234F).
func ValidatePANNumber(pan string) error {
	if !panRE.MatchString(pan) {
		return dErrors.New(dErrors.CodeValidation,
			"invalid PAN number format: must be 5 letters, 4 numbers, 1 letter (e.g. ABCDE1234F)")
	}
	return nil
}

// ParseStatus validates a lifecycle status value.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusActive, StatusCompleted:
		return Status(s), nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation,
		"invalid status %q: must be one of pending, active, completed", s)
}

// ParseTestStatus validates a test result status value.
func ParseTestStatus(s string) (TestStatus, error) {
	switch TestStatus(s) {
	case TestStatusPending, TestStatusPassed, TestStatusFailed:
		return TestStatus(s), nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation,
		"invalid test status %q: must be one of pending, passed, failed", s)
}

// ParseDOB normalizes a date-of-birth input. Empty, null-ish and
// "Invalid Date" inputs (a browser artifact the old UI produced) resolve to
// no value; anything else must be a strict YYYY-MM-DD date.
func ParseDOB(s string) (*time.Time, error) {
	if s == "" || s == "null" || s == "Invalid Date" {
		return nil, nil
	}
	if !dateRE.MatchString(s) {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid date format: use YYYY-MM-DD")
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid date format: use YYYY-MM-DD")
	}
	return &t, nil
}
