package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"seva/internal/application/models"
	"seva/internal/application/store"
	"seva/internal/audit"
	dErrors "seva/pkg/domain-errors"
	"seva/pkg/platform/sentinel"
)

// fieldColumns is the partial-update allow-list: request field to column.
// Anything not listed is silently ignored.
var fieldColumns = map[string]string{
	"appNo":     "app_no",
	"aadhar":    "aadhar",
	"panNumber": "pan_number",
	"dob":       "dob",
	"walletBal": "wallet_bal",
	"status":    "status",
	"textFeed":  "text_feed",
	"password":  "password",
	"name":      "name",
	"mobile":    "mobile",
}

// fieldOrder fixes the patch column order so queries are deterministic.
var fieldOrder = []string{
	"appNo", "aadhar", "panNumber", "dob", "walletBal",
	"status", "textFeed", "password", "name", "mobile",
}

// Update applies a partial update to one application. When the update
// attaches a PAN number, every history entry for the record's Aadhaar is
// force-completed in the same transaction — the first reconciliation
// trigger.
func (s *Service) Update(ctx context.Context, id int64, fields map[string]any) (*models.Application, error) {
	patch, assignedPAN, err := buildPatch(fields)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, dErrors.New(dErrors.CodeValidation, "no valid fields to update")
	}

	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		matched, err := s.stores.Update(ctx, id, *patch)
		if err != nil {
			return err
		}
		if !matched {
			return sentinel.ErrNotFound
		}
		if assignedPAN == "" {
			return nil
		}
		app, err := s.stores.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if app.Kind != models.KindPAN || app.Aadhaar == "" {
			return nil
		}
		return s.history.MarkCompletedByAadhaar(ctx, app.Aadhaar, assignedPAN)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "application number already exists")
		}
		return nil, s.storeError(ctx, "update application", err)
	}

	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, audit.ActionApplicationUpdated, fmt.Sprintf("application:%d", id),
		map[string]any{"fields": patchFieldNames(fields)})
	return app, nil
}

// UpdateTestResult records an LL test outcome and reconciles the parent
// application's lifecycle status — the second reconciliation trigger.
// Passed activates the application, failed sends it back to pending, and a
// pending result leaves the status untouched. Both writes share one
// transaction.
func (s *Service) UpdateTestResult(ctx context.Context, id int64, score int, status, remarks string) (*models.Application, error) {
	testStatus, err := models.ParseTestStatus(status)
	if err != nil {
		return nil, err
	}

	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.stores.UpdateTestResult(ctx, id, score, testStatus, remarks); err != nil {
			return err
		}
		switch testStatus {
		case models.TestStatusPassed:
			return s.stores.UpdateStatus(ctx, id, models.StatusActive)
		case models.TestStatusFailed:
			return s.stores.UpdateStatus(ctx, id, models.StatusPending)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, s.storeError(ctx, "update test result", err)
	}

	s.metrics.IncTestResultsRecorded(string(testStatus))
	s.emit(ctx, audit.ActionTestResultUpdated, fmt.Sprintf("application:%d", id),
		map[string]any{"status": string(testStatus)})
	return s.Get(ctx, id)
}

// buildPatch validates the supplied fields and resolves them against the
// allow-list. Returns the assigned PAN number when the patch sets one.
func buildPatch(fields map[string]any) (*store.Patch, string, error) {
	patch := &store.Patch{}
	assignedPAN := ""

	for _, field := range fieldOrder {
		raw, present := fields[field]
		if !present {
			continue
		}
		column := fieldColumns[field]

		switch field {
		case "status":
			v, err := stringField(field, raw)
			if err != nil {
				return nil, "", err
			}
			status, err := models.ParseStatus(v)
			if err != nil {
				return nil, "", err
			}
			patch.Set(column, status)

		case "panNumber":
			v, err := stringField(field, raw)
			if err != nil {
				return nil, "", err
			}
			v = strings.TrimSpace(v)
			if v == "" {
				patch.Set(column, nil)
				continue
			}
			if err := models.ValidatePANNumber(v); err != nil {
				return nil, "", err
			}
			patch.Set(column, v)
			assignedPAN = v

		case "dob":
			v, err := stringField(field, raw)
			if err != nil {
				return nil, "", err
			}
			parsed, err := models.ParseDOB(v)
			if err != nil {
				return nil, "", err
			}
			if parsed == nil {
				patch.Set(column, nil)
			} else {
				patch.Set(column, *parsed)
			}

		case "walletBal":
			v, ok := raw.(float64)
			if !ok {
				return nil, "", dErrors.Newf(dErrors.CodeValidation, "invalid value for field %q", field)
			}
			patch.Set(column, v)

		default:
			v, err := stringField(field, raw)
			if err != nil {
				return nil, "", err
			}
			patch.Set(column, v)
		}
	}
	return patch, assignedPAN, nil
}

func stringField(field string, raw any) (string, error) {
	if raw == nil {
		return "", nil
	}
	v, ok := raw.(string)
	if !ok {
		return "", dErrors.Newf(dErrors.CodeValidation, "invalid value for field %q", field)
	}
	return v, nil
}

func patchFieldNames(fields map[string]any) []string {
	var names []string
	for _, field := range fieldOrder {
		if _, ok := fields[field]; ok {
			names = append(names, field)
		}
	}
	return names
}
