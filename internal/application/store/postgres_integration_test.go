//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"seva/internal/application/models"
	"seva/internal/application/store"
	"seva/internal/sequence"
	"seva/pkg/platform/sentinel"
	"seva/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	alloc    *sequence.PostgresAllocator
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.alloc = sequence.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "ll_test_results", "applications", "pan_search_history"))
}

func (s *PostgresStoreSuite) newPAN(aadhaar string) *models.Application {
	id, err := s.alloc.Next(context.Background())
	s.Require().NoError(err)
	return &models.Application{
		ID:       id,
		Kind:     models.KindPAN,
		Name:     "User",
		Mobile:   "9876543210",
		Aadhaar:  aadhaar,
		Password: "secret",
		Status:   models.StatusPending,
	}
}

func (s *PostgresStoreSuite) TestCreateAndGetRoundTrip() {
	ctx := context.Background()

	app := s.newPAN("123456789012")
	s.Require().NoError(s.store.Create(ctx, app))
	s.NotZero(app.RowID)
	s.False(app.CreatedAt.IsZero())

	got, err := s.store.GetByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(app.Aadhaar, got.Aadhaar)
	s.Equal(models.StatusPending, got.Status)
	s.Nil(got.TestResult)
}

func (s *PostgresStoreSuite) TestLLTestResultLifecycle() {
	ctx := context.Background()

	id, err := s.alloc.Next(ctx)
	s.Require().NoError(err)
	appNo := "LL2024001"
	dob := time.Date(1999, 4, 12, 0, 0, 0, 0, time.UTC)
	doc := "pending"
	app := &models.Application{
		ID: id, Kind: models.KindLL, Name: "User", Mobile: "9876543210",
		Aadhaar: "000000000000", AppNo: &appNo, DOB: &dob,
		Password: "secret", Status: models.StatusPending, DocumentStatus: &doc,
	}
	s.Require().NoError(s.store.Create(ctx, app))
	s.Require().NoError(s.store.CreateTestResult(ctx, app.ID))

	got, err := s.store.GetByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.TestResult)
	s.Equal(models.TestStatusPending, got.TestResult.Status)

	s.Require().NoError(s.store.UpdateTestResult(ctx, app.ID, 85, models.TestStatusPassed, "good drive"))
	s.Require().NoError(s.store.UpdateStatus(ctx, app.ID, models.StatusActive))

	got, err = s.store.GetByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusActive, got.Status)
	s.Equal(models.TestStatusPassed, got.TestResult.Status)
	s.Equal(85, got.TestResult.Score)
	s.Require().NotNil(got.TestResult.TestDate)

	// Delete cascades to the test result row.
	s.Require().NoError(s.store.Delete(ctx, app.ID))
	var count int
	s.Require().NoError(s.postgres.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ll_test_results WHERE application_id = $1", app.ID).Scan(&count))
	s.Zero(count)
}

func (s *PostgresStoreSuite) TestDuplicateLLAppNoConflicts() {
	ctx := context.Background()

	appNo := "LL2024001"
	dob := time.Date(1999, 4, 12, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		id, err := s.alloc.Next(ctx)
		s.Require().NoError(err)
		app := &models.Application{
			ID: id, Kind: models.KindLL, Name: "User", Mobile: "9876543210",
			Aadhaar: "000000000000", AppNo: &appNo, DOB: &dob,
			Password: "secret", Status: models.StatusPending,
		}
		err = s.store.Create(ctx, app)
		if i == 0 {
			s.Require().NoError(err)
		} else {
			s.Require().ErrorIs(err, sentinel.ErrConflict)
		}
	}
}

func (s *PostgresStoreSuite) TestLatestByAadhaarPicksNewest() {
	ctx := context.Background()

	first := s.newPAN("123456789012")
	s.Require().NoError(s.store.Create(ctx, first))

	// created_at has second precision in some setups; force ordering.
	_, err := s.postgres.DB.ExecContext(ctx,
		"UPDATE applications SET created_at = created_at - INTERVAL '1 hour' WHERE application_id = $1", first.ID)
	s.Require().NoError(err)

	second := s.newPAN("123456789012")
	s.Require().NoError(s.store.Create(ctx, second))

	got, err := s.store.LatestByAadhaar(ctx, "123456789012")
	s.Require().NoError(err)
	s.Equal(second.ID, got.ID)

	_, err = s.store.LatestByAadhaar(ctx, "999999999999")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdatePatchAndSearch() {
	ctx := context.Background()

	app := s.newPAN("123456789012")
	s.Require().NoError(s.store.Create(ctx, app))

	var patch store.Patch
	patch.Set("name", "Rahul Sharma")
	patch.Set("wallet_bal", 250.5)
	matched, err := s.store.Update(ctx, app.ID, patch)
	s.Require().NoError(err)
	s.True(matched)

	apps, err := s.store.List(ctx, store.Filter{Search: "sharma"})
	s.Require().NoError(err)
	s.Require().Len(apps, 1)
	s.Equal("Rahul Sharma", apps[0].Name)
	s.Equal(250.5, apps[0].WalletBalance)
}
