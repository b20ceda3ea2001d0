package handler

import (
	"time"

	"seva/internal/application/models"
)

const dateLayout = "2006-01-02"

// applicationResponse is the dashboard wire shape for one application.
type applicationResponse struct {
	ID        int64   `json:"id"`
	Date      string  `json:"date"`
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	Mobile    string  `json:"mobile"`
	Aadhar    string  `json:"aadhar"`
	PANNumber *string `json:"panNumber"`
	AppNo     *string `json:"appNo"`
	DOB       *string `json:"dob"`
	Password  string  `json:"password"`
	WalletBal float64 `json:"walletBal"`
	Status    string  `json:"status"`
	TextFeed  *string `json:"textFeed"`
}

// llApplicationResponse extends the base shape with the test result columns.
type llApplicationResponse struct {
	applicationResponse
	TestScore       *int    `json:"testScore"`
	TestStatus      string  `json:"testStatus"`
	ExaminerRemarks *string `json:"examinerRemarks"`
	DocumentStatus  *string `json:"documentStatus"`
}

func toApplication(app *models.Application) applicationResponse {
	return applicationResponse{
		ID:        app.ID,
		Date:      app.CreatedAt.Format(dateLayout),
		Type:      string(app.Kind),
		Name:      app.Name,
		Mobile:    app.Mobile,
		Aadhar:    app.Aadhaar,
		PANNumber: app.PANNumber,
		AppNo:     app.AppNo,
		DOB:       formatDate(app.DOB),
		Password:  app.Password,
		WalletBal: app.WalletBalance,
		Status:    string(app.Status),
		TextFeed:  app.TextFeed,
	}
}

func toLLApplication(app *models.Application) llApplicationResponse {
	out := llApplicationResponse{
		applicationResponse: toApplication(app),
		TestStatus:          string(models.TestStatusPending),
		DocumentStatus:      app.DocumentStatus,
	}
	if tr := app.TestResult; tr != nil {
		score := tr.Score
		out.TestScore = &score
		out.TestStatus = string(tr.Status)
		out.ExaminerRemarks = tr.ExaminerRemarks
	}
	return out
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
