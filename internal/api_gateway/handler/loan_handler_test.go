package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/microfin-loan-engine/internal/domain/loan"
)

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) Create(ctx context.Context, companyID, customerID, customerName string, terms loan.Terms) (*loan.Loan, error) {
	args := m.Called(ctx, companyID, customerID, customerName, terms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLoanService) GetByID(ctx context.Context, companyID, loanID string) (*loan.Loan, error) {
	args := m.Called(ctx, companyID, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLoanService) TopUp(ctx context.Context, companyID, loanID string, amount int64, feePct float64, date time.Time) (*loan.Loan, error) {
	args := m.Called(ctx, companyID, loanID, amount, feePct, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLoanService) Foreclose(ctx context.Context, companyID, loanID string, settlementAmount int64, settledAt time.Time, received bool) (*loan.Loan, error) {
	args := m.Called(ctx, companyID, loanID, settlementAmount, settledAt, received)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func newHandlerTestLoan(t *testing.T) *loan.Loan {
	t.Helper()
	l, err := loan.New("company-1", "cust-1", "Asha", loan.Terms{
		Principal:        10000,
		AnnualRatePct:    24,
		TenureMonths:     12,
		ProcessingFeePct: 3,
		DisbursedAt:      time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return l
}

func TestLoanHandler_Create(t *testing.T) {
	logger := testHandlerLogger()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(logger, mockService)

		expected := newHandlerTestLoan(t)
		mockService.On("Create", mock.Anything, "company-1", "cust-1", "Asha", mock.Anything).Return(expected, nil)

		router := setupTestRouter()
		router.POST("/loans", handler.Create)

		rr := postJSON(t, router, "/loans", CreateLoanRequest{
			CompanyID:        "company-1",
			CustomerID:       "cust-1",
			CustomerName:     "Asha",
			Principal:        10000,
			AnnualRatePct:    24,
			TenureMonths:     12,
			ProcessingFeePct: 3,
			DisbursedAt:      expected.DisbursedAt,
		})

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

		var body LoanResponse
		dataBytes, _ := json.Marshal(resp.Data)
		require.NoError(t, json.Unmarshal(dataBytes, &body))
		assert.Equal(t, expected.ID, body.ID)
		assert.Equal(t, int64(300), body.ProcessingFee)
		assert.Len(t, body.Schedule, 12)

		mockService.AssertExpectations(t)
	})

	t.Run("MissingRequiredFields", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/loans", handler.Create)

		rr := postJSON(t, router, "/loans", CreateLoanRequest{CompanyID: "company-1"})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Create")
	})

	t.Run("ValidationErrorMapsToBadRequest", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(logger, mockService)
		mockService.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, loan.ErrNegativeRate)

		router := setupTestRouter()
		router.POST("/loans", handler.Create)

		rr := postJSON(t, router, "/loans", CreateLoanRequest{
			CompanyID:    "company-1",
			CustomerID:   "cust-1",
			CustomerName: "Asha",
			Principal:    10000,
			TenureMonths: 12,
			DisbursedAt:  time.Now(),
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestLoanHandler_GetByID(t *testing.T) {
	logger := testHandlerLogger()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(logger, mockService)

		expected := newHandlerTestLoan(t)
		mockService.On("GetByID", mock.Anything, "company-1", expected.ID).Return(expected, nil)

		router := setupTestRouter()
		router.GET("/loans/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/loans/"+expected.ID+"?company_id=company-1", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("MissingCompanyID", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/loans/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/loans/loan-1", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "GetByID")
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(logger, mockService)
		mockService.On("GetByID", mock.Anything, "company-1", "loan-1").Return(nil, loan.ErrLoanNotFound{LoanID: "loan-1"})

		router := setupTestRouter()
		router.GET("/loans/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/loans/loan-1?company_id=company-1", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestLoanHandler_TopUp(t *testing.T) {
	logger := testHandlerLogger()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(logger, mockService)

		l := newHandlerTestLoan(t)
		date := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
		_, err := l.AddTopUp(5000, 2, date)
		require.NoError(t, err)

		mockService.On("TopUp", mock.Anything, "company-1", l.ID, int64(5000), 2.0, date).Return(l, nil)

		router := setupTestRouter()
		router.POST("/loans/:id/topups", handler.TopUp)

		rr := postJSON(t, router, "/loans/"+l.ID+"/topups", TopUpRequest{
			CompanyID: "company-1",
			Amount:    5000,
			FeePct:    2,
			Date:      date,
		})

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

		var body LoanResponse
		dataBytes, _ := json.Marshal(resp.Data)
		require.NoError(t, json.Unmarshal(dataBytes, &body))
		assert.Equal(t, int64(15000), body.Principal)
		require.Len(t, body.TopUps, 1)

		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockLoanService)
		handler := NewLoanHandler(logger, mockService)
		mockService.On("TopUp", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, loan.ErrLoanNotFound{LoanID: "loan-1"})

		router := setupTestRouter()
		router.POST("/loans/:id/topups", handler.TopUp)

		rr := postJSON(t, router, "/loans/loan-1/topups", TopUpRequest{
			CompanyID: "company-1",
			Amount:    5000,
			Date:      time.Now(),
		})

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
