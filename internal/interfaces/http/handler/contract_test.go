package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	contractapp "github.com/lotiva/backend/internal/application/contract"
	"github.com/lotiva/backend/internal/domain/contract"
	"github.com/lotiva/backend/internal/domain/shared"
	"github.com/lotiva/backend/internal/interfaces/http/dto"
	"github.com/lotiva/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockContractService is a mock implementation of ContractService
type MockContractService struct {
	mock.Mock
}

func (m *MockContractService) Generate(ctx context.Context, saleID uuid.UUID) (*contractapp.GenerateResult, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contractapp.GenerateResult), args.Error(1)
}

func (m *MockContractService) GetHTML(ctx context.Context, saleID uuid.UUID) (string, error) {
	args := m.Called(ctx, saleID)
	return args.String(0), args.Error(1)
}

func (m *MockContractService) GetPDF(ctx context.Context, saleID uuid.UUID) (*contractapp.PDFResult, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contractapp.PDFResult), args.Error(1)
}

func (m *MockContractService) SendEmail(ctx context.Context, saleID uuid.UUID, customMessage string) (*contractapp.SendEmailResult, error) {
	args := m.Called(ctx, saleID, customMessage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contractapp.SendEmailResult), args.Error(1)
}

func (m *MockContractService) Regenerate(ctx context.Context, saleID uuid.UUID) (*contractapp.ContractResponse, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contractapp.ContractResponse), args.Error(1)
}

var (
	testSaleID = uuid.MustParse("4b0f3c7e-9a8d-4c1b-8f2e-1d3a5b7c9e0f")
	testNumber = "CT202501021000123"
)

func setupContractRouter(svc ContractService) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	h := NewContractHandler(svc)
	g := router.Group("/api/v1/contracts")
	g.POST("/generate", h.Generate)
	g.GET("/:saleId", h.GetHTML)
	g.GET("/:saleId/pdf", h.GetPDF)
	g.POST("/:saleId/email", h.SendEmail)
	g.POST("/:saleId/regenerate", h.Regenerate)
	return router
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func contractResponse() *contractapp.ContractResponse {
	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	return &contractapp.ContractResponse{
		ID:              uuid.NewString(),
		SaleID:          testSaleID.String(),
		ContractNumber:  testNumber,
		TemplateVersion: "lotiva-compra-venda/v2",
		Revision:        1,
		GeneratedAt:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestContractHandler_Generate(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockContractService)
		svc.On("Generate", mock.Anything, testSaleID).
			Return(&contractapp.GenerateResult{Contract: contractResponse()}, nil)

		w := serve(setupContractRouter(svc), http.MethodPost, "/api/v1/contracts/generate", `{"sale_id":"`+testSaleID.String()+`"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]any)
		assert.Equal(t, false, data["already_exists"])
		assert.Equal(t, testNumber, data["contract"].(map[string]any)["contract_number"])
		svc.AssertExpectations(t)
	})

	t.Run("already exists", func(t *testing.T) {
		svc := new(MockContractService)
		svc.On("Generate", mock.Anything, testSaleID).
			Return(&contractapp.GenerateResult{Contract: contractResponse(), AlreadyExisted: true}, nil)

		w := serve(setupContractRouter(svc), http.MethodPost, "/api/v1/contracts/generate", `{"sale_id":"`+testSaleID.String()+`"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decodeResponse(t, w).Data.(map[string]any)["already_exists"])
	})

	t.Run("sale not found", func(t *testing.T) {
		svc := new(MockContractService)
		svc.On("Generate", mock.Anything, testSaleID).Return(nil, contract.ErrSaleNotFound)

		w := serve(setupContractRouter(svc), http.MethodPost, "/api/v1/contracts/generate", `{"sale_id":"`+testSaleID.String()+`"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Error.Code)
	})

	t.Run("invalid sale data", func(t *testing.T) {
		svc := new(MockContractService)
		svc.On("Generate", mock.Anything, testSaleID).
			Return(nil, shared.NewValidationError("sale has no installments"))

		w := serve(setupContractRouter(svc), http.MethodPost, "/api/v1/contracts/generate", `{"sale_id":"`+testSaleID.String()+`"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("rejects bad body", func(t *testing.T) {
		tests := []struct {
			name     string
			body     string
			wantCode string
		}{
			{"missing sale_id", `{}`, dto.ErrCodeInvalidInput},
			{"not a uuid", `{"sale_id":"123"}`, dto.ErrCodeInvalidInput},
			{"malformed json", `{"sale_id":`, dto.ErrCodeInvalidJSON},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc := new(MockContractService)
				w := serve(setupContractRouter(svc), http.MethodPost, "/api/v1/contracts/generate", tt.body)

				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Equal(t, tt.wantCode, decodeResponse(t, w).Error.Code)
				svc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
			})
		}
	})
}

func TestContractHandler_GetHTML(t *testing.T) {
	t.Run("serves html without caching", func(t *testing.T) {
		svc := new(MockContractService)
		svc.On("GetHTML", mock.Anything, testSaleID).Return("<html><body>Contrato</body></html>", nil)

		w := serve(setupContractRouter(svc), http.MethodGet, "/api/v1/contracts/"+testSaleID.String(), "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
		assert.Equal(t, "<html><body>Contrato</body></html>", w.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockContractService)
		svc.On("GetHTML", mock.Anything, testSaleID).Return("", contract.ErrContractNotFound)

		w := serve(setupContractRouter(svc), http.MethodGet, "/api/v1/contracts/"+testSaleID.String(), "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid sale id", func(t *testing.T) {
		svc := new(MockContractService)
		w := serve(setupContractRouter(svc), http.MethodGet, "/api/v1/contracts/not-a-uuid", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "saleId", resp.Error.Details[0].Field)
		svc.AssertNotCalled(t, "GetHTML", mock.Anything, mock.Anything)
	})
}

func TestContractHandler_GetPDF(t *testing.T) {
	t.Run("attachment", func(t *testing.T) {
		svc := new(MockContractService)
		svc.On("GetPDF", mock.Anything, testSaleID).Return(&contractapp.PDFResult{
			ContractNumber: testNumber,
			Filename:       "Contrato_" + testNumber + ".pdf",
			Data:           []byte("%PDF-1.4 test"),
		}, nil)

		w := serve(setupContractRouter(svc), http.MethodGet, "/api/v1/contracts/"+testSaleID.String()+"/pdf", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="Contrato_CT202501021000123.pdf"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
		assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
	})

	errorCases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"render failure", shared.ErrRenderFailed, http.StatusBadGateway, dto.ErrCodeRenderFailed},
		{"render timeout", shared.ErrRenderTimeout, http.StatusGatewayTimeout, dto.ErrCodeRenderTimeout},
		{"sale not found", contract.ErrSaleNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockContractService)
			svc.On("GetPDF", mock.Anything, testSaleID).Return(nil, tt.err)

			w := serve(setupContractRouter(svc), http.MethodGet, "/api/v1/contracts/"+testSaleID.String()+"/pdf", "")

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
		})
	}
}

func TestContractHandler_SendEmail(t *testing.T) {
	path := "/api/v1/contracts/" + testSaleID.String() + "/email"
	sent := &contractapp.SendEmailResult{
		ContractNumber: testNumber,
		SentTo:         "maria.silva@example.com",
		SentAt:         time.Date(2025, 1, 2, 11, 0, 0, 0, time.UTC),
	}

	t.Run("with custom message", func(t *testing.T) {
		svc := new(MockContractService)
		svc.On("SendEmail", mock.Anything, testSaleID, "Seja bem-vinda!").Return(sent, nil)

		w := serve(setupContractRouter(svc), http.MethodPost, path, `{"custom_message":"Seja bem-vinda!"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "maria.silva@example.com", decodeResponse(t, w).Data.(map[string]any)["sent_to"])
		svc.AssertExpectations(t)
	})

	t.Run("empty body", func(t *testing.T) {
		svc := new(MockContractService)
		svc.On("SendEmail", mock.Anything, testSaleID, "").Return(sent, nil)

		w := serve(setupContractRouter(svc), http.MethodPost, path, "")

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("message too long", func(t *testing.T) {
		svc := new(MockContractService)
		body := `{"custom_message":"` + strings.Repeat("a", 2001) + `"}`

		w := serve(setupContractRouter(svc), http.MethodPost, path, body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
	})

	errorCases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"in progress", contract.ErrEmailInProgress, http.StatusConflict, dto.ErrCodeEmailInProgress},
		{"delivery failure", shared.ErrDeliveryFailed, http.StatusBadGateway, dto.ErrCodeDeliveryFailed},
		{"no recipient", contract.ErrMissingRecipient, http.StatusUnprocessableEntity, dto.ErrCodeValidation},
		{"contract not found", contract.ErrContractNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockContractService)
			svc.On("SendEmail", mock.Anything, testSaleID, "").Return(nil, tt.err)

			w := serve(setupContractRouter(svc), http.MethodPost, path, `{}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeResponse(t, w).Error.Code)
		})
	}
}

func TestContractHandler_Regenerate(t *testing.T) {
	path := "/api/v1/contracts/" + testSaleID.String() + "/regenerate"

	t.Run("ok", func(t *testing.T) {
		resp := contractResponse()
		resp.Revision = 2
		svc := new(MockContractService)
		svc.On("Regenerate", mock.Anything, testSaleID).Return(resp, nil)

		w := serve(setupContractRouter(svc), http.MethodPost, path, "")

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, float64(2), data["revision"])
		assert.Equal(t, testNumber, data["contract_number"])
	})

	t.Run("stale revision", func(t *testing.T) {
		svc := new(MockContractService)
		svc.On("Regenerate", mock.Anything, testSaleID).Return(nil, contract.ErrStaleRevision)

		w := serve(setupContractRouter(svc), http.MethodPost, path, "")

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeConcurrencyConflict, decodeResponse(t, w).Error.Code)
	})
}
