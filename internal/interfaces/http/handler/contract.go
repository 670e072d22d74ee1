package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	contractapp "github.com/lotiva/backend/internal/application/contract"
	"github.com/lotiva/backend/internal/interfaces/http/dto"
)

// ContractService is the part of the contract application service used over HTTP
type ContractService interface {
	Generate(ctx context.Context, saleID uuid.UUID) (*contractapp.GenerateResult, error)
	GetHTML(ctx context.Context, saleID uuid.UUID) (string, error)
	GetPDF(ctx context.Context, saleID uuid.UUID) (*contractapp.PDFResult, error)
	SendEmail(ctx context.Context, saleID uuid.UUID, customMessage string) (*contractapp.SendEmailResult, error)
	Regenerate(ctx context.Context, saleID uuid.UUID) (*contractapp.ContractResponse, error)
}

// ContractHandler handles contract API endpoints
type ContractHandler struct {
	BaseHandler
	service ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(service ContractService) *ContractHandler {
	return &ContractHandler{service: service}
}

// Generate godoc
// @ID           generateContract
// @Summary      Generate the contract of a sale
// @Description  Returns 201 when a contract is created and 200 with already_exists when the sale already had one
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        request body contractapp.GenerateRequest true "Sale to generate a contract for"
// @Success      201 {object} dto.Response
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /contracts/generate [post]
func (h *ContractHandler) Generate(c *gin.Context) {
	var req contractapp.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	saleID, err := uuid.Parse(req.SaleID)
	if err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}

	result, err := h.service.Generate(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.AlreadyExisted {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// GetHTML godoc
// @ID           getContractHTML
// @Summary      Preview the contract HTML
// @Tags         contracts
// @Produce      html
// @Param        saleId path string true "Sale ID"
// @Success      200 {string} string
// @Failure      404 {object} dto.Response
// @Router       /contracts/{saleId} [get]
func (h *ContractHandler) GetHTML(c *gin.Context) {
	saleID, ok := h.parseSaleID(c)
	if !ok {
		return
	}

	html, err := h.service.GetHTML(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// GetPDF godoc
// @ID           getContractPDF
// @Summary      Download the contract PDF
// @Description  Generates the contract first when the sale has none
// @Tags         contracts
// @Produce      application/pdf
// @Param        saleId path string true "Sale ID"
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Failure      504 {object} dto.Response
// @Router       /contracts/{saleId}/pdf [get]
func (h *ContractHandler) GetPDF(c *gin.Context) {
	saleID, ok := h.parseSaleID(c)
	if !ok {
		return
	}

	pdf, err := h.service.GetPDF(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+pdf.Filename+`"`)
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "application/pdf", pdf.Data)
}

// SendEmail godoc
// @ID           sendContractEmail
// @Summary      Email the contract PDF to the customer
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        saleId  path string true "Sale ID"
// @Param        request body contractapp.SendEmailRequest false "Optional message for the customer"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /contracts/{saleId}/email [post]
func (h *ContractHandler) SendEmail(c *gin.Context) {
	saleID, ok := h.parseSaleID(c)
	if !ok {
		return
	}

	var req contractapp.SendEmailRequest
	// An empty body means no custom message
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	result, err := h.service.SendEmail(c.Request.Context(), saleID, req.CustomMessage)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Regenerate godoc
// @ID           regenerateContract
// @Summary      Rebuild the contract from current sale data
// @Description  Keeps the contract number and bumps the revision
// @Tags         contracts
// @Produce      json
// @Param        saleId path string true "Sale ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /contracts/{saleId}/regenerate [post]
func (h *ContractHandler) Regenerate(c *gin.Context) {
	saleID, ok := h.parseSaleID(c)
	if !ok {
		return
	}

	record, err := h.service.Regenerate(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

func (h *ContractHandler) parseSaleID(c *gin.Context) (uuid.UUID, bool) {
	var uri dto.SaleIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return uuid.Nil, false
	}
	saleID, err := uuid.Parse(uri.SaleID)
	if err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return uuid.Nil, false
	}
	return saleID, true
}
