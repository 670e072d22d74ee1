package contract

import (
	"time"

	"github.com/lotiva/backend/internal/domain/contract"
)

// GenerateRequest is the body of POST /contracts/generate
type GenerateRequest struct {
	SaleID string `json:"sale_id" binding:"required,uuid"`
}

// SendEmailRequest is the body of POST /contracts/:saleId/email
type SendEmailRequest struct {
	CustomMessage string `json:"custom_message" binding:"max=2000"`
}

// ContractResponse describes a stored contract without its HTML content
type ContractResponse struct {
	ID              string     `json:"id"`
	SaleID          string     `json:"sale_id"`
	ContractNumber  string     `json:"contract_number"`
	TemplateVersion string     `json:"template_version"`
	Revision        int        `json:"revision"`
	EmailSent       bool       `json:"email_sent"`
	EmailSentAt     *time.Time `json:"email_sent_at,omitempty"`
	GeneratedAt     time.Time  `json:"generated_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// GenerateResult is returned by Generate.
// AlreadyExisted is true when the sale had a contract before the call.
type GenerateResult struct {
	Contract       *ContractResponse `json:"contract"`
	AlreadyExisted bool              `json:"already_exists"`
}

// PDFResult carries a rendered contract document
type PDFResult struct {
	ContractNumber string
	Filename       string
	Data           []byte
	FromArchive    bool
}

// SendEmailResult is returned after a successful delivery
type SendEmailResult struct {
	ContractNumber string    `json:"contract_number"`
	SentTo         string    `json:"sent_to"`
	SentAt         time.Time `json:"sent_at"`
}

func toContractResponse(c *contract.ContractRecord) *ContractResponse {
	return &ContractResponse{
		ID:              c.ID.String(),
		SaleID:          c.SaleID.String(),
		ContractNumber:  c.ContractNumber,
		TemplateVersion: c.TemplateVersion,
		Revision:        c.Revision,
		EmailSent:       c.EmailSent,
		EmailSentAt:     c.EmailSentAt,
		GeneratedAt:     c.GeneratedAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
