package contract

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lotiva/backend/internal/domain/shared"
)

// ContractRecord is the generated contract document of exactly one sale.
// Content is written at creation and replaced only through Regenerate.
type ContractRecord struct {
	shared.BaseEntity
	SaleID          uuid.UUID
	ContractNumber  string
	Content         string
	TemplateVersion string
	GeneratedAt     time.Time // timestamp fed to the clause assembler
	Revision        int
	EmailSent       bool
	EmailSentAt     *time.Time
}

// NewContractRecord creates the record for a freshly assembled document
func NewContractRecord(
	saleID uuid.UUID,
	contractNumber string,
	content string,
	templateVersion string,
	generatedAt time.Time,
) (*ContractRecord, error) {
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Sale ID cannot be empty")
	}
	if strings.TrimSpace(contractNumber) == "" {
		return nil, shared.NewDomainError("INVALID_CONTRACT_NUMBER", "Contract number cannot be empty")
	}
	if strings.TrimSpace(content) == "" {
		return nil, shared.NewDomainError("INVALID_CONTENT", "Contract content cannot be empty")
	}

	return &ContractRecord{
		BaseEntity:      shared.NewBaseEntity(generatedAt),
		SaleID:          saleID,
		ContractNumber:  contractNumber,
		Content:         content,
		TemplateVersion: templateVersion,
		GeneratedAt:     generatedAt,
		Revision:        1,
	}, nil
}

// Regenerate replaces the document with one assembled from current sale data.
// The contract number is kept so that references to the contract stay valid.
func (c *ContractRecord) Regenerate(content, templateVersion string, generatedAt time.Time) error {
	if strings.TrimSpace(content) == "" {
		return shared.NewDomainError("INVALID_CONTENT", "Contract content cannot be empty")
	}
	c.Content = content
	c.TemplateVersion = templateVersion
	c.GeneratedAt = generatedAt
	c.Revision++
	c.Touch(generatedAt)
	return nil
}

// PDFFilename is the download/attachment name of the rendered document
func (c *ContractRecord) PDFFilename() string {
	return "Contrato_" + c.ContractNumber + ".pdf"
}

// ArchiveKey identifies one rendered revision of the document.
// Contract numbers may repeat across sales, so the key is built from the sale.
func (c *ContractRecord) ArchiveKey() string {
	return c.SaleID.String() + "-r" + strconv.Itoa(c.Revision)
}
