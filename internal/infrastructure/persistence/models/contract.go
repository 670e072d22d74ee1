package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lotiva/backend/internal/domain/contract"
)

// ContractModel is the persisted contract document of a sale
type ContractModel struct {
	BaseModel
	SaleID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_contracts_sale_id"`
	ContractNumber  string    `gorm:"type:varchar(32);not null;index:idx_contracts_contract_number"`
	Content         string    `gorm:"type:text;not null"`
	TemplateVersion string    `gorm:"type:varchar(64);not null"`
	GeneratedAt     time.Time `gorm:"not null"`
	Revision        int       `gorm:"not null"`
	EmailSent       bool      `gorm:"not null"`
	EmailSentAt     *time.Time
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the model to a domain ContractRecord
func (m *ContractModel) ToDomain() *contract.ContractRecord {
	return &contract.ContractRecord{
		BaseEntity:      m.BaseModel.ToDomain(),
		SaleID:          m.SaleID,
		ContractNumber:  m.ContractNumber,
		Content:         m.Content,
		TemplateVersion: m.TemplateVersion,
		GeneratedAt:     m.GeneratedAt,
		Revision:        m.Revision,
		EmailSent:       m.EmailSent,
		EmailSentAt:     m.EmailSentAt,
	}
}

// ContractModelFromDomain converts a domain ContractRecord to its model
func ContractModelFromDomain(c *contract.ContractRecord) *ContractModel {
	m := &ContractModel{
		SaleID:          c.SaleID,
		ContractNumber:  c.ContractNumber,
		Content:         c.Content,
		TemplateVersion: c.TemplateVersion,
		GeneratedAt:     c.GeneratedAt,
		Revision:        c.Revision,
		EmailSent:       c.EmailSent,
		EmailSentAt:     c.EmailSentAt,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
