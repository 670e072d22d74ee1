package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lotiva/backend/internal/domain/contract"
	"github.com/shopspring/decimal"
)

// BlockModel is a quadra of the development
type BlockModel struct {
	BaseModel
	Identifier string `gorm:"type:varchar(50);not null"`
}

// TableName returns the table name for GORM
func (BlockModel) TableName() string {
	return "blocks"
}

// LotModel is a lote
type LotModel struct {
	BaseModel
	BlockID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Block      BlockModel      `gorm:"foreignKey:BlockID"`
	Identifier string          `gorm:"type:varchar(50);not null"`
	Front      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Back       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	LeftSide   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	RightSide  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalArea  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Price      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for GORM
func (LotModel) TableName() string {
	return "lots"
}

// CustomerModel is the buyer registered by the sales module
type CustomerModel struct {
	BaseModel
	Name          string    `gorm:"type:varchar(200);not null"`
	CPF           string    `gorm:"column:cpf;type:varchar(14);not null"`
	RG            string    `gorm:"column:rg;type:varchar(20)"`
	Email         string    `gorm:"type:varchar(200)"`
	Address       string    `gorm:"type:text"`
	BirthDate     time.Time `gorm:"type:date"`
	Profession    string    `gorm:"type:varchar(100)"`
	Birthplace    string    `gorm:"type:varchar(100)"`
	MaritalStatus string    `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// SaleModel is a closed lot sale with its payment plan
type SaleModel struct {
	BaseModel
	CustomerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Customer         CustomerModel   `gorm:"foreignKey:CustomerID"`
	LotID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Lot              LotModel        `gorm:"foreignKey:LotID"`
	InstallmentCount int             `gorm:"not null"`
	InstallmentValue decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	DownPayment      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	AnnualAdjustment bool            `gorm:"not null"`
	TotalValue       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the sale and its preloaded relations to the domain snapshot
func (m *SaleModel) ToDomain() *contract.Sale {
	return &contract.Sale{
		ID:               m.ID,
		CustomerID:       m.CustomerID,
		LotID:            m.LotID,
		InstallmentCount: m.InstallmentCount,
		InstallmentValue: m.InstallmentValue,
		DownPayment:      m.DownPayment,
		AnnualAdjustment: m.AnnualAdjustment,
		TotalValue:       m.TotalValue,
		CreatedAt:        m.CreatedAt,
		Customer: contract.Customer{
			ID:            m.Customer.ID,
			Name:          m.Customer.Name,
			CPF:           m.Customer.CPF,
			RG:            m.Customer.RG,
			Email:         m.Customer.Email,
			Address:       m.Customer.Address,
			BirthDate:     m.Customer.BirthDate,
			Profession:    m.Customer.Profession,
			Birthplace:    m.Customer.Birthplace,
			MaritalStatus: contract.MaritalStatus(m.Customer.MaritalStatus),
		},
		Lot: contract.Lot{
			ID:         m.Lot.ID,
			Identifier: m.Lot.Identifier,
			Front:      m.Lot.Front,
			Back:       m.Lot.Back,
			LeftSide:   m.Lot.LeftSide,
			RightSide:  m.Lot.RightSide,
			TotalArea:  m.Lot.TotalArea,
			Price:      m.Lot.Price,
			Block: contract.Block{
				ID:         m.Lot.Block.ID,
				Identifier: m.Lot.Block.Identifier,
			},
		},
	}
}
