package contract

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaritalStatus is the civil status of a customer as stored by the sales app
type MaritalStatus string

const (
	MaritalStatusSingle   MaritalStatus = "Solteiro"
	MaritalStatusMarried  MaritalStatus = "Casado"
	MaritalStatusDivorced MaritalStatus = "Divorciado"
	MaritalStatusWidowed  MaritalStatus = "Viúvo"
)

// Label returns the gender-neutral label printed on contracts.
// Unknown values are returned verbatim.
func (m MaritalStatus) Label() string {
	switch m {
	case MaritalStatusSingle, MaritalStatusMarried, MaritalStatusDivorced, MaritalStatusWidowed:
		return string(m) + "(a)"
	default:
		return string(m)
	}
}

// Block groups lots inside a development
type Block struct {
	ID         uuid.UUID
	Identifier string
}

// Lot is a piece of land being sold. Measures are in meters, area in m².
type Lot struct {
	ID         uuid.UUID
	Identifier string
	Front      decimal.Decimal
	Back       decimal.Decimal
	LeftSide   decimal.Decimal
	RightSide  decimal.Decimal
	TotalArea  decimal.Decimal
	Price      decimal.Decimal
	Block      Block
}

// Customer is the buyer party of a sale
type Customer struct {
	ID            uuid.UUID
	Name          string
	CPF           string
	RG            string
	Email         string
	Address       string
	BirthDate     time.Time
	Profession    string
	Birthplace    string
	MaritalStatus MaritalStatus
}

// Sale is the read-only snapshot the contract is generated from
type Sale struct {
	ID               uuid.UUID
	CustomerID       uuid.UUID
	LotID            uuid.UUID
	InstallmentCount int
	InstallmentValue decimal.Decimal
	DownPayment      decimal.Decimal
	AnnualAdjustment bool
	TotalValue       decimal.Decimal
	CreatedAt        time.Time
	Customer         Customer
	Lot              Lot
}

// HasDownPayment reports whether an upfront amount is paid at signing
func (s *Sale) HasDownPayment() bool {
	return s.DownPayment.IsPositive()
}

// FinancedBalance is the amount left after the down payment
func (s *Sale) FinancedBalance() decimal.Decimal {
	return s.TotalValue.Sub(s.DownPayment)
}

// ScheduleGap returns TotalValue - (DownPayment + InstallmentCount*InstallmentValue).
// A non-zero gap is tolerated; callers may log it.
func (s *Sale) ScheduleGap() decimal.Decimal {
	scheduled := s.InstallmentValue.Mul(decimal.NewFromInt(int64(s.InstallmentCount)))
	return s.TotalValue.Sub(s.DownPayment.Add(scheduled))
}
