package contract

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SaleRepository reads sale snapshots owned by the sales module
type SaleRepository interface {
	// FindByIDWithRelations loads a sale with its customer, lot and block.
	// Returns ErrSaleNotFound when the sale does not exist.
	FindByIDWithRelations(ctx context.Context, saleID uuid.UUID) (*Sale, error)
}

// ContractRepository defines the interface for contract record persistence
type ContractRepository interface {
	// FindBySaleID finds the contract of a sale.
	// Returns ErrContractNotFound when none was generated yet.
	FindBySaleID(ctx context.Context, saleID uuid.UUID) (*ContractRecord, error)

	// Create inserts a new record.
	// Returns shared.ErrConflict when the sale already has a contract.
	Create(ctx context.Context, record *ContractRecord) error

	// Update persists a regenerated record
	Update(ctx context.Context, record *ContractRecord) error

	// MarkEmailed sets the email flag and timestamp of a contract
	MarkEmailed(ctx context.Context, contractID uuid.UUID, at time.Time) error
}
