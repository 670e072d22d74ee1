package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/lotiva/backend/internal/domain/contract"
	"github.com/lotiva/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSaleRepository implements contract.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByIDWithRelations loads a sale with its customer, lot and block
func (r *GormSaleRepository) FindByIDWithRelations(ctx context.Context, saleID uuid.UUID) (*contract.Sale, error) {
	var model models.SaleModel
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Lot.Block").
		First(&model, "id = ?", saleID).Error
	if err != nil {
		return nil, translateError(err, contract.ErrSaleNotFound)
	}
	return model.ToDomain(), nil
}

var _ contract.SaleRepository = (*GormSaleRepository)(nil)
