package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lotiva/backend/internal/domain/contract"
	"github.com/lotiva/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormContractRepository implements contract.ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// FindBySaleID finds the contract generated for a sale
func (r *GormContractRepository) FindBySaleID(ctx context.Context, saleID uuid.UUID) (*contract.ContractRecord, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).First(&model, "sale_id = ?", saleID).Error; err != nil {
		return nil, translateError(err, contract.ErrContractNotFound)
	}
	return model.ToDomain(), nil
}

// Create inserts a new contract. A second contract for the same sale
// violates idx_contracts_sale_id and yields shared.ErrConflict.
func (r *GormContractRepository) Create(ctx context.Context, record *contract.ContractRecord) error {
	model := models.ContractModelFromDomain(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, contract.ErrContractNotFound)
	}
	return nil
}

// Update persists a regenerated document. The write only applies on top of the
// previous revision, so two concurrent regenerations cannot both succeed.
func (r *GormContractRepository) Update(ctx context.Context, record *contract.ContractRecord) error {
	result := r.db.WithContext(ctx).
		Model(&models.ContractModel{}).
		Where("id = ? AND revision = ?", record.ID, record.Revision-1).
		Updates(map[string]any{
			"content":          record.Content,
			"template_version": record.TemplateVersion,
			"generated_at":     record.GeneratedAt,
			"revision":         record.Revision,
			"updated_at":       record.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, contract.ErrContractNotFound)
	}
	if result.RowsAffected == 0 {
		return contract.ErrStaleRevision
	}
	return nil
}

// MarkEmailed sets the email flag and timestamp of a contract
func (r *GormContractRepository) MarkEmailed(ctx context.Context, contractID uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.ContractModel{}).
		Where("id = ?", contractID).
		Updates(map[string]any{
			"email_sent":    true,
			"email_sent_at": at,
			"updated_at":    at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return contract.ErrContractNotFound
	}
	return nil
}

var _ contract.ContractRepository = (*GormContractRepository)(nil)
