package contract

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lotiva/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContractRecord(t *testing.T) {
	saleID := uuid.New()
	generatedAt := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name           string
		saleID         uuid.UUID
		contractNumber string
		content        string
		expectError    bool
		errorMsg       string
	}{
		{
			name:           "valid record",
			saleID:         saleID,
			contractNumber: "CT202503101430042",
			content:        "<!DOCTYPE html><html></html>",
		},
		{
			name:           "nil sale ID",
			saleID:         uuid.Nil,
			contractNumber: "CT202503101430042",
			content:        "<html></html>",
			expectError:    true,
			errorMsg:       "Sale ID cannot be empty",
		},
		{
			name:           "empty contract number",
			saleID:         saleID,
			contractNumber: "  ",
			content:        "<html></html>",
			expectError:    true,
			errorMsg:       "Contract number cannot be empty",
		},
		{
			name:           "empty content",
			saleID:         saleID,
			contractNumber: "CT202503101430042",
			expectError:    true,
			errorMsg:       "Contract content cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := NewContractRecord(tt.saleID, tt.contractNumber, tt.content, "v-test", generatedAt)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, record)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, record.ID)
			assert.Equal(t, tt.saleID, record.SaleID)
			assert.Equal(t, 1, record.Revision)
			assert.Equal(t, "v-test", record.TemplateVersion)
			assert.Equal(t, generatedAt, record.GeneratedAt)
			assert.Equal(t, generatedAt, record.CreatedAt)
			assert.False(t, record.EmailSent)
			assert.Nil(t, record.EmailSentAt)
		})
	}
}

func TestContractRecord_Regenerate(t *testing.T) {
	record, err := NewContractRecord(uuid.New(), "CT202503101430042", "<html>old</html>", "v1", time.Now())
	require.NoError(t, err)

	t.Run("replaces content and keeps number", func(t *testing.T) {
		at := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
		require.NoError(t, record.Regenerate("<html>new</html>", "v2", at))

		assert.Equal(t, "<html>new</html>", record.Content)
		assert.Equal(t, "v2", record.TemplateVersion)
		assert.Equal(t, "CT202503101430042", record.ContractNumber)
		assert.Equal(t, 2, record.Revision)
		assert.Equal(t, at, record.GeneratedAt)
		assert.Equal(t, record.SaleID.String()+"-r2", record.ArchiveKey())
	})

	t.Run("rejects empty content", func(t *testing.T) {
		err := record.Regenerate("", "v3", time.Now())
		require.Error(t, err)
		assert.Equal(t, 2, record.Revision)
	})
}

func TestContractRecord_PDFFilename(t *testing.T) {
	record := &ContractRecord{ContractNumber: "CT202503101430042"}
	assert.Equal(t, "Contrato_CT202503101430042.pdf", record.PDFFilename())
}

func TestErrors_MatchKind(t *testing.T) {
	assert.True(t, errors.Is(ErrSaleNotFound, shared.ErrNotFound))
	assert.True(t, errors.Is(ErrContractNotFound, shared.ErrNotFound))
	assert.True(t, errors.Is(ErrEmailInProgress, shared.ErrConflict))
	assert.False(t, errors.Is(ErrSaleNotFound, ErrContractNotFound))
	assert.False(t, errors.Is(ErrSaleNotFound, shared.ErrConflict))
}

func TestSale_Amounts(t *testing.T) {
	sale := &Sale{
		TotalValue:       decimal.NewFromInt(100000),
		DownPayment:      decimal.NewFromInt(10000),
		InstallmentCount: 12,
		InstallmentValue: decimal.NewFromInt(7500),
	}

	assert.True(t, sale.HasDownPayment())
	assert.True(t, sale.FinancedBalance().Equal(decimal.NewFromInt(90000)))
	assert.True(t, sale.ScheduleGap().IsZero())

	sale.DownPayment = decimal.Zero
	assert.False(t, sale.HasDownPayment())
	assert.True(t, sale.ScheduleGap().Equal(decimal.NewFromInt(10000)))
}

func TestMaritalStatus_Label(t *testing.T) {
	assert.Equal(t, "Solteiro(a)", MaritalStatusSingle.Label())
	assert.Equal(t, "Viúvo(a)", MaritalStatusWidowed.Label())
	assert.Equal(t, "União Estável", MaritalStatus("União Estável").Label())
}

func TestContractPageOptions(t *testing.T) {
	opts := ContractPageOptions()

	assert.Equal(t, PaperSizeA4, opts.PaperSize)
	assert.Equal(t, Margins{Top: 30, Right: 20, Bottom: 20, Left: 30}, opts.Margins)
	assert.False(t, opts.Landscape)

	w, h := opts.PaperSize.Dimensions()
	assert.Equal(t, 210, w)
	assert.Equal(t, 297, h)
	assert.False(t, PaperSize("A0").IsValid())
}

func TestContractRecord_ArchiveKeyIsPerSale(t *testing.T) {
	at := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	first, err := NewContractRecord(uuid.New(), "CT202503101430042", "<html>a</html>", "v1", at)
	require.NoError(t, err)
	second, err := NewContractRecord(uuid.New(), "CT202503101430042", "<html>b</html>", "v1", at)
	require.NoError(t, err)

	assert.Equal(t, first.PDFFilename(), second.PDFFilename())
	assert.NotEqual(t, first.ArchiveKey(), second.ArchiveKey())
	assert.NotContains(t, first.ArchiveKey(), first.ContractNumber)
}
