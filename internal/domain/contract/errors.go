package contract

import "github.com/lotiva/backend/internal/domain/shared"

// Contract specific errors
var (
	ErrSaleNotFound     = shared.NewKindError(shared.CodeNotFound, "SALE_NOT_FOUND", "Sale not found")
	ErrContractNotFound = shared.NewKindError(shared.CodeNotFound, "CONTRACT_NOT_FOUND", "Contract not found")
	ErrEmailInProgress  = shared.NewKindError(shared.CodeConflict, shared.CodeEmailInProgress, "Contract email is already being sent")
	ErrMissingRecipient = shared.NewKindError(shared.CodeValidation, "MISSING_RECIPIENT", "Customer has no email address")
	ErrStaleRevision    = shared.NewKindError(shared.CodeConflict, "STALE_REVISION", "Contract was regenerated concurrently")
)
