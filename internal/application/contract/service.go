// Package contract coordinates the lifecycle of generated sale contracts:
// assembly, persistence, PDF rendering and archiving, and email delivery.
package contract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lotiva/backend/internal/domain/contract"
	"github.com/lotiva/backend/internal/domain/shared"
	"github.com/lotiva/backend/internal/infrastructure/cache"
	"github.com/lotiva/backend/internal/infrastructure/document"
	"github.com/lotiva/backend/internal/infrastructure/logger"
	"github.com/lotiva/backend/internal/infrastructure/mail"
	"github.com/lotiva/backend/internal/infrastructure/printing"
	"github.com/lotiva/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// scheduleGapTolerance is the largest TotalValue vs schedule difference accepted silently
var scheduleGapTolerance = decimal.NewFromInt(1)

// Assembler builds the contract HTML for a sale
type Assembler interface {
	Assemble(in document.AssembleInput) (string, error)
	Version() string
}

// NumberGenerator issues new contract numbers
type NumberGenerator interface {
	Next() string
}

// PDFArchive keeps rendered PDFs keyed by contract revision.
// Load returns an error matching shared.ErrNotFound for unknown keys.
type PDFArchive interface {
	Store(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Mailer delivers a prepared message
type Mailer interface {
	Send(ctx context.Context, msg *mail.Message) error
}

// ServiceConfig holds tunables of ContractService
type ServiceConfig struct {
	// RenderTimeout bounds a whole PDF render including retries (default 30s)
	RenderTimeout time.Duration
	// SendGuardTTL bounds how long a send claim survives a crashed holder
	SendGuardTTL time.Duration
	// Contact block of outgoing emails
	CompanyName  string
	CompanyPhone string
	CompanyEmail string
	// Now is the clock (default time.Now)
	Now func() time.Time
}

// Dependencies are the collaborators of ContractService
type Dependencies struct {
	Sales     contract.SaleRepository
	Contracts contract.ContractRepository
	Assembler Assembler
	Numbers   NumberGenerator
	Renderer  printing.PDFRenderer
	Archive   PDFArchive                 // optional
	Mailer    Mailer                     // optional; SendEmail fails with DeliveryFailed without it
	Guard     shared.OperationGuard      // optional; defaults to an in-process guard
	Metrics   *telemetry.ContractMetrics // optional
}

// ContractService handles contract lifecycle operations
type ContractService struct {
	sales     contract.SaleRepository
	contracts contract.ContractRepository
	assembler Assembler
	numbers   NumberGenerator
	renderer  printing.PDFRenderer
	archive   PDFArchive
	mailer    Mailer
	guard     shared.OperationGuard
	metrics   *telemetry.ContractMetrics
	config    ServiceConfig
	logger    *zap.Logger
}

// NewContractService creates a new ContractService
func NewContractService(deps Dependencies, cfg ServiceConfig, log *zap.Logger) *ContractService {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = 30 * time.Second
	}
	if cfg.SendGuardTTL <= 0 {
		cfg.SendGuardTTL = shared.DefaultGuardConfig().TTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	guard := deps.Guard
	if guard == nil {
		guard = cache.NewInMemoryGuard()
	}
	return &ContractService{
		sales:     deps.Sales,
		contracts: deps.Contracts,
		assembler: deps.Assembler,
		numbers:   deps.Numbers,
		renderer:  deps.Renderer,
		archive:   deps.Archive,
		mailer:    deps.Mailer,
		guard:     guard,
		metrics:   deps.Metrics,
		config:    cfg,
		logger:    log,
	}
}

// =============================================================================
// Lifecycle
// =============================================================================

// Generate returns the contract of a sale, creating it on first call.
// Concurrent first calls converge on a single stored record.
func (s *ContractService) Generate(ctx context.Context, saleID uuid.UUID) (*GenerateResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contract", "generate",
		telemetry.WithAttribute(telemetry.SpanAttrSaleID, saleID.String()))
	defer span.End()
	ctx = logger.WithSaleID(ctx, saleID.String())

	result, err := s.generate(ctx, saleID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrContractNumber, result.Contract.ContractNumber,
		telemetry.SpanAttrAlreadyExisted, result.AlreadyExisted,
	)
	return result, nil
}

func (s *ContractService) generate(ctx context.Context, saleID uuid.UUID) (*GenerateResult, error) {
	existing, err := s.contracts.FindBySaleID(ctx, saleID)
	if err == nil {
		return &GenerateResult{Contract: toContractResponse(existing), AlreadyExisted: true}, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up contract: %w", err)
	}

	sale, err := s.sales.FindByIDWithRelations(ctx, saleID)
	if err != nil {
		return nil, err
	}
	s.checkSchedule(ctx, sale)

	now := s.config.Now()
	number := s.numbers.Next()
	content, err := s.assembler.Assemble(document.AssembleInput{
		Sale:           sale,
		ContractNumber: number,
		GeneratedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	record, err := contract.NewContractRecord(saleID, number, content, s.assembler.Version(), now)
	if err != nil {
		return nil, err
	}

	if err := s.contracts.Create(ctx, record); err != nil {
		if !errors.Is(err, shared.ErrConflict) {
			return nil, fmt.Errorf("failed to save contract: %w", err)
		}
		// Another request stored the contract first
		winner, findErr := s.contracts.FindBySaleID(ctx, saleID)
		if findErr != nil {
			return nil, fmt.Errorf("failed to load concurrently created contract: %w", findErr)
		}
		s.log(ctx).Info("contract created concurrently, returning stored record",
			zap.String("contract_number", winner.ContractNumber))
		return &GenerateResult{Contract: toContractResponse(winner), AlreadyExisted: true}, nil
	}

	s.log(ctx).Info("contract generated",
		zap.String("contract_id", record.ID.String()),
		zap.String("contract_number", record.ContractNumber),
		zap.String("template_version", record.TemplateVersion))

	return &GenerateResult{Contract: toContractResponse(record), AlreadyExisted: false}, nil
}

// Retrieve returns the stored contract of a sale
func (s *ContractService) Retrieve(ctx context.Context, saleID uuid.UUID) (*ContractResponse, error) {
	record, err := s.contracts.FindBySaleID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return toContractResponse(record), nil
}

// GetHTML returns the stored contract document
func (s *ContractService) GetHTML(ctx context.Context, saleID uuid.UUID) (string, error) {
	record, err := s.contracts.FindBySaleID(ctx, saleID)
	if err != nil {
		return "", err
	}
	return record.Content, nil
}

// Regenerate reassembles the contract from the current sale data.
// The contract number is kept and the revision is incremented.
func (s *ContractService) Regenerate(ctx context.Context, saleID uuid.UUID) (*ContractResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contract", "regenerate",
		telemetry.WithAttribute(telemetry.SpanAttrSaleID, saleID.String()))
	defer span.End()
	ctx = logger.WithSaleID(ctx, saleID.String())

	record, err := s.contracts.FindBySaleID(ctx, saleID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	sale, err := s.sales.FindByIDWithRelations(ctx, saleID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.checkSchedule(ctx, sale)

	now := s.config.Now()
	content, err := s.assembler.Assemble(document.AssembleInput{
		Sale:           sale,
		ContractNumber: record.ContractNumber,
		GeneratedAt:    now,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	previousKey := record.ArchiveKey()
	if err := record.Regenerate(content, s.assembler.Version(), now); err != nil {
		return nil, err
	}
	if err := s.contracts.Update(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, shared.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update contract: %w", err)
	}

	if s.archive != nil {
		if err := s.archive.Delete(ctx, previousKey); err != nil {
			s.log(ctx).Warn("failed to drop archived pdf of previous revision",
				zap.String("key", previousKey), zap.Error(err))
		}
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrRevision, record.Revision)
	s.log(ctx).Info("contract regenerated",
		zap.String("contract_number", record.ContractNumber),
		zap.Int("revision", record.Revision))

	return toContractResponse(record), nil
}

// MarkEmailed flags the contract of a sale as delivered.
// It does nothing when the sale has no contract.
func (s *ContractService) MarkEmailed(ctx context.Context, saleID uuid.UUID) error {
	record, err := s.contracts.FindBySaleID(ctx, saleID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.contracts.MarkEmailed(ctx, record.ID, s.config.Now())
}

// =============================================================================
// PDF
// =============================================================================

// GetPDF returns the PDF of the sale's contract, generating the contract
// first when it does not exist yet.
func (s *ContractService) GetPDF(ctx context.Context, saleID uuid.UUID) (*PDFResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contract", "get_pdf",
		telemetry.WithAttribute(telemetry.SpanAttrSaleID, saleID.String()))
	defer span.End()
	ctx = logger.WithSaleID(ctx, saleID.String())

	record, err := s.contracts.FindBySaleID(ctx, saleID)
	if errors.Is(err, shared.ErrNotFound) {
		if _, err = s.generate(ctx, saleID); err == nil {
			record, err = s.contracts.FindBySaleID(ctx, saleID)
		}
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result, err := s.pdfFor(ctx, record)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrContractNumber, record.ContractNumber,
		telemetry.SpanAttrPDFBytes, len(result.Data),
	)
	return result, nil
}

// pdfFor returns the archived PDF of the record's revision or renders the stored HTML
func (s *ContractService) pdfFor(ctx context.Context, record *contract.ContractRecord) (*PDFResult, error) {
	ctx = logger.WithContractNumber(ctx, record.ContractNumber)
	key := record.ArchiveKey()
	result := &PDFResult{
		ContractNumber: record.ContractNumber,
		Filename:       record.PDFFilename(),
	}

	if s.archive != nil {
		data, err := s.archive.Load(ctx, key)
		switch {
		case err == nil && printing.HasPDFMagic(data):
			result.Data = data
			result.FromArchive = true
			return result, nil
		case err == nil:
			s.log(ctx).Warn("archived pdf is corrupt, rendering again", zap.String("key", key))
		case !errors.Is(err, shared.ErrNotFound):
			s.log(ctx).Warn("pdf archive lookup failed", zap.String("key", key), zap.Error(err))
		}
	}

	// A render that has started runs to completion or timeout even if the caller goes away
	renderCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.RenderTimeout)
	defer cancel()

	rendered, err := s.renderer.Render(renderCtx, &printing.RenderRequest{
		HTML:  record.Content,
		Page:  contract.ContractPageOptions(),
		Title: "Contrato " + record.ContractNumber,
	})
	if err != nil {
		s.log(ctx).Error("contract pdf rendering failed", zap.Error(err))
		return nil, renderFailure(err)
	}
	result.Data = rendered.PDFData

	if s.archive != nil {
		if err := s.archive.Store(renderCtx, key, rendered.PDFData); err != nil {
			s.log(ctx).Warn("failed to archive contract pdf", zap.String("key", key), zap.Error(err))
		}
	}

	s.log(ctx).Info("contract pdf rendered",
		zap.Int("pages", rendered.PageCount),
		zap.Int("bytes", len(rendered.PDFData)),
		zap.Duration("duration", rendered.RenderDuration))
	return result, nil
}

func renderFailure(err error) error {
	if errors.Is(err, shared.ErrRenderTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return shared.ErrRenderTimeout.WithCause(err)
	}
	return shared.ErrRenderFailed.WithCause(err)
}

// =============================================================================
// Email
// =============================================================================

// SendEmail delivers the contract PDF to the customer of the sale.
// Only one send per sale may be in flight; a concurrent call fails with
// contract.ErrEmailInProgress.
func (s *ContractService) SendEmail(ctx context.Context, saleID uuid.UUID, customMessage string) (*SendEmailResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contract", "send_email",
		telemetry.WithAttribute(telemetry.SpanAttrSaleID, saleID.String()))
	defer span.End()
	ctx = logger.WithSaleID(ctx, saleID.String())

	result, err := s.sendEmail(ctx, saleID, customMessage)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

func (s *ContractService) sendEmail(ctx context.Context, saleID uuid.UUID, customMessage string) (*SendEmailResult, error) {
	record, err := s.contracts.FindBySaleID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	sale, err := s.sales.FindByIDWithRelations(ctx, saleID)
	if err != nil {
		return nil, err
	}
	to := strings.TrimSpace(sale.Customer.Email)
	if to == "" {
		return nil, contract.ErrMissingRecipient
	}

	guardKey := "contract-email:" + saleID.String()
	acquired, err := s.guard.Acquire(ctx, guardKey, s.config.SendGuardTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire send guard: %w", err)
	}
	if !acquired {
		return nil, contract.ErrEmailInProgress
	}
	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), guardKey); err != nil {
			s.log(ctx).Warn("failed to release send guard", zap.Error(err))
		}
	}()

	pdf, err := s.pdfFor(ctx, record)
	if err != nil {
		return nil, err
	}

	email := &mail.ContractEmail{
		To:             to,
		CustomerName:   sale.Customer.Name,
		ContractNumber: record.ContractNumber,
		CustomMessage:  customMessage,
		CompanyName:    s.config.CompanyName,
		CompanyPhone:   s.config.CompanyPhone,
		CompanyEmail:   s.config.CompanyEmail,
		PDF:            pdf.Data,
	}
	msg, err := email.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build contract email: %w", err)
	}

	if s.mailer == nil {
		s.metrics.RecordEmail(ctx, false)
		return nil, shared.ErrDeliveryFailed.WithCause(errors.New("mailer is not configured"))
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.metrics.RecordEmail(ctx, false)
		s.log(ctx).Error("contract email delivery failed",
			zap.String("contract_number", record.ContractNumber), zap.Error(err))
		return nil, shared.ErrDeliveryFailed.WithCause(err)
	}

	s.metrics.RecordEmail(ctx, true)
	sentAt := s.config.Now()
	if err := s.contracts.MarkEmailed(ctx, record.ID, sentAt); err != nil {
		// The customer already has the email; report success anyway
		s.log(ctx).Error("failed to flag contract as emailed",
			zap.String("contract_number", record.ContractNumber), zap.Error(err))
	}

	s.log(ctx).Info("contract emailed",
		zap.String("contract_number", record.ContractNumber),
		zap.String(telemetry.SpanAttrRecipient, recipientDomain(to)))

	return &SendEmailResult{
		ContractNumber: record.ContractNumber,
		SentTo:         to,
		SentAt:         sentAt,
	}, nil
}

// =============================================================================
// Helpers
// =============================================================================

// checkSchedule logs sales whose schedule does not add up to the total value
func (s *ContractService) checkSchedule(ctx context.Context, sale *contract.Sale) {
	gap := sale.ScheduleGap()
	if gap.Abs().GreaterThan(scheduleGapTolerance) {
		s.log(ctx).Warn("sale schedule does not match total value",
			zap.String("total_value", sale.TotalValue.StringFixed(2)),
			zap.String("gap", gap.StringFixed(2)),
			zap.Int("installments", sale.InstallmentCount))
	}
}

// log returns the service logger enriched with the request scoped fields of ctx
func (s *ContractService) log(ctx context.Context) *logger.ContextLogger {
	return logger.WithLogger(ctx, s.logger)
}

func recipientDomain(addr string) string {
	if i := strings.LastIndexByte(addr, '@'); i >= 0 {
		return addr[i+1:]
	}
	return ""
}
