package services

import (
	"context"
	"fmt"

	"github.com/nazrin/tadikahub/internal/app/models"
	"github.com/nazrin/tadikahub/internal/app/models/dto"
	"github.com/nazrin/tadikahub/internal/app/providers"
	"github.com/nazrin/tadikahub/internal/config"
	"github.com/nazrin/tadikahub/internal/pkg/apperrors"
	"github.com/nazrin/tadikahub/internal/pkg/logger"
	"github.com/nazrin/tadikahub/internal/seed"
)

// InvoiceService defines the external invoice bridge operations
type InvoiceService interface {
	GetAmounts(ctx context.Context, invoiceNumbers []string) *dto.InvoiceAmountsResponse
	GetAmount(ctx context.Context, invoiceNumber string) *dto.InvoiceAmountsResponse
	PostPayment(ctx context.Context, payment models.InvoicePayment) (*models.PaymentResult, error)
}

// invoiceServiceImpl implements the InvoiceService interface
type invoiceServiceImpl struct {
	cfg config.InvoiceConfig

	// selectProvider is re-evaluated on every read so config changes and
	// partial configuration are picked up per call. Tests swap it out.
	selectProvider func() providers.AmountProvider
	paymentWriter  providers.PaymentWriter
}

// NewInvoiceService creates a new invoice bridge service instance
func NewInvoiceService(cfg config.InvoiceConfig) InvoiceService {
	s := &invoiceServiceImpl{cfg: cfg}
	s.selectProvider = s.providerFromConfig
	if cfg.Mode == "mysql_ssh" && cfg.HasSSHConfig() {
		s.paymentWriter = providers.NewMySQLPaymentWriter(cfg)
	}
	return s
}

// providerFromConfig picks the amount provider for the configured mode.
// Incomplete configuration yields nil, which sends the read straight to
// local fallback data.
func (s *invoiceServiceImpl) providerFromConfig() providers.AmountProvider {
	switch s.cfg.Mode {
	case "mysql_ssh":
		if !s.cfg.HasSSHConfig() {
			logger.Warn().Msg("Incomplete SSH/MySQL configuration, using local fallback amounts")
			return nil
		}
		return providers.NewMySQLSSHProvider(s.cfg)
	default:
		if !s.cfg.HasAPIConfig() {
			logger.Warn().Msg("No invoice API base URL configured, using local fallback amounts")
			return nil
		}
		return providers.NewAPIProvider(s.cfg.API.BaseURL, s.cfg.API.BearerToken)
	}
}

func fallbackAmounts(invoiceNumbers []string) *dto.InvoiceAmountsResponse {
	records := make([]models.InvoiceAmountRecord, 0, len(invoiceNumbers))
	for _, number := range invoiceNumbers {
		records = append(records, seed.FallbackInvoiceAmount(number))
	}
	return &dto.InvoiceAmountsResponse{
		AmountSource: models.AmountSourceFallback,
		Records:      records,
	}
}

// GetAmounts resolves amounts for a batch of invoice numbers. The read path
// never fails: any provider error is logged and answered from local fallback
// data, tagged with its provenance.
func (s *invoiceServiceImpl) GetAmounts(ctx context.Context, invoiceNumbers []string) *dto.InvoiceAmountsResponse {
	provider := s.selectProvider()
	if provider == nil {
		return fallbackAmounts(invoiceNumbers)
	}

	records, err := provider.GetBatchAmounts(ctx, invoiceNumbers)
	if err != nil {
		logger.Warn().Err(err).Int("count", len(invoiceNumbers)).Msg("External amount read failed, using local fallback")
		return fallbackAmounts(invoiceNumbers)
	}
	if records == nil {
		records = []models.InvoiceAmountRecord{}
	}

	return &dto.InvoiceAmountsResponse{
		AmountSource: models.AmountSourceExternal,
		Records:      records,
	}
}

// GetAmount resolves a single invoice's amounts with the same
// never-fail contract as GetAmounts.
func (s *invoiceServiceImpl) GetAmount(ctx context.Context, invoiceNumber string) *dto.InvoiceAmountsResponse {
	provider := s.selectProvider()
	if provider == nil {
		return fallbackAmounts([]string{invoiceNumber})
	}

	record, err := provider.GetAmountByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		logger.Warn().Err(err).Str("invoice", invoiceNumber).Msg("External amount read failed, using local fallback")
		return fallbackAmounts([]string{invoiceNumber})
	}

	return &dto.InvoiceAmountsResponse{
		AmountSource: models.AmountSourceExternal,
		Records:      []models.InvoiceAmountRecord{*record},
	}
}

// PostPayment applies a payment against the external invoice database.
// Unlike the read path there is no fallback: a failure here means the
// payment was not recorded, and the caller must see that.
func (s *invoiceServiceImpl) PostPayment(ctx context.Context, payment models.InvoicePayment) (*models.PaymentResult, error) {
	if s.paymentWriter == nil {
		logger.Error().Str("mode", s.cfg.Mode).Msg("Payment posting requires a configured mysql_ssh bridge")
		return nil, fmt.Errorf("%w: payment posting requires mode mysql_ssh with complete SSH configuration", apperrors.ErrExternalUnavailable)
	}
	return s.paymentWriter.ApplyPayment(ctx, payment)
}
