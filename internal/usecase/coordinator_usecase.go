package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/motocrm/balance/internal/domain"
	"github.com/motocrm/balance/internal/infrastructure/metrics"
)

// systemUserID identifies document-driven mutations in the ledger.
const systemUserID = "system"

// CoordinatorUseCase reacts to financial-document lifecycle transitions and
// translates them into balance mutations. It never drives document state
// itself.
type CoordinatorUseCase struct {
	mutator      BalanceMutator
	documentRepo DocumentRepository
	logger       zerolog.Logger
}

// NewCoordinatorUseCase creates a new CoordinatorUseCase.
func NewCoordinatorUseCase(mutator BalanceMutator, documentRepo DocumentRepository, logger zerolog.Logger) *CoordinatorUseCase {
	return &CoordinatorUseCase{
		mutator:      mutator,
		documentRepo: documentRepo,
		logger:       logger,
	}
}

// DocumentEvent is one document-change or deletion notification as consumed
// from the financial-document module.
type DocumentEvent struct {
	Document  domain.FinancialDocument
	OldStatus domain.DocumentStatus
	NewStatus domain.DocumentStatus
	Deleted   bool
}

// HandleDocumentChange reverses the effect the old status implied, then
// applies the effect of the new status. Statuses with no balance effect are
// skipped entirely.
func (uc *CoordinatorUseCase) HandleDocumentChange(ctx context.Context, doc domain.FinancialDocument, oldStatus, newStatus domain.DocumentStatus) error {
	if domain.StatusAffectsBalance(oldStatus) {
		reason := fmt.Sprintf("reversal of document %s leaving status %s", doc.ID, oldStatus)
		if err := uc.applyEffect(ctx, doc, doc.EffectiveAmount(oldStatus), true, reason); err != nil {
			return err
		}
	}

	if domain.StatusAffectsBalance(newStatus) {
		reason := fmt.Sprintf("document %s entered status %s", doc.ID, newStatus)
		if err := uc.applyEffect(ctx, doc, doc.EffectiveAmount(newStatus), false, reason); err != nil {
			return err
		}
	}

	doc.Status = newStatus
	if err := uc.documentRepo.Upsert(ctx, &doc); err != nil {
		return fmt.Errorf("record document snapshot: %w", err)
	}

	return nil
}

// HandleDocumentDeletion reverses whatever effect the document's current
// status has on the balance.
func (uc *CoordinatorUseCase) HandleDocumentDeletion(ctx context.Context, doc domain.FinancialDocument) error {
	if domain.StatusAffectsBalance(doc.Status) {
		reason := fmt.Sprintf("reversal of deleted document %s in status %s", doc.ID, doc.Status)
		if err := uc.applyEffect(ctx, doc, doc.EffectiveAmount(doc.Status), true, reason); err != nil {
			return err
		}
	}

	if err := uc.documentRepo.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("remove document snapshot: %w", err)
	}

	return nil
}

// HandleBatch processes a batch of document events. Failures are caught and
// logged per event so one bad document does not abort unrelated changes; the
// number of failed events is returned.
func (uc *CoordinatorUseCase) HandleBatch(ctx context.Context, events []DocumentEvent) int {
	failed := 0

	for _, ev := range events {
		var err error
		kind := "change"

		if ev.Deleted {
			kind = "deletion"
			err = uc.HandleDocumentDeletion(ctx, ev.Document)
		} else {
			err = uc.HandleDocumentChange(ctx, ev.Document, ev.OldStatus, ev.NewStatus)
		}

		if err != nil {
			failed++
			metrics.DocumentEvents.WithLabelValues(kind, "error").Inc()
			uc.logger.Error().
				Err(err).
				Str("document_id", ev.Document.ID).
				Int64("company_id", ev.Document.CompanyID).
				Str("kind", kind).
				Msg("document balance event failed")

			continue
		}

		metrics.DocumentEvents.WithLabelValues(kind, "ok").Inc()
	}

	return failed
}

func (uc *CoordinatorUseCase) applyEffect(ctx context.Context, doc domain.FinancialDocument, amount decimal.Decimal, reverse bool, reason string) error {
	if amount.IsZero() {
		return nil
	}

	strategy, err := StrategyFor(doc.PaymentMethod)
	if err != nil {
		return err
	}

	docID := doc.ID
	_, err = uc.mutator.UpdateBalance(ctx, UpdateBalanceInput{
		CompanyID:   doc.CompanyID,
		BalanceType: strategy.BalanceType(),
		Amount:      amount,
		Operation:   OperationFor(doc.Direction, reverse),
		DocumentID:  &docID,
		UserID:      systemUserID,
		UserName:    systemUserID,
		Description: reason,
		IsApproved:  true,
	})

	return err
}
