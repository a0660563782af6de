package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	campaigndomain "github.com/smallbiznis/charity/internal/campaign/domain"
	"github.com/smallbiznis/charity/internal/donation/domain"
	gatewaydomain "github.com/smallbiznis/charity/internal/gateway/domain"
	"github.com/smallbiznis/charity/internal/observability/logger"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Reconcile applies a verified gateway notification to its donation. The
// campaign aggregate is incremented at most once per donation however many
// times the gateway redelivers.
func (s *Service) Reconcile(ctx context.Context, n *gatewaydomain.Notification) (domain.ReconcileResult, error) {
	start := time.Now()
	result, err := s.reconcile(ctx, n)

	provider := ""
	if n != nil {
		provider = n.Provider
	}
	outcome := string(result.Outcome)
	if err != nil {
		outcome = reconcileErrorOutcome(err)
		if outcome == "error" {
			s.reconcileMetrics.IncFailure(err)
		}
	}
	s.reconcileMetrics.ObserveDuration(outcome, time.Since(start))
	s.obsMetrics.RecordWebhookNotification(ctx, provider, outcome)

	return result, err
}

func (s *Service) reconcile(ctx context.Context, n *gatewaydomain.Notification) (domain.ReconcileResult, error) {
	if n == nil || strings.TrimSpace(n.OrderID) == "" {
		return domain.ReconcileResult{}, domain.ErrMissingOrderID
	}
	if strings.TrimSpace(n.TransactionStatus) == "" {
		return domain.ReconcileResult{}, domain.ErrMissingStatus
	}
	orderID := strings.TrimSpace(n.OrderID)

	donation, err := s.repo.FindByOrderID(ctx, s.db, orderID)
	if err != nil {
		return domain.ReconcileResult{}, err
	}
	if donation == nil {
		s.log.Warn("notification for unknown order", zap.String("order_id", orderID), zap.String("provider", n.Provider))
		return domain.ReconcileResult{}, domain.ErrNotFound
	}

	log := logger.WithDonation(logger.WithContext(ctx, s.log), orderID, donation.CampaignID.String()).
		With(zap.String("provider", n.Provider))

	if donation.Status.IsFinalizedSuccess() {
		log.Info("notification for finalized donation ignored",
			zap.String("status", string(donation.Status)),
			zap.String("transaction_status", n.TransactionStatus),
		)
		return domain.ReconcileResult{Donation: *donation, Outcome: domain.OutcomeDuplicate}, nil
	}

	next, err := domain.ParseStatus(n.TransactionStatus, n.FraudStatus)
	if err != nil {
		log.Warn("unsupported transaction status", zap.String("transaction_status", n.TransactionStatus))
		return domain.ReconcileResult{}, err
	}

	// A late non-terminal status never reopens a failed donation.
	if donation.Status.IsFinalizedFailure() && !next.IsTerminal() {
		log.Info("stale notification ignored",
			zap.String("status", string(donation.Status)),
			zap.String("transaction_status", string(next)),
		)
		return domain.ReconcileResult{Donation: *donation, Outcome: domain.OutcomeStale}, nil
	}

	outcome := domain.OutcomeStatusUpdated
	apply := false
	if next.IsFinalizedSuccess() {
		if amountMatches(donation, n) {
			apply = true
			outcome = domain.OutcomeApplied
		} else {
			outcome = domain.OutcomeAmountMismatch
			s.obsMetrics.RecordAmountMismatch(ctx, n.Provider)
			log.Warn("gross amount does not match donation, aggregate not incremented",
				zap.Int64("amount", donation.Amount),
				zap.String("gross_amount", n.GrossAmount),
				zap.String("currency", n.Currency),
			)
		}
	}

	now := s.clock.Now()
	update := domain.StatusUpdate{
		OrderID:              orderID,
		Status:               next,
		PaymentType:          n.PaymentType,
		Issuer:               n.Issuer,
		Bank:                 n.Bank,
		VANumbers:            vaNumbersJSON(n.VANumbers),
		GatewayTransactionID: n.TransactionID,
		FraudStatus:          n.FraudStatus,
		UpdatedAt:            now,
	}
	if apply {
		update.PaidAt = &now
	}

	var (
		changed   bool
		completed bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		changed, err = s.repo.TransitionStatus(ctx, tx, update)
		if err != nil || !changed {
			return err
		}

		if apply {
			campaign, err := s.campaignRepo.ApplyDonation(ctx, tx, donation.CampaignID, donation.Amount, now)
			if err != nil {
				return err
			}
			if campaign == nil {
				return campaigndomain.ErrNotFound
			}
			completed = campaign.Status == campaigndomain.StatusCompleted &&
				campaign.CollectedAmount-donation.Amount < campaign.TargetAmount
		}

		return s.repo.InsertNotification(ctx, tx, &domain.PaymentNotification{
			ID:                ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
			Provider:          n.Provider,
			OrderID:           orderID,
			TransactionID:     n.TransactionID,
			TransactionStatus: n.TransactionStatus,
			FraudStatus:       n.FraudStatus,
			GrossAmount:       n.GrossAmount,
			Outcome:           outcome,
			Payload:           payloadJSON(n.Payload),
			ReceivedAt:        now,
		})
	})
	if err != nil {
		log.Error("reconcile notification failed", zap.Error(err))
		return domain.ReconcileResult{}, err
	}

	if !changed {
		// Another delivery finalized the donation between the guard and the update.
		outcome = domain.OutcomeDuplicate
		completed = false
		log.Info("concurrent notification for finalized donation ignored")
	}

	current, err := s.repo.FindByOrderID(ctx, s.db, orderID)
	if err != nil {
		return domain.ReconcileResult{}, err
	}
	if current == nil {
		current = donation
	}

	if outcome == domain.OutcomeApplied {
		s.obsMetrics.RecordDonationApplied(ctx, current.Currency, current.Amount)
		if completed {
			s.obsMetrics.RecordCampaignCompleted(ctx)
			log.Info("campaign reached its target")
		}
	}

	log.Info("notification reconciled",
		zap.String("previous_status", string(donation.Status)),
		zap.String("status", string(current.Status)),
		zap.String("outcome", string(outcome)),
	)

	return domain.ReconcileResult{
		Donation:          *current,
		Outcome:           outcome,
		CampaignCompleted: completed,
	}, nil
}

// amountMatches compares the reported gross amount, e.g. "200000.00", with
// the stored amount exactly.
func amountMatches(donation *domain.Donation, n *gatewaydomain.Notification) bool {
	if n.Currency != "" && !strings.EqualFold(n.Currency, donation.Currency) {
		return false
	}
	gross, err := decimal.NewFromString(strings.TrimSpace(n.GrossAmount))
	if err != nil {
		return false
	}
	return gross.Equal(decimal.NewFromInt(donation.Amount))
}

func vaNumbersJSON(numbers []gatewaydomain.VANumber) datatypes.JSON {
	if len(numbers) == 0 {
		return nil
	}
	raw, err := json.Marshal(numbers)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func payloadJSON(payload []byte) datatypes.JSON {
	if len(payload) == 0 || !json.Valid(payload) {
		return nil
	}
	return datatypes.JSON(payload)
}

func reconcileErrorOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrMissingOrderID),
		errors.Is(err, domain.ErrMissingStatus),
		errors.Is(err, domain.ErrInvalidStatus):
		return "invalid"
	default:
		return "error"
	}
}
