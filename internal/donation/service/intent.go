package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	campaigndomain "github.com/smallbiznis/charity/internal/campaign/domain"
	"github.com/smallbiznis/charity/internal/donation/domain"
	gatewaydomain "github.com/smallbiznis/charity/internal/gateway/domain"
	"github.com/smallbiznis/charity/internal/observability/logger"
	"github.com/smallbiznis/charity/internal/ratelimit"
	"go.uber.org/zap"
)

const intentLockKey = "donation:intent:%s:%s:%d"

// CreateIntent opens a gateway session and records the pending donation.
// The gateway is called once; a rejection is returned as is.
func (s *Service) CreateIntent(ctx context.Context, req domain.CreateIntentRequest) (domain.IntentResult, error) {
	policy := s.policy.Get()

	campaignID, err := snowflake.ParseString(strings.TrimSpace(req.CampaignID))
	if err != nil || campaignID == 0 {
		return domain.IntentResult{}, domain.ErrInvalidCampaign
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validEmail(email) {
		return domain.IntentResult{}, domain.ErrInvalidEmail
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		if !req.IsAnonymous {
			return domain.IntentResult{}, domain.ErrInvalidName
		}
		name = domain.AnonymousName
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return domain.IntentResult{}, domain.ErrInvalidName
	}

	if req.Amount <= 0 {
		return domain.IntentResult{}, domain.ErrInvalidAmount
	}
	if req.Amount < policy.MinimumAmount {
		return domain.IntentResult{}, domain.ErrAmountBelowMinimum
	}

	message := strings.TrimSpace(req.Message)
	if utf8.RuneCountInString(message) > maxMessageLength {
		return domain.IntentResult{}, domain.ErrInvalidMessage
	}

	campaign, err := s.campaignRepo.FindByID(ctx, s.db, campaignID)
	if err != nil {
		return domain.IntentResult{}, err
	}
	if campaign == nil {
		return domain.IntentResult{}, campaigndomain.ErrNotFound
	}

	gw, err := s.gateways.Default()
	if err != nil {
		return domain.IntentResult{}, err
	}

	log := logger.WithContext(ctx, s.log).With(
		zap.String("campaign_id", campaign.ID.String()),
		zap.String("provider", gw.Provider()),
	)

	release, err := s.acquireIntentLock(ctx, log, campaign.ID, email, req.Amount, policy.IntentLockTTL)
	if err != nil {
		s.obsMetrics.RecordDonationIntent(ctx, gw.Provider(), "in_progress")
		return domain.IntentResult{}, err
	}

	orderID := fmt.Sprintf("%s-%s", policy.OrderIDPrefix, uuid.NewString())
	log = log.With(zap.String("order_id", orderID))

	tx, err := gw.CreateTransaction(ctx, gatewaydomain.TransactionRequest{
		OrderID:  orderID,
		Amount:   req.Amount,
		Currency: campaign.Currency,
		ItemID:   campaign.ID.String(),
		ItemName: itemName(policy.ItemName, campaign.Title),
		Customer: gatewaydomain.Customer{
			FirstName: name,
			Email:     email,
		},
	})
	if err != nil {
		release()
		s.obsMetrics.RecordDonationIntent(ctx, gw.Provider(), "gateway_error")
		var gwErr *gatewaydomain.GatewayError
		if errors.As(err, &gwErr) {
			log.Warn("gateway rejected transaction", zap.Int("gateway_status", gwErr.StatusCode), zap.String("gateway_message", gwErr.Message))
			return domain.IntentResult{}, gwErr
		}
		if errors.Is(err, gatewaydomain.ErrNotConfigured) {
			return domain.IntentResult{}, err
		}
		log.Error("gateway request failed", zap.Error(err))
		return domain.IntentResult{}, &gatewaydomain.GatewayError{
			Provider: gw.Provider(),
			Message:  "payment gateway unavailable",
		}
	}

	now := s.clock.Now()
	donation := domain.Donation{
		ID:           s.genID.Generate(),
		OrderID:      orderID,
		CampaignID:   campaign.ID,
		DonorEmail:   email,
		DonorName:    name,
		IsAnonymous:  req.IsAnonymous,
		Amount:       req.Amount,
		Currency:     campaign.Currency,
		Message:      message,
		Provider:     gw.Provider(),
		PaymentToken: tx.Token,
		RedirectURL:  tx.RedirectURL,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if userID := strings.TrimSpace(req.UserID); userID != "" {
		donation.UserID = &userID
	}

	if err := s.repo.Insert(ctx, s.db, &donation); err != nil {
		release()
		// The gateway session exists without a record; its webhook will 404.
		log.Error("persist donation intent failed", zap.Error(err))
		return domain.IntentResult{}, err
	}

	s.obsMetrics.RecordDonationIntent(ctx, gw.Provider(), "created")
	log.Info("donation intent created",
		zap.String("donation_id", donation.ID.String()),
		zap.Int64("amount", donation.Amount),
	)

	return domain.IntentResult{
		Transaction: *tx,
		DonorID:     donation.ID,
		OrderID:     donation.OrderID,
	}, nil
}

// acquireIntentLock guards against double submits of the same pledge. On
// success the lock is left to expire so a quick resubmit is rejected; the
// returned release is for failure paths. Without Redis it is a no-op.
func (s *Service) acquireIntentLock(ctx context.Context, log *zap.Logger, campaignID snowflake.ID, email string, amount int64, ttl time.Duration) (func(), error) {
	noop := func() {}
	if !s.locker.Enabled() || ttl <= 0 {
		return noop, nil
	}

	key := fmt.Sprintf(intentLockKey, campaignID.String(), email, amount)
	lease, err := s.locker.Acquire(ctx, key, ttl)
	switch {
	case errors.Is(err, ratelimit.ErrLockHeld):
		return nil, domain.ErrIntentInProgress
	case err != nil:
		log.Warn("intent lock unavailable", zap.Error(err))
		return noop, nil
	}
	return func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			log.Warn("release intent lock", zap.Error(err))
		}
	}, nil
}

func validEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}

func itemName(prefix, title string) string {
	prefix = strings.TrimSpace(prefix)
	title = strings.TrimSpace(title)
	switch {
	case prefix == "":
		return title
	case title == "":
		return prefix
	default:
		return prefix + ": " + title
	}
}
