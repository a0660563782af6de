package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/charity/internal/donation/domain"
	"gorm.io/gorm"
)

const donationColumns = `id, order_id, campaign_id, user_id, donor_email, donor_name, is_anonymous, amount,
	currency, message, provider, payment_token, redirect_url, payment_type, issuer, bank, va_numbers,
	gateway_transaction_id, fraud_status, status, paid_at, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, donation *domain.Donation) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO donations (id, order_id, campaign_id, user_id, donor_email, donor_name, is_anonymous, amount,
			currency, message, provider, payment_token, redirect_url, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		donation.ID,
		donation.OrderID,
		donation.CampaignID,
		donation.UserID,
		donation.DonorEmail,
		donation.DonorName,
		donation.IsAnonymous,
		donation.Amount,
		donation.Currency,
		donation.Message,
		donation.Provider,
		donation.PaymentToken,
		donation.RedirectURL,
		donation.Status,
		donation.CreatedAt,
		donation.UpdatedAt,
	).Error
}

func (r *repo) FindByOrderID(ctx context.Context, db *gorm.DB, orderID string) (*domain.Donation, error) {
	var donation domain.Donation
	err := db.WithContext(ctx).Raw(
		`SELECT `+donationColumns+` FROM donations WHERE order_id = ?`,
		orderID,
	).Scan(&donation).Error
	if err != nil {
		return nil, err
	}
	if donation.ID == 0 {
		return nil, nil
	}
	return &donation, nil
}

// TransitionStatus is conditional on the stored status, so of two
// concurrent deliveries finalizing the same donation only one changes a row.
// Empty metadata never overwrites what an earlier notification stored.
func (r *repo) TransitionStatus(ctx context.Context, db *gorm.DB, update domain.StatusUpdate) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE donations SET
			status = ?,
			payment_type = COALESCE(NULLIF(?, ''), payment_type),
			issuer = COALESCE(NULLIF(?, ''), issuer),
			bank = COALESCE(NULLIF(?, ''), bank),
			va_numbers = COALESCE(?, va_numbers),
			gateway_transaction_id = COALESCE(NULLIF(?, ''), gateway_transaction_id),
			fraud_status = COALESCE(NULLIF(?, ''), fraud_status),
			paid_at = COALESCE(?, paid_at),
			updated_at = ?
		 WHERE order_id = ? AND status NOT IN (?, ?)`,
		update.Status,
		update.PaymentType,
		update.Issuer,
		update.Bank,
		update.VANumbers,
		update.GatewayTransactionID,
		update.FraudStatus,
		update.PaidAt,
		update.UpdatedAt,
		update.OrderID,
		domain.StatusSettlement,
		domain.StatusCapture,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) InsertNotification(ctx context.Context, db *gorm.DB, n *domain.PaymentNotification) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payment_notifications (id, provider, order_id, transaction_id, transaction_status, fraud_status,
			gross_amount, outcome, payload, received_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID,
		n.Provider,
		n.OrderID,
		n.TransactionID,
		n.TransactionStatus,
		n.FraudStatus,
		n.GrossAmount,
		n.Outcome,
		n.Payload,
		n.ReceivedAt,
	).Error
}

func (r *repo) ListNotifications(ctx context.Context, db *gorm.DB, orderID string) ([]*domain.PaymentNotification, error) {
	var items []*domain.PaymentNotification
	err := db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("received_at asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListApplied(ctx context.Context, db *gorm.DB, campaignID snowflake.ID, limit int) ([]*domain.Donation, error) {
	var items []*domain.Donation
	stmt := db.WithContext(ctx).
		Model(&domain.Donation{}).
		Where("campaign_id = ?", campaignID).
		Where("status IN ?", []domain.Status{domain.StatusSettlement, domain.StatusCapture}).
		Where("paid_at IS NOT NULL")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Order("paid_at desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
