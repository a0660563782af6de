package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/charity/internal/donation/domain"
)

func (s *Service) GetByOrderID(ctx context.Context, orderID string) (domain.Donation, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Donation{}, domain.ErrInvalidOrderID
	}
	item, err := s.repo.FindByOrderID(ctx, s.db, orderID)
	if err != nil {
		return domain.Donation{}, err
	}
	if item == nil {
		return domain.Donation{}, domain.ErrNotFound
	}
	return *item, nil
}

// ListDonors returns the donor wall: donations that reached the campaign
// aggregate, newest first, with anonymous donors masked.
func (s *Service) ListDonors(ctx context.Context, campaignID snowflake.ID, limit int) ([]domain.PublicDonation, error) {
	if campaignID == 0 {
		return nil, domain.ErrInvalidCampaign
	}
	if limit <= 0 {
		limit = defaultDonorLimit
	}
	if limit > maxDonorLimit {
		limit = maxDonorLimit
	}

	items, err := s.repo.ListApplied(ctx, s.db, campaignID, limit)
	if err != nil {
		return nil, err
	}

	donors := make([]domain.PublicDonation, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		donors = append(donors, domain.PublicDonation{
			Name:      item.DisplayName(),
			Amount:    item.Amount,
			Currency:  item.Currency,
			Message:   item.Message,
			CreatedAt: item.CreatedAt,
		})
	}
	return donors, nil
}

func (s *Service) ListNotifications(ctx context.Context, orderID string) ([]domain.PaymentNotification, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, domain.ErrInvalidOrderID
	}
	donation, err := s.repo.FindByOrderID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, domain.ErrNotFound
	}
	items, err := s.repo.ListNotifications(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PaymentNotification, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}
