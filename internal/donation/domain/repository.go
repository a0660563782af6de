package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, donation *Donation) error
	FindByOrderID(ctx context.Context, db *gorm.DB, orderID string) (*Donation, error)
	// TransitionStatus applies update unless the donation is already
	// finalized-success. It reports whether a row changed.
	TransitionStatus(ctx context.Context, db *gorm.DB, update StatusUpdate) (bool, error)
	InsertNotification(ctx context.Context, db *gorm.DB, notification *PaymentNotification) error
	ListNotifications(ctx context.Context, db *gorm.DB, orderID string) ([]*PaymentNotification, error)
	ListApplied(ctx context.Context, db *gorm.DB, campaignID snowflake.ID, limit int) ([]*Donation, error)
}
