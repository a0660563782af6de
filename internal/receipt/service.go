// Package receipt renders PDF receipts for donations that reached their
// campaign aggregate.
package receipt

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	campaigndomain "github.com/smallbiznis/charity/internal/campaign/domain"
	"github.com/smallbiznis/charity/internal/config"
	donationdomain "github.com/smallbiznis/charity/internal/donation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const dateLayout = "02 Jan 2006 15:04 MST"

var Module = fx.Module("receipt",
	fx.Provide(New),
)

type Params struct {
	fx.In

	Cfg       config.Config
	Log       *zap.Logger
	Donations donationdomain.Service
	Campaigns campaigndomain.Service
}

type Service struct {
	organization string
	log          *zap.Logger
	donations    donationdomain.Service
	campaigns    campaigndomain.Service
}

type Receipt struct {
	Filename string
	Content  []byte
}

func New(p Params) *Service {
	org := strings.TrimSpace(p.Cfg.AppName)
	if org == "" {
		org = "charity"
	}
	return &Service{
		organization: org,
		log:          p.Log.Named("receipt.service"),
		donations:    p.Donations,
		campaigns:    p.Campaigns,
	}
}

// Generate renders the receipt of a paid donation. Donations whose amount
// never reached the campaign have no receipt.
func (s *Service) Generate(ctx context.Context, orderID string) (Receipt, error) {
	donation, err := s.donations.GetByOrderID(ctx, orderID)
	if err != nil {
		return Receipt{}, err
	}
	if !donation.Status.IsFinalizedSuccess() || donation.PaidAt == nil {
		return Receipt{}, donationdomain.ErrNotPaid
	}

	campaign, err := s.campaigns.Get(ctx, donation.CampaignID.String())
	if err != nil {
		return Receipt{}, err
	}

	content, err := render(Data{
		Organization:  s.organization,
		ReceiptNumber: donation.ID.String(),
		OrderID:       donation.OrderID,
		DatePaid:      donation.PaidAt.Format(dateLayout),
		DonorName:     donation.DisplayName(),
		DonorEmail:    donation.DonorEmail,
		CampaignTitle: campaign.Title,
		Amount:        FormatAmount(donation.Currency, donation.Amount),
		PaymentMethod: paymentMethod(donation),
		Message:       donation.Message,
	})
	if err != nil {
		s.log.Error("render receipt", zap.String("order_id", donation.OrderID), zap.Error(err))
		return Receipt{}, err
	}

	return Receipt{
		Filename: "receipt-" + donation.OrderID + ".pdf",
		Content:  content,
	}, nil
}

// FormatAmount prints an amount in the smallest currency unit with
// thousands separators, e.g. "IDR 200.000".
func FormatAmount(currency string, amount int64) string {
	digits := decimal.NewFromInt(amount).Abs().String()
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	return strings.TrimSpace(strings.ToUpper(currency) + " " + sign + b.String())
}

func paymentMethod(d donationdomain.Donation) string {
	method := strings.ReplaceAll(strings.TrimSpace(d.PaymentType), "_", " ")
	detail := d.Bank
	if detail == "" {
		detail = d.Issuer
	}
	if detail != "" && method != "" {
		return method + " (" + strings.ToUpper(detail) + ")"
	}
	return method
}
