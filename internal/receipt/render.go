package receipt

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Data is everything printed on a donation receipt.
type Data struct {
	Organization  string
	ReceiptNumber string
	OrderID       string
	DatePaid      string
	DonorName     string
	DonorEmail    string
	CampaignTitle string
	Amount        string
	PaymentMethod string
	Message       string
}

func render(data Data) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(8, "Donation receipt", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, data.Organization, props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Receipt number: "+data.ReceiptNumber, props.Text{Top: 0}),
			text.New("Order: "+data.OrderID, props.Text{Top: 4}),
			text.New("Date paid: "+data.DatePaid, props.Text{Top: 8}),
		),
		col.New(6).Add(
			text.New("Donor", props.Text{Style: fontstyle.Bold, Align: align.Right}),
			text.New(data.DonorName, props.Text{Top: 5, Align: align.Right}),
			text.New(data.DonorEmail, props.Text{Top: 9, Align: align.Right}),
		),
	)

	m.AddRow(15,
		text.NewCol(12, data.Amount+" received on "+data.DatePaid, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   5,
		}),
	)
	m.AddRow(4, line.NewCol(12))

	m.AddRow(10,
		text.NewCol(8, "Campaign", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(12,
		text.NewCol(8, data.CampaignTitle, props.Text{Size: 9}),
		text.NewCol(4, data.Amount, props.Text{Size: 9, Align: align.Right}),
	)

	if method := strings.TrimSpace(data.PaymentMethod); method != "" {
		m.AddRow(10,
			text.NewCol(12, "Paid with "+method, props.Text{Size: 9}),
		)
	}
	if msg := strings.TrimSpace(data.Message); msg != "" {
		m.AddRow(15,
			text.NewCol(12, fmt.Sprintf("%q", msg), props.Text{Size: 9, Style: fontstyle.Italic}),
		)
	}

	m.AddRow(15,
		text.NewCol(12, "Thank you for your support.", props.Text{Size: 10, Top: 5}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}
