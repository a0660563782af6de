package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	donationdomain "github.com/smallbiznis/charity/internal/donation/domain"
)

type createDonationRequest struct {
	CampaignID  string `json:"campaign_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Amount      int64  `json:"amount"`
	Message     string `json:"message"`
	IsAnonymous bool   `json:"is_anonymous"`
	UserID      string `json:"user_id"`
}

type donationView struct {
	ID          snowflake.ID          `json:"donorId"`
	OrderID     string                `json:"order_id"`
	CampaignID  snowflake.ID          `json:"campaign_id"`
	Name        string                `json:"name"`
	IsAnonymous bool                  `json:"is_anonymous"`
	Amount      int64                 `json:"amount"`
	Currency    string                `json:"currency"`
	Message     string                `json:"message,omitempty"`
	Status      donationdomain.Status `json:"status"`
	PaymentType string                `json:"payment_type,omitempty"`
	RedirectURL string                `json:"redirect_url,omitempty"`
	PaidAt      *time.Time            `json:"paid_at,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

func newDonationView(d donationdomain.Donation) donationView {
	return donationView{
		ID:          d.ID,
		OrderID:     d.OrderID,
		CampaignID:  d.CampaignID,
		Name:        d.DisplayName(),
		IsAnonymous: d.IsAnonymous,
		Amount:      d.Amount,
		Currency:    d.Currency,
		Message:     d.Message,
		Status:      d.Status,
		PaymentType: d.PaymentType,
		RedirectURL: d.RedirectURL,
		PaidAt:      d.PaidAt,
		CreatedAt:   d.CreatedAt,
	}
}

func (s *Server) CreateDonationIntent(c *gin.Context) {
	var req createDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.donationSvc.CreateIntent(c.Request.Context(), donationdomain.CreateIntentRequest{
		CampaignID:  req.CampaignID,
		Email:       req.Email,
		Name:        req.Name,
		Amount:      req.Amount,
		Message:     req.Message,
		IsAnonymous: req.IsAnonymous,
		UserID:      req.UserID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("order_id", resp.OrderID)
	c.JSON(http.StatusOK, resp)
}

// GetDonation lets the payment return page poll the donation status.
func (s *Server) GetDonation(c *gin.Context) {
	resp, err := s.donationSvc.GetByOrderID(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newDonationView(resp)})
}

func (s *Server) GetDonationReceipt(c *gin.Context) {
	receipt, err := s.receiptSvc.Generate(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename="+strconv.Quote(receipt.Filename))
	c.Data(http.StatusOK, "application/pdf", receipt.Content)
}
