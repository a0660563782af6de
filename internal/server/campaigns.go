package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	campaigndomain "github.com/smallbiznis/charity/internal/campaign/domain"
)

type createCampaignRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	TargetAmount int64  `json:"target_amount"`
	Currency     string `json:"currency"`
	Deadline     string `json:"deadline"`
}

type campaignView struct {
	campaigndomain.Campaign
	Progress float64 `json:"progress"`
}

func newCampaignView(c campaigndomain.Campaign) campaignView {
	return campaignView{Campaign: c, Progress: c.Progress()}
}

func (s *Server) CreateCampaign(c *gin.Context) {
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var deadline *time.Time
	if value := strings.TrimSpace(req.Deadline); value != "" {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			AbortWithError(c, newValidationError("deadline", "invalid_deadline", "deadline must be RFC3339"))
			return
		}
		deadline = &parsed
	}

	resp, err := s.campaignSvc.Create(c.Request.Context(), campaigndomain.CreateCampaignRequest{
		Title:        req.Title,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		Currency:     req.Currency,
		Deadline:     deadline,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": newCampaignView(resp)})
}

func (s *Server) ListCampaigns(c *gin.Context) {
	var query struct {
		Status string `form:"status"`
		Limit  int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items, err := s.campaignSvc.List(c.Request.Context(), campaigndomain.ListCampaignRequest{
		Status: query.Status,
		Limit:  query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	views := make([]campaignView, 0, len(items))
	for _, item := range items {
		views = append(views, newCampaignView(item))
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

func (s *Server) GetCampaign(c *gin.Context) {
	resp, err := s.campaignSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newCampaignView(resp)})
}

func (s *Server) ListCampaignDonors(c *gin.Context) {
	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	campaign, err := s.campaignSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	donors, err := s.donationSvc.ListDonors(c.Request.Context(), campaign.ID, query.Limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": donors})
}
