package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) VerifyCampaignAggregate(c *gin.Context) {
	campaign, err := s.campaignSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	report, err := s.campaignSvc.VerifyAggregate(c.Request.Context(), campaign.ID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

func (s *Server) ListDonationNotifications(c *gin.Context) {
	items, err := s.donationSvc.ListNotifications(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}
