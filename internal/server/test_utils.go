package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type testCleanupRequest struct {
	Prefix string `json:"prefix"`
}

// TestCleanup removes campaigns created by end-to-end runs, matched by slug
// prefix, together with their donations and notification logs.
func (s *Server) TestCleanup(c *gin.Context) {
	if s.cfg.IsProduction() {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req testCleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	prefix := strings.ToLower(strings.TrimSpace(req.Prefix))
	if prefix == "" {
		AbortWithError(c, newValidationError("prefix", "required", "prefix is required"))
		return
	}

	ctx := c.Request.Context()
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var campaignIDs []int64
		if err := tx.Table("campaigns").
			Where("slug LIKE ?", prefix+"%").
			Pluck("id", &campaignIDs).Error; err != nil {
			return err
		}
		if len(campaignIDs) == 0 {
			return nil
		}

		if err := tx.Exec(
			`DELETE FROM payment_notifications WHERE order_id IN (SELECT order_id FROM donations WHERE campaign_id IN ?)`, campaignIDs,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM donations WHERE campaign_id IN ?`, campaignIDs).Error; err != nil {
			return err
		}
		res := tx.Exec(`DELETE FROM campaigns WHERE id IN ?`, campaignIDs)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted_campaigns": deleted})
}
