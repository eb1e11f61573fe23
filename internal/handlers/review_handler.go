package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/staybook/internal/helpers"
	"github.com/joshua-takyi/staybook/internal/services"
)

func CreateReview(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		var req struct {
			PropertyID string `json:"property_id" binding:"required"`
			BookingID  string `json:"booking_id" binding:"required"`
			Rating     int    `json:"rating"`
			Comment    string `json:"comment"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("property_id and booking_id are required"))
			return
		}

		review, err := r.CreateReview(c.Request.Context(), services.CreateReviewInput{
			PropertyID: helpers.StringTrim(req.PropertyID),
			BookingID:  helpers.StringTrim(req.BookingID),
			UserID:     claims.UserID,
			Rating:     req.Rating,
			Comment:    req.Comment,
		})
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(review, "Review added"))
	}
}

func DeleteReview(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		if err := r.DeleteReview(c.Request.Context(), helpers.StringTrim(c.Param("id")), claims.UserID); err != nil {
			helpers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Review deleted"))
	}
}

func ListPropertyReviews(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviews, err := r.ListReviewsForProperty(c.Request.Context(), helpers.StringTrim(c.Param("id")))
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(reviews, ""))
	}
}
