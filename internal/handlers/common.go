package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/staybook/internal/helpers"
	"github.com/joshua-takyi/staybook/internal/services"
)

const dateLayout = "2006-01-02"

// currentUser writes a 401 and returns false when the request carries no claims.
func currentUser(c *gin.Context) (*helpers.EnhancedClaims, bool) {
	claims, ok := helpers.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, helpers.ErrorResponse("unauthorized"))
		return nil, false
	}
	return claims, true
}

func requesterFrom(claims *helpers.EnhancedClaims) services.Requester {
	return services.Requester{
		UserID:  claims.UserID,
		IsAdmin: claims.IsAdmin(),
		IsHost:  claims.IsHost(),
	}
}

func paginationParams(c *gin.Context) (offset, limit int, ok bool) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid limit parameter"))
		return 0, 0, false
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid offset parameter"))
		return 0, 0, false
	}
	return offset, limit, true
}

func paginated(c *gin.Context, data interface{}, offset, limit int, total int64) {
	page := (offset / limit) + 1
	c.JSON(http.StatusOK, helpers.PaginatedResponse(data, page, limit, int(total)))
}

// parseDate accepts a calendar date (2006-01-02) or a full RFC3339 timestamp.
func parseDate(field, value string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid %s, expected YYYY-MM-DD", field)
}
