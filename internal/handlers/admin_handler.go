package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/staybook/internal/helpers"
	"github.com/joshua-takyi/staybook/internal/models"
	"github.com/joshua-takyi/staybook/internal/reports"
	"github.com/joshua-takyi/staybook/internal/services"
)

func DashboardStats(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := a.DashboardStats(c.Request.Context())
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(stats, ""))
	}
}

func AdminListUsers(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := paginationParams(c)
		if !ok {
			return
		}
		users, total, err := a.ListUsers(c.Request.Context(), offset, limit)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		paginated(c, users, offset, limit, total)
	}
}

func AdminListBookings(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := paginationParams(c)
		if !ok {
			return
		}
		bookings, total, err := a.ListBookings(c.Request.Context(), models.BookingFilter{
			Status: models.BookingStatus(c.Query("status")),
			Offset: offset,
			Limit:  limit,
		})
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		paginated(c, bookings, offset, limit, total)
	}
}

func AdminListProperties(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := paginationParams(c)
		if !ok {
			return
		}
		properties, total, err := a.ListProperties(c.Request.Context(), offset, limit)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		paginated(c, properties, offset, limit, total)
	}
}

func AdminDeleteUser(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		if err := a.DeleteUser(c.Request.Context(), helpers.StringTrim(c.Param("id")), requesterFrom(claims)); err != nil {
			helpers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "User deleted"))
	}
}

func AdminSetUserRole(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		var req struct {
			Role string `json:"role" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("role is required"))
			return
		}
		user, err := a.SetUserRole(c.Request.Context(), helpers.StringTrim(c.Param("id")), req.Role, requesterFrom(claims))
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(user, "Role updated"))
	}
}

// RunSweep triggers the maintenance sweep immediately and returns its counts.
func RunSweep(s *services.AutomationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := s.RunSweep(c.Request.Context())
		c.JSON(http.StatusOK, helpers.SuccessResponse(result, "Sweep completed"))
	}
}

// ExportReport streams /admin/reports/:resource?format=xlsx|pdf as a download.
func ExportReport(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		format, err := reports.ParseFormat(c.Query("format"))
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("format must be xlsx or pdf"))
			return
		}
		file, err := a.ExportReport(c.Request.Context(), c.Param("resource"), format)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
		c.Data(http.StatusOK, file.ContentType, file.Data)
	}
}
