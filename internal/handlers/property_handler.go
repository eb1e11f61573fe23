package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/staybook/internal/helpers"
	"github.com/joshua-takyi/staybook/internal/models"
	"github.com/joshua-takyi/staybook/internal/services"
)

const maxImagesPerUpload = 10

func CreateProperty(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		var req services.PropertyInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		property, err := p.CreateProperty(c.Request.Context(), requesterFrom(claims), req)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(property, "Property created successfully"))
	}
}

func GetProperty(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		property, err := p.GetProperty(c.Request.Context(), helpers.StringTrim(c.Param("id")))
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(property, ""))
	}
}

func parseFloatQuery(c *gin.Context, key string) (float64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid "+key+" parameter"))
		return 0, false
	}
	return v, true
}

// ListProperties supports ?location=&type=&min_price=&max_price=&guests=&offset=&limit=
func ListProperties(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := paginationParams(c)
		if !ok {
			return
		}
		minPrice, ok := parseFloatQuery(c, "min_price")
		if !ok {
			return
		}
		maxPrice, ok := parseFloatQuery(c, "max_price")
		if !ok {
			return
		}
		guests := 0
		if raw := c.Query("guests"); raw != "" {
			g, err := strconv.Atoi(raw)
			if err != nil || g < 0 {
				c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid guests parameter"))
				return
			}
			guests = g
		}

		properties, total, err := p.ListProperties(c.Request.Context(), models.PropertyFilter{
			Location: c.Query("location"),
			Type:     c.Query("type"),
			MinPrice: minPrice,
			MaxPrice: maxPrice,
			Guests:   guests,
			Offset:   offset,
			Limit:    limit,
		})
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		paginated(c, properties, offset, limit, total)
	}
}

func ListMyProperties(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		offset, limit, ok := paginationParams(c)
		if !ok {
			return
		}
		properties, total, err := p.ListOwnProperties(c.Request.Context(), claims.UserID, offset, limit)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		paginated(c, properties, offset, limit, total)
	}
}

func UpdateProperty(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		var req services.UpdatePropertyInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		property, err := p.UpdateProperty(c.Request.Context(), helpers.StringTrim(c.Param("id")), requesterFrom(claims), req)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(property, "Property updated successfully"))
	}
}

func DeleteProperty(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		if err := p.DeleteProperty(c.Request.Context(), helpers.StringTrim(c.Param("id")), requesterFrom(claims)); err != nil {
			helpers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Property deleted successfully"))
	}
}

// UploadPropertyImages expects multipart form files under "images".
func UploadPropertyImages(p *services.PropertyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid multipart form"))
			return
		}
		headers := form.File["images"]
		if len(headers) == 0 || len(headers) > maxImagesPerUpload {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("provide between 1 and 10 images"))
			return
		}

		files := make([]io.Reader, 0, len(headers))
		for _, h := range headers {
			f, err := h.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, helpers.ErrorResponse("could not read "+h.Filename))
				return
			}
			defer f.Close()
			files = append(files, f)
		}

		property, err := p.UploadImages(c.Request.Context(), helpers.StringTrim(c.Param("id")), requesterFrom(claims), files)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(property, "Images uploaded"))
	}
}
