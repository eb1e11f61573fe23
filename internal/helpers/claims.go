package helpers

import (
	"github.com/gin-gonic/gin"
)

// EnhancedClaims is the token claims merged with the current user record.
type EnhancedClaims struct {
	*CustomClaims
	Role       string `json:"role"`
	UserID     string `json:"id"`
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Host       bool   `json:"is_host"`
	IsVerified bool   `json:"is_verified"`
}

// Helper methods for role checking
func (ec *EnhancedClaims) IsAdmin() bool {
	return ec.Role == "admin"
}

func (ec *EnhancedClaims) IsHost() bool {
	return ec.Host
}

func (ec *EnhancedClaims) HasRole(role string) bool {
	return ec.Role == role
}

func (ec *EnhancedClaims) IsOwner(userID string) bool {
	return ec.UserID == userID
}

func (ec *EnhancedClaims) GetSafeRole() string {
	if ec.Role == "" {
		return "user"
	}
	return ec.Role
}

// ClaimsFromContext returns the claims AuthMiddleware stored on the request.
func ClaimsFromContext(c *gin.Context) (*EnhancedClaims, bool) {
	raw, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	claims, ok := raw.(*EnhancedClaims)
	return claims, ok && claims != nil
}
