package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/stemsi/kelasops-backend/internal/middleware"
)

// currentAdminSubject returns the authenticated admin's JWT subject for
// provenance fields, or "" when the route is somehow unauthenticated.
func currentAdminSubject(c *gin.Context) string {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return ""
	}
	return claims.Subject
}
