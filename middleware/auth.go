package middleware

import (
	"net/http"
	"strings"

	"keja/utils"

	"github.com/gin-gonic/gin"
)

// ContextLandlordID is the gin context key carrying the authenticated
// landlord's ID.
const ContextLandlordID = "landlordID"

// LandlordAuth verifies the bearer token and exposes the actor's landlord ID
// to downstream handlers. Token issuance lives in the auth service; this
// middleware only consumes an already-issued identity.
func LandlordAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		sub, role, err := utils.ExtractActorFromToken(tokenString)
		if err != nil || sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		if role != "landlord" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Landlord account required"})
			return
		}

		c.Set(ContextLandlordID, sub)
		c.Next()
	}
}

// LandlordID returns the authenticated landlord ID set by LandlordAuth.
func LandlordID(c *gin.Context) string {
	return c.GetString(ContextLandlordID)
}
