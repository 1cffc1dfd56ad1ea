package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/join-dots/pkg/httputil"
)

// SeatChecker reports whether token may drive gameID.
type SeatChecker interface {
	Seated(gameID, token string) bool
}

// SeatMiddleware only lets through requests carrying the seat token of the
// game named by the :id route parameter.
func SeatMiddleware(seats SeatChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := httputil.GetTokenFromRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Seat token required"})
			return
		}

		if !seats.Seated(c.Param("id"), token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid seat token"})
			return
		}

		c.Next()
	}
}
