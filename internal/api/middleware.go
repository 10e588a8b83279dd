package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"oms-api/internal/auth"
	"oms-api/internal/models"
	"oms-api/internal/service"
	"oms-api/internal/util"

	"github.com/gin-gonic/gin"
)

const userContextKey = "current_user"

// authMiddleware extracts the bearer token, validates it and loads the
// authenticated user into the request context. The signed token must
// also match the one stored on the user record.
func authMiddleware(issuer *auth.TokenIssuer, users service.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid token format"})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		claims, err := issuer.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil || user.Token != token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// requireAdmin gates the admin panel on an explicit role capability
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || !user.Role.Admin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	val, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := val.(*models.User)
	return user
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
