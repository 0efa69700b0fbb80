package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userIdKey = "userId"

// requireUser validates the bearer token and stashes the user id on the
// request context.
func (s *Server) requireUser(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	userId, err := s.tokens.ParseUserId(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	c.Set(userIdKey, userId)
	c.Next()
}

// requireReviewSecret guards back-office routes with a shared secret.
func (s *Server) requireReviewSecret(c *gin.Context) {
	if s.cfg.KycReviewSecret == "" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "review endpoint disabled"})
		return
	}

	provided := c.GetHeader("X-Review-Secret")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(s.cfg.KycReviewSecret)) != 1 {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	c.Next()
}

func currentUserId(c *gin.Context) string {
	return c.GetString(userIdKey)
}
