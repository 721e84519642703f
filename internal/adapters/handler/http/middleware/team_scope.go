package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	TeamIDHeader     = "X-Team-ID"
	ContextTeamIDKey = "teamID"
)

var teamIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// TeamScope reads the team identity set by the upstream gateway. Every
// schedule and layout route is scoped to it.
func TeamScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID := strings.TrimSpace(c.GetHeader(TeamIDHeader))
		if teamID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "X-Team-ID header required"})
			return
		}
		if !teamIDPattern.MatchString(teamID) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid X-Team-ID header"})
			return
		}

		c.Set(ContextTeamIDKey, teamID)
		c.Next()
	}
}

func GetTeamID(c *gin.Context) (string, bool) {
	id, exists := c.Get(ContextTeamIDKey)
	if !exists {
		return "", false
	}
	idStr, ok := id.(string)
	return idStr, ok && idStr != ""
}
