package mw

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor_id"

// Actor reads the acting person's id from the given header. Requests without
// the header run as an anonymous actor (id 0); a malformed id is rejected.
func Actor(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(header)
		if raw == "" {
			c.Next()
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + header + " header"})
			return
		}
		c.Set(actorKey, id)
		c.Next()
	}
}

// ActorID returns the acting person set by Actor, or 0.
func ActorID(c *gin.Context) int64 {
	return c.GetInt64(actorKey)
}
