package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"shift-signup-backend/config"
	"shift-signup-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(handler *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	caching := mw.Cache(cache.New(ttl, 2*ttl), ttl)

	api := r.Group("/api")
	api.Use(
		mw.Actor(cfg.ActorHeader),
		mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, mw.ByActor),
	)
	{
		person := api.Group("/person/:person_id/schedule")
		person.GET("", handler.GetSchedule)
		person.POST("", handler.PostSignup)
		person.GET("/permission", handler.GetPermission)
		person.DELETE("/:slot_id", handler.DeleteSignup)

		session := api.Group("/training-session/:slot_id")
		session.GET("", handler.GetTrainingSession)
		session.POST("/score", handler.PostScore)
		session.POST("/trainer-status", handler.PostTrainerStatus)

		api.GET("/positions", caching, handler.GetPositions)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
