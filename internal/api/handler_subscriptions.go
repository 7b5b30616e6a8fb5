package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shift-signup-backend/internal/model"
	"shift-signup-backend/internal/mw"
	"shift-signup-backend/internal/store"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// requireActor writes a 401 for anonymous requests.
func requireActor(c *gin.Context) (int64, bool) {
	id := mw.ActorID(c)
	if id == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "acting person required"})
		return 0, false
	}
	return id, true
}

// PutSubscription creates or replaces the acting person's subscription.
func (h *Handler) PutSubscription(c *gin.Context) {
	personID, ok := requireActor(c)
	if !ok {
		return
	}
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.store.SaveSubscription(c.Request.Context(), &model.PushSubscription{
		Endpoint: req.Endpoint,
		PersonID: personID,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes one of the acting person's subscriptions.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	personID, ok := requireActor(c)
	if !ok {
		return
	}
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.store.FindSubscription(c.Request.Context(), req.Endpoint)
	if errors.Is(err, store.ErrNotFound) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	if sub.PersonID != personID {
		c.JSON(http.StatusForbidden, gin.H{"error": "subscription belongs to someone else"})
		return
	}

	if err := h.store.DeleteSubscription(c.Request.Context(), req.Endpoint); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSubscription reports whether the endpoint is subscribed for the acting person.
func (h *Handler) GetSubscription(c *gin.Context) {
	personID, ok := requireActor(c)
	if !ok {
		return
	}
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	sub, err := h.store.FindSubscription(c.Request.Context(), endpoint)
	if err == nil && sub.PersonID != personID {
		err = store.ErrNotFound
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"endpoint": sub.Endpoint, "person_id": sub.PersonID})
}

// GetVAPIDPublicKey returns the VAPID public key to the client.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "vapid keys are not configured"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}
