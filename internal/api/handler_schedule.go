package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shift-signup-backend/internal/mw"
	"shift-signup-backend/internal/signup"
)

// GetPermission reports whether the person may sign up in the year.
func (h *Handler) GetPermission(c *gin.Context) {
	personID, ok := idParam(c, "person_id")
	if !ok {
		return
	}
	year, ok := yearQuery(c)
	if !ok {
		return
	}

	verdict, err := h.coord.Eligibility(c.Request.Context(), personID, year)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"permission": verdict})
}

// GetSchedule lists the person's signups and, on request, the open slots.
func (h *Handler) GetSchedule(c *gin.Context) {
	personID, ok := idParam(c, "person_id")
	if !ok {
		return
	}
	year, ok := yearQuery(c)
	if !ok {
		return
	}
	available := c.Query("shifts_available") == "1" || c.Query("shifts_available") == "true"

	schedule, err := h.coord.Schedule(c.Request.Context(), personID, year, available)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

type signupRequest struct {
	SlotID int64 `json:"slot_id" binding:"required,gt=0"`
}

// PostSignup signs the person up for a slot. Rule denials are 200 responses
// carrying the denial status.
func (h *Handler) PostSignup(c *gin.Context) {
	personID, ok := idParam(c, "person_id")
	if !ok {
		return
	}
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.coord.Signup(c.Request.Context(), signup.Request{
		ActorID:  mw.ActorID(c),
		PersonID: personID,
		SlotID:   req.SlotID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteSignup removes the person from a slot; a missing signup is a 404.
func (h *Handler) DeleteSignup(c *gin.Context) {
	personID, ok := idParam(c, "person_id")
	if !ok {
		return
	}
	slotID, ok := idParam(c, "slot_id")
	if !ok {
		return
	}

	found, err := h.coord.RemoveSignup(c.Request.Context(), signup.Request{
		ActorID:  mw.ActorID(c),
		PersonID: personID,
		SlotID:   slotID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": signup.ErrNotSignedUp.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
