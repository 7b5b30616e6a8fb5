package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shift-signup-backend/internal/model"
	"shift-signup-backend/internal/mw"
	"shift-signup-backend/internal/signup"
)

// GetTrainingSession returns the session with its students and trainers.
func (h *Handler) GetTrainingSession(c *gin.Context) {
	slotID, ok := idParam(c, "slot_id")
	if !ok {
		return
	}
	roster, err := h.coord.Roster(c.Request.Context(), slotID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roster)
}

type scoreRequest struct {
	PersonID int64   `json:"id" binding:"required,gt=0"`
	Rank     *int    `json:"rank"`
	Passed   bool    `json:"passed"`
	Note     *string `json:"note"`
}

// PostScore records a trainee's outcome.
func (h *Handler) PostScore(c *gin.Context) {
	slotID, ok := idParam(c, "slot_id")
	if !ok {
		return
	}
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	students, err := h.coord.ScoreTrainee(c.Request.Context(), signup.ScoreRequest{
		ActorID:  mw.ActorID(c),
		SlotID:   slotID,
		PersonID: req.PersonID,
		Rank:     req.Rank,
		Passed:   req.Passed,
		Note:     req.Note,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

type trainerStatusRequest struct {
	Trainers []struct {
		PersonID      int64  `json:"id" binding:"required,gt=0"`
		TrainerSlotID int64  `json:"trainer_slot_id" binding:"required,gt=0"`
		Status        string `json:"status" binding:"omitempty,oneof=pending attended no-show"`
	} `json:"trainers" binding:"required,dive"`
}

// PostTrainerStatus records trainer attendance.
func (h *Handler) PostTrainerStatus(c *gin.Context) {
	slotID, ok := idParam(c, "slot_id")
	if !ok {
		return
	}
	var req trainerStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := make([]signup.TrainerUpdate, len(req.Trainers))
	for i, t := range req.Trainers {
		updates[i] = signup.TrainerUpdate{
			PersonID:      t.PersonID,
			TrainerSlotID: t.TrainerSlotID,
			Status:        model.TrainerAttendance(t.Status),
		}
	}

	trainers, err := h.coord.UpdateTrainerStatuses(c.Request.Context(), mw.ActorID(c), slotID, updates)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trainers": trainers})
}

// GetPositions lists the position catalog.
func (h *Handler) GetPositions(c *gin.Context) {
	positions, err := h.store.ListPositions(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"positions": positions})
}
