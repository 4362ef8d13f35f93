package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fitstudio/middleware"
	"fitstudio/models"
	"fitstudio/services/scheduling"
	"fitstudio/services/trigger"
)

// TriggerHandler manages weekly recurring-booking rules for the acting
// coach.
type TriggerHandler struct {
	Triggers trigger.Service
	Logger   *zap.Logger
}

func NewTriggerHandler(svc trigger.Service, logger *zap.Logger) *TriggerHandler {
	return &TriggerHandler{Triggers: svc, Logger: logger}
}

// CreateTriggerHandler registers a new weekly rule.
func (h *TriggerHandler) CreateTriggerHandler(c *gin.Context) {
	coachID := c.GetString(middleware.CtxActorID)
	bizID := c.GetString(middleware.CtxBizID)

	var input struct {
		CustomerID string `json:"customer_id" binding:"required"`
		Weekday    int    `json:"weekday"`
		Start      int    `json:"start"`
		End        int    `json:"end" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if input.Weekday < 0 || input.Weekday > 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weekday must be 0 (Sunday) through 6 (Saturday)"})
		return
	}

	now := time.Now()
	rule := &models.SeatTrigger{
		ID:         uuid.New().String(),
		BizID:      bizID,
		CoachID:    coachID,
		CustomerID: input.CustomerID,
		Weekday:    input.Weekday,
		Start:      input.Start,
		End:        input.End,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.Triggers.Create(c.Request.Context(), rule); err != nil {
		switch {
		case errors.Is(err, scheduling.ErrInvalidInterval):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, trigger.ErrTriggerOverlap):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create rule", "details": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"trigger": rule})
}

// DeactivateTriggerHandler stops a rule from materializing further
// occurrences. Seats it already created are untouched.
func (h *TriggerHandler) DeactivateTriggerHandler(c *gin.Context) {
	if err := h.Triggers.Deactivate(c.Request.Context(), c.Param("triggerID")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deactivate rule", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

// ListTriggersHandler lists the acting coach's rules.
func (h *TriggerHandler) ListTriggersHandler(c *gin.Context) {
	coachID := c.GetString(middleware.CtxActorID)
	rules, err := h.Triggers.ListByCoach(c.Request.Context(), coachID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rules", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"triggers": rules})
}
