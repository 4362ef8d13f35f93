package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fitstudio/middleware"
	"fitstudio/services/ledger"
)

// LessonHandler exposes manual lesson-credit operations on the legacy
// trainee counters.
type LessonHandler struct {
	Ledger ledger.Service
	Logger *zap.Logger
}

func NewLessonHandler(svc ledger.Service, logger *zap.Logger) *LessonHandler {
	return &LessonHandler{Ledger: svc, Logger: logger}
}

// RechargeHandler adds purchased lessons to a trainee.
func (h *LessonHandler) RechargeHandler(c *gin.Context) {
	h.adjust(c, func(traineeID string, lessons int, note string) error {
		return h.Ledger.Recharge(c.Request.Context(), traineeID, lessons, note)
	})
}

// DeductHandler removes lessons from a trainee, e.g. to correct a
// recharge mistake.
func (h *LessonHandler) DeductHandler(c *gin.Context) {
	h.adjust(c, func(traineeID string, lessons int, note string) error {
		return h.Ledger.Deduct(c.Request.Context(), traineeID, lessons, note)
	})
}

func (h *LessonHandler) adjust(c *gin.Context, apply func(traineeID string, lessons int, note string) error) {
	var input struct {
		TraineeID string `json:"trainee_id" binding:"required"`
		Lessons   int    `json:"lessons" binding:"required"`
		Note      string `json:"note"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if input.Lessons <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lessons must be positive"})
		return
	}

	if err := apply(input.TraineeID, input.Lessons, input.Note); err != nil {
		if errors.Is(err, ledger.ErrInsufficientCredit) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger adjustment failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// EntriesHandler lists the acting customer's audit trail, newest first.
func (h *LessonHandler) EntriesHandler(c *gin.Context) {
	customerID := c.Param("customerID")
	if customerID == "" {
		customerID = c.GetString(middleware.CtxActorID)
	}

	entries, err := h.Ledger.Entries(c.Request.Context(), customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list entries", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
