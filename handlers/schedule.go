package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fitstudio/middleware"
	"fitstudio/models"
	"fitstudio/services/ledger"
	"fitstudio/services/scheduling"
	"fitstudio/utils"
)

// ScheduleHandler exposes the day-scheduling engine over HTTP.
type ScheduleHandler struct {
	Engine   scheduling.Engine
	Resolver scheduling.Resolver
	Logger   *zap.Logger
}

func NewScheduleHandler(engine scheduling.Engine, resolver scheduling.Resolver, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{Engine: engine, Resolver: resolver, Logger: logger}
}

// seatView is the wire shape of a seat: the stored document plus the
// read-time derived status.
type seatView struct {
	models.Seat
	EffectiveStatus models.SeatStatus `json:"effective_status"`
}

// ListSeatsHandler returns a coach's day, sorted by start minute.
func (h *ScheduleHandler) ListSeatsHandler(c *gin.Context) {
	coachID := c.Param("coachID")
	date, err := strconv.Atoi(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYYMMDD"})
		return
	}

	seats, err := h.Engine.ListSeats(c.Request.Context(), coachID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list seats", "details": err.Error()})
		return
	}

	now := time.Now()
	views := make([]seatView, 0, len(seats))
	for i := range seats {
		views = append(views, seatView{
			Seat:            seats[i],
			EffectiveStatus: scheduling.EffectiveStatus(&seats[i], now),
		})
	}

	open, err := h.Resolver.ExperienceOpen(c.Request.Context(), coachID, date)
	if err != nil {
		h.Logger.Sugar().Warnf("failed to resolve trial availability for coach %s: %v", coachID, err)
		open = false
	}

	c.JSON(http.StatusOK, gin.H{
		"seats":           views,
		"experience_open": open,
	})
}

// ConflictsHandler reports the seats overlapping a candidate window.
func (h *ScheduleHandler) ConflictsHandler(c *gin.Context) {
	coachID := c.Param("coachID")
	var input struct {
		Date  int `json:"date" binding:"required"`
		Start int `json:"start"`
		End   int `json:"end" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	iv, err := scheduling.NewInterval(input.Date, input.Start, input.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conflicts, err := h.Engine.FindConflicts(c.Request.Context(), coachID, input.Date, iv, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check conflicts", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conflicts": conflicts})
}

// AddBreakHandler blocks out part of the acting coach's own day.
func (h *ScheduleHandler) AddBreakHandler(c *gin.Context) {
	coachID := c.GetString(middleware.CtxActorID)
	bizID := c.GetString(middleware.CtxBizID)

	var input struct {
		Date  int    `json:"date" binding:"required"`
		Start int    `json:"start"`
		End   int    `json:"end" binding:"required"`
		Note  string `json:"note"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	iv, err := scheduling.NewInterval(input.Date, input.Start, input.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seat, err := h.Engine.AddBreak(c.Request.Context(), bizID, coachID, input.Date, iv, input.Note)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"break": seat})
}

// RemoveBreakHandler removes or shrinks a break covering the interval.
func (h *ScheduleHandler) RemoveBreakHandler(c *gin.Context) {
	coachID := c.GetString(middleware.CtxActorID)

	var input struct {
		Date  int `json:"date" binding:"required"`
		Start int `json:"start"`
		End   int `json:"end" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	iv, err := scheduling.NewInterval(input.Date, input.Start, input.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Engine.RemoveBreak(c.Request.Context(), coachID, input.Date, iv); err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// ReserveHandler books a seat. Customers book for themselves and always
// open a confirm-required hold; coaches book on a customer's behalf and
// may enter the seat as confirmed or already attended.
func (h *ScheduleHandler) ReserveHandler(c *gin.Context) {
	actorID := c.GetString(middleware.CtxActorID)
	bizID := c.GetString(middleware.CtxBizID)
	role := c.GetString(middleware.CtxRole)

	var input struct {
		CoachID    string            `json:"coach_id"`
		CustomerID string            `json:"customer_id"`
		Date       int               `json:"date" binding:"required"`
		Start      int               `json:"start"`
		End        int               `json:"end" binding:"required"`
		Status     models.SeatStatus `json:"status"`
		Note       string            `json:"note"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	req := scheduling.ReserveRequest{
		BizID:  bizID,
		Date:   input.Date,
		Start:  input.Start,
		End:    input.End,
		Status: input.Status,
		Note:   input.Note,
	}
	switch role {
	case utils.RoleCustomer:
		req.Actor = scheduling.ActorCustomer
		req.CoachID = input.CoachID
		req.CustomerID = actorID
		req.Status = models.SeatStatusConfirmRequired
	case utils.RoleCoach:
		req.Actor = scheduling.ActorCoach
		req.CoachID = actorID
		req.CustomerID = input.CustomerID
		if req.Status == "" {
			req.Status = models.SeatStatusConfirmed
		}
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "unknown role"})
		return
	}
	if req.CoachID == "" || req.CustomerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coach and customer are required"})
		return
	}

	priority, err := h.Resolver.Resolve(c.Request.Context(), req.CoachID, req.CustomerID)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	req.Priority = priority

	seat, err := h.Engine.Reserve(c.Request.Context(), req)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seat": seat})
}

// ConfirmSeatHandler lets the coach accept a pending hold.
func (h *ScheduleHandler) ConfirmSeatHandler(c *gin.Context) {
	if err := h.Engine.Confirm(c.Request.Context(), c.Param("seatID")); err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "confirmed"})
}

// CancelSeatHandler releases a seat. Cancelling an already-cancelled
// seat succeeds.
func (h *ScheduleHandler) CancelSeatHandler(c *gin.Context) {
	if err := h.Engine.Cancel(c.Request.Context(), c.Param("seatID")); err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// CheckInSeatHandler marks a confirmed seat as attended and settles
// its lesson credit.
func (h *ScheduleHandler) CheckInSeatHandler(c *gin.Context) {
	if err := h.Engine.CheckIn(c.Request.Context(), c.Param("seatID")); err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "attended"})
}

func respondScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scheduling.ErrInvalidInterval):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, scheduling.ErrSeatNotFound), errors.Is(err, scheduling.ErrBreakNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, scheduling.ErrNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, scheduling.ErrSlotOccupied),
		errors.Is(err, scheduling.ErrOccupied),
		errors.Is(err, scheduling.ErrInvalidState),
		errors.Is(err, scheduling.ErrExperienceLimit),
		errors.Is(err, ledger.ErrInsufficientCredit):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrLockNotAcquired):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "schedule busy, retry shortly"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scheduling failed", "details": err.Error()})
	}
}
