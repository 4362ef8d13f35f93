package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	coachRepo "fitstudio/database/repository/coach"
	customerRepo "fitstudio/database/repository/customer"
	"fitstudio/middleware"
	"fitstudio/models"
	"fitstudio/utils"
)

const tokenLifetime = 72 * time.Hour

// AuthHandler registers and authenticates coach and customer accounts.
type AuthHandler struct {
	Coaches   coachRepo.CoachRepository
	Customers customerRepo.CustomerRepository
	Logger    *zap.Logger
}

func NewAuthHandler(coaches coachRepo.CoachRepository, customers customerRepo.CustomerRepository, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{Coaches: coaches, Customers: customers, Logger: logger}
}

type registerInput struct {
	BizID    string `json:"biz_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginInput struct {
	BizID    string `json:"biz_id" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterCoachHandler creates a coach account and returns a token.
func (h *AuthHandler) RegisterCoachHandler(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if _, err := h.Coaches.GetByPhone(c.Request.Context(), input.BizID, input.Phone); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "phone already registered"})
		return
	} else if err != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed", "details": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	now := time.Now()
	coach := &models.Coach{
		ID:           uuid.New().String(),
		BizID:        input.BizID,
		Name:         input.Name,
		Phone:        input.Phone,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.Coaches.Create(c.Request.Context(), coach); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed", "details": err.Error()})
		return
	}

	token, err := utils.GenerateToken(coach.ID, coach.BizID, utils.RoleCoach, tokenLifetime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"coach": coach, "token": token})
}

// LoginCoachHandler authenticates a coach by phone and password.
func (h *AuthHandler) LoginCoachHandler(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	coach, err := h.Coaches.GetByPhone(c.Request.Context(), input.BizID, input.Phone)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(coach.PasswordHash), []byte(input.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(coach.ID, coach.BizID, utils.RoleCoach, tokenLifetime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"coach": coach, "token": token})
}

// RegisterCustomerHandler creates a customer account and returns a token.
func (h *AuthHandler) RegisterCustomerHandler(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if _, err := h.Customers.GetByPhone(c.Request.Context(), input.BizID, input.Phone); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "phone already registered"})
		return
	} else if err != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed", "details": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	now := time.Now()
	customer := &models.Customer{
		ID:           uuid.New().String(),
		BizID:        input.BizID,
		Name:         input.Name,
		Phone:        input.Phone,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.Customers.Create(c.Request.Context(), customer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed", "details": err.Error()})
		return
	}

	token, err := utils.GenerateToken(customer.ID, customer.BizID, utils.RoleCustomer, tokenLifetime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer, "token": token})
}

// LoginCustomerHandler authenticates a customer by phone and password.
func (h *AuthHandler) LoginCustomerHandler(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	customer, err := h.Customers.GetByPhone(c.Request.Context(), input.BizID, input.Phone)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(input.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(customer.ID, customer.BizID, utils.RoleCustomer, tokenLifetime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer, "token": token})
}

// UpdateFCMTokenHandler stores the caller's push token.
func (h *AuthHandler) UpdateFCMTokenHandler(c *gin.Context) {
	actorID := c.GetString(middleware.CtxActorID)
	role := c.GetString(middleware.CtxRole)

	var input struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	var err error
	switch role {
	case utils.RoleCoach:
		err = h.Coaches.UpdateFCMToken(c.Request.Context(), actorID, input.Token)
	case utils.RoleCustomer:
		err = h.Customers.UpdateFCMToken(c.Request.Context(), actorID, input.Token)
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "unknown role"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store token", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
