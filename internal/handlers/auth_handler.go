package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/models"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/utils"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	db *gorm.DB
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

// Login authenticates an agent or admin and returns a token pair
func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var agent models.Agent
	if err := h.db.Where("email = ?", input.Email).First(&agent).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if !agent.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "account is disabled"})
		return
	}

	if !utils.CheckPasswordHash(input.Password, agent.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	tokens, err := utils.GenerateTokenPair(agent.ID, agent.Email, agent.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate tokens"})
		return
	}

	now := time.Now()
	agent.LastLoginAt = &now
	h.db.Save(&agent)

	c.JSON(http.StatusOK, gin.H{
		"agent":  agent,
		"tokens": tokens,
	})
}

// Me returns the authenticated account
func (h *AuthHandler) Me(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}

	var agent models.Agent
	if err := h.db.First(&agent, "id = ?", agentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	c.JSON(http.StatusOK, agent)
}

// callerID extracts the authenticated account ID set by the auth middleware.
// Writes the error response itself when the context has no valid identity.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	idStr := c.GetString("agent_id")
	if idStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account ID"})
		return uuid.Nil, false
	}

	return id, true
}
