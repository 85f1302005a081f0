package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/database"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/middleware"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/models"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/utils"
)

func setupAuthTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	handler := NewAuthHandler(db)
	router := gin.New()
	router.POST("/api/auth/login", handler.Login)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	protected.GET("/me", handler.Me)

	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	admin.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return db, router
}

func seedAccount(t *testing.T, db *gorm.DB, role models.Role, password string) *models.Agent {
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)

	agent := models.Agent{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		AgentCode:    utils.GenerateAgentCode(8),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&agent).Error)
	return &agent
}

func login(t *testing.T, router *gin.Engine, email, password string) *httptest.ResponseRecorder {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginSuccess(t *testing.T) {
	db, router := setupAuthTest(t)
	agent := seedAccount(t, db, models.RoleAgent, "correct-horse")

	w := login(t, router, agent.Email, "correct-horse")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Tokens utils.TokenPair `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response.Tokens.AccessToken)

	// the issued token passes the auth middleware
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+response.Tokens.AccessToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db, router := setupAuthTest(t)
	agent := seedAccount(t, db, models.RoleAgent, "correct-horse")

	w := login(t, router, agent.Email, "wrong-password")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = login(t, router, "nobody@example.com", "whatever")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	db, router := setupAuthTest(t)
	agent := seedAccount(t, db, models.RoleAgent, "correct-horse")
	require.NoError(t, db.Model(agent).Update("is_active", false).Error)

	w := login(t, router, agent.Email, "correct-horse")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminMiddlewareBlocksAgents(t *testing.T) {
	db, router := setupAuthTest(t)
	agent := seedAccount(t, db, models.RoleAgent, "correct-horse")
	admin := seedAccount(t, db, models.RoleAdmin, "correct-horse")

	agentTokens, err := utils.GenerateTokenPair(agent.ID, agent.Email, agent.Role)
	require.NoError(t, err)
	adminTokens, err := utils.GenerateTokenPair(admin.ID, admin.Email, admin.Role)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+agentTokens.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+adminTokens.AccessToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// no token at all
	req = httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
