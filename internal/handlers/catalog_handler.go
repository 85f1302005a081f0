package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/models"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/catalog"
)

// CatalogHandler serves the university catalog and agent student registration
type CatalogHandler struct {
	db         *gorm.DB
	catalogSvc *catalog.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(db *gorm.DB, catalogSvc *catalog.CatalogService) *CatalogHandler {
	return &CatalogHandler{db: db, catalogSvc: catalogSvc}
}

// ListUniversities lists active universities
func (h *CatalogHandler) ListUniversities(c *gin.Context) {
	universities, err := h.catalogSvc.ListUniversities()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list universities"})
		return
	}
	c.JSON(http.StatusOK, universities)
}

// ListPrograms lists active programs, filtered by university when requested
func (h *CatalogHandler) ListPrograms(c *gin.Context) {
	var universityID *uuid.UUID
	if universityStr := c.Query("university_id"); universityStr != "" {
		parsed, err := uuid.Parse(universityStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid university ID"})
			return
		}
		universityID = &parsed
	}

	programs, err := h.catalogSvc.ListPrograms(universityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list programs"})
		return
	}
	c.JSON(http.StatusOK, programs)
}

// RegisterStudent registers a student under the calling agent
func (h *CatalogHandler) RegisterStudent(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}

	var input struct {
		FirstName   string `json:"first_name" binding:"required"`
		LastName    string `json:"last_name" binding:"required"`
		Email       string `json:"email"`
		Nationality string `json:"nationality"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student, err := h.catalogSvc.RegisterStudent(catalog.RegisterStudentInput{
		AgentID:     agentID,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		Nationality: input.Nationality,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register student"})
		return
	}

	c.JSON(http.StatusCreated, student)
}

// ListStudents lists the calling agent's students
func (h *CatalogHandler) ListStudents(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}

	students, err := h.catalogSvc.ListStudents(agentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list students"})
		return
	}
	c.JSON(http.StatusOK, students)
}

// AdminCatalogHandler manages the catalog from the back office
type AdminCatalogHandler struct {
	db         *gorm.DB
	catalogSvc *catalog.CatalogService
}

// NewAdminCatalogHandler creates a new admin catalog handler
func NewAdminCatalogHandler(db *gorm.DB, catalogSvc *catalog.CatalogService) *AdminCatalogHandler {
	return &AdminCatalogHandler{db: db, catalogSvc: catalogSvc}
}

// CreateUniversity creates a partner university
func (h *AdminCatalogHandler) CreateUniversity(c *gin.Context) {
	var input struct {
		Name    string `json:"name" binding:"required"`
		Country string `json:"country"`
		City    string `json:"city"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	university, err := h.catalogSvc.CreateUniversity(catalog.CreateUniversityInput{
		Name:    input.Name,
		Country: input.Country,
		City:    input.City,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrDuplicateUniversity) {
			c.JSON(http.StatusConflict, gin.H{"error": "university already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create university"})
		return
	}

	c.JSON(http.StatusCreated, university)
}

// CreateProgram creates a program under a university
func (h *AdminCatalogHandler) CreateProgram(c *gin.Context) {
	var input struct {
		UniversityID    string  `json:"university_id" binding:"required"`
		Name            string  `json:"name" binding:"required"`
		DegreeType      string  `json:"degree_type" binding:"required"`
		TuitionFee      float64 `json:"tuition_fee"`
		AgentCommission float64 `json:"agent_commission"`
		Currency        string  `json:"currency"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	universityID, err := uuid.Parse(input.UniversityID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid university ID"})
		return
	}

	program, err := h.catalogSvc.CreateProgram(catalog.CreateProgramInput{
		UniversityID:    universityID,
		Name:            input.Name,
		DegreeType:      models.DegreeType(input.DegreeType),
		TuitionFee:      input.TuitionFee,
		AgentCommission: input.AgentCommission,
		Currency:        input.Currency,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrUniversityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "university not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create program"})
		return
	}

	c.JSON(http.StatusCreated, program)
}

// SetScholarshipConfig sets the thresholds for a university/degree combination
func (h *AdminCatalogHandler) SetScholarshipConfig(c *gin.Context) {
	var input struct {
		UniversityID    string `json:"university_id" binding:"required"`
		DegreeType      string `json:"degree_type" binding:"required"`
		AgentThreshold  int    `json:"agent_threshold" binding:"required"`
		SystemThreshold int    `json:"system_threshold" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	universityID, err := uuid.Parse(input.UniversityID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid university ID"})
		return
	}

	config, err := h.catalogSvc.UpsertScholarshipConfig(universityID, models.DegreeType(input.DegreeType), input.AgentThreshold, input.SystemThreshold)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set scholarship config"})
		return
	}

	c.JSON(http.StatusOK, config)
}
