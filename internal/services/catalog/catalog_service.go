package catalog

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/models"
)

var (
	// ErrDuplicateUniversity is returned when a university with the same slug exists
	ErrDuplicateUniversity = errors.New("university already exists")
	// ErrUniversityNotFound is returned when the referenced university does not exist
	ErrUniversityNotFound = errors.New("university not found")
)

// CatalogService manages the partner university catalog: universities, their
// programs, scholarship thresholds and agent-registered students.
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a new catalog service
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// CreateUniversityInput holds the fields for a new university
type CreateUniversityInput struct {
	Name    string
	Country string
	City    string
}

// CreateUniversity creates a university with a URL-safe slug derived from its name
func (s *CatalogService) CreateUniversity(input CreateUniversityInput) (*models.University, error) {
	universitySlug := slug.Make(input.Name)

	var count int64
	if err := s.db.Model(&models.University{}).Where("slug = ?", universitySlug).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("error checking university slug: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateUniversity
	}

	university := models.University{
		ID:       uuid.New(),
		Name:     input.Name,
		Slug:     universitySlug,
		Country:  input.Country,
		City:     input.City,
		IsActive: true,
	}
	if err := s.db.Create(&university).Error; err != nil {
		return nil, fmt.Errorf("error creating university: %w", err)
	}
	return &university, nil
}

// ListUniversities lists active universities
func (s *CatalogService) ListUniversities() ([]models.University, error) {
	var universities []models.University
	if err := s.db.Where("is_active = ?", true).Order("name asc").Find(&universities).Error; err != nil {
		return nil, fmt.Errorf("error listing universities: %w", err)
	}
	return universities, nil
}

// GetUniversityBySlug fetches one university by its slug
func (s *CatalogService) GetUniversityBySlug(universitySlug string) (*models.University, error) {
	var university models.University
	if err := s.db.First(&university, "slug = ?", universitySlug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUniversityNotFound
		}
		return nil, fmt.Errorf("error finding university: %w", err)
	}
	return &university, nil
}

// CreateProgramInput holds the fields for a new program
type CreateProgramInput struct {
	UniversityID    uuid.UUID
	Name            string
	DegreeType      models.DegreeType
	TuitionFee      float64
	AgentCommission float64
	Currency        string
}

// CreateProgram creates a program under a university
func (s *CatalogService) CreateProgram(input CreateProgramInput) (*models.Program, error) {
	var university models.University
	if err := s.db.First(&university, "id = ?", input.UniversityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUniversityNotFound
		}
		return nil, fmt.Errorf("error finding university: %w", err)
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	program := models.Program{
		ID:              uuid.New(),
		UniversityID:    input.UniversityID,
		Name:            input.Name,
		DegreeType:      input.DegreeType,
		TuitionFee:      input.TuitionFee,
		AgentCommission: input.AgentCommission,
		Currency:        currency,
		IsActive:        true,
	}
	if err := s.db.Create(&program).Error; err != nil {
		return nil, fmt.Errorf("error creating program: %w", err)
	}
	return &program, nil
}

// ListPrograms lists active programs, optionally for one university
func (s *CatalogService) ListPrograms(universityID *uuid.UUID) ([]models.Program, error) {
	query := s.db.Where("is_active = ?", true).Order("name asc")
	if universityID != nil {
		query = query.Where("university_id = ?", *universityID)
	}

	var programs []models.Program
	if err := query.Find(&programs).Error; err != nil {
		return nil, fmt.Errorf("error listing programs: %w", err)
	}
	return programs, nil
}

// UpsertScholarshipConfig sets the scholarship thresholds for a
// university/degree combination, creating the row if it does not exist yet
func (s *CatalogService) UpsertScholarshipConfig(universityID uuid.UUID, degree models.DegreeType, agentThreshold, systemThreshold int) (*models.ScholarshipConfig, error) {
	var config models.ScholarshipConfig
	err := s.db.Where("university_id = ? AND degree_type = ?", universityID, degree).First(&config).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("error finding scholarship config: %w", err)
		}
		config = models.ScholarshipConfig{
			ID:              uuid.New(),
			UniversityID:    universityID,
			DegreeType:      degree,
			AgentThreshold:  agentThreshold,
			SystemThreshold: systemThreshold,
			IsActive:        true,
		}
		if err := s.db.Create(&config).Error; err != nil {
			return nil, fmt.Errorf("error creating scholarship config: %w", err)
		}
		return &config, nil
	}

	updates := map[string]interface{}{
		"agent_threshold":  agentThreshold,
		"system_threshold": systemThreshold,
		"is_active":        true,
	}
	if err := s.db.Model(&config).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("error updating scholarship config: %w", err)
	}
	config.AgentThreshold = agentThreshold
	config.SystemThreshold = systemThreshold
	return &config, nil
}

// RegisterStudentInput holds the fields for a new student
type RegisterStudentInput struct {
	AgentID     uuid.UUID
	FirstName   string
	LastName    string
	Email       string
	Nationality string
}

// RegisterStudent registers a student under an agent
func (s *CatalogService) RegisterStudent(input RegisterStudentInput) (*models.Student, error) {
	student := models.Student{
		ID:          uuid.New(),
		AgentID:     input.AgentID,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		Nationality: input.Nationality,
	}
	if err := s.db.Create(&student).Error; err != nil {
		return nil, fmt.Errorf("error registering student: %w", err)
	}
	return &student, nil
}

// ListStudents lists the students registered by an agent
func (s *CatalogService) ListStudents(agentID uuid.UUID) ([]models.Student, error) {
	var students []models.Student
	if err := s.db.Where("agent_id = ?", agentID).Order("created_at desc").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	return students, nil
}
