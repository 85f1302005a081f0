package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DegreeType represents the level of a university program
type DegreeType string

const (
	DegreeDiploma  DegreeType = "diploma"
	DegreeBachelor DegreeType = "bachelor"
	DegreeMaster   DegreeType = "master"
	DegreePhD      DegreeType = "phd"
)

// University represents a partner institution agents can submit applications to
type University struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Country   string         `gorm:"type:varchar(100)" json:"country"`
	City      string         `gorm:"type:varchar(100)" json:"city"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Program represents a degree program offered by a university.
// AgentCommission is the amount credited to the agent per approved application.
type Program struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UniversityID    uuid.UUID      `gorm:"type:uuid;index;not null" json:"university_id"`
	University      University     `gorm:"foreignKey:UniversityID" json:"-"`
	Name            string         `gorm:"type:varchar(255);not null" json:"name"`
	DegreeType      DegreeType     `gorm:"type:varchar(20);not null" json:"degree_type"`
	TuitionFee      float64        `gorm:"type:decimal(20,2);default:0" json:"tuition_fee"`
	AgentCommission float64        `gorm:"type:decimal(20,2);default:0" json:"agent_commission"`
	Currency        string         `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// ScholarshipConfig holds the scholarship qualification thresholds for a
// university/degree combination. AgentThreshold is the number of approved
// applications an agent needs before earning a scholarship award; SystemThreshold
// is the total number of earned awards across all agents that qualifies the
// combination for a system-level scholarship.
type ScholarshipConfig struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UniversityID    uuid.UUID      `gorm:"type:uuid;index;not null;uniqueIndex:idx_scholarship_configs_tuple" json:"university_id"`
	University      University     `gorm:"foreignKey:UniversityID" json:"-"`
	DegreeType      DegreeType     `gorm:"type:varchar(20);not null;uniqueIndex:idx_scholarship_configs_tuple" json:"degree_type"`
	AgentThreshold  int            `gorm:"not null;default:5" json:"agent_threshold"`
	SystemThreshold int            `gorm:"not null;default:10" json:"system_threshold"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// Student represents a student registered by an agent
type Student struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	AgentID     uuid.UUID      `gorm:"type:uuid;index;not null" json:"agent_id"`
	Agent       Agent          `gorm:"foreignKey:AgentID" json:"-"`
	FirstName   string         `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName    string         `gorm:"type:varchar(100);not null" json:"last_name"`
	Email       string         `gorm:"type:varchar(255)" json:"email"`
	PhoneNumber *string        `gorm:"type:varchar(20)" json:"phone_number"`
	Nationality string         `gorm:"type:varchar(100)" json:"nationality"`
	DateOfBirth *time.Time     `json:"date_of_birth"`
	CreatedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
