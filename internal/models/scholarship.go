package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommissionRecord is created exactly once per approved application and is
// never mutated afterward
type CommissionRecord struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	ApplicationID uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"application_id"`
	Application   Application    `gorm:"foreignKey:ApplicationID" json:"-"`
	AgentID       uuid.UUID      `gorm:"type:uuid;index;not null" json:"agent_id"`
	Agent         Agent          `gorm:"foreignKey:AgentID" json:"-"`
	Amount        float64        `gorm:"type:decimal(20,2);not null" json:"amount"`
	Currency      string         `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// ScholarshipPoint is the accrual counter for one
// (agent, university, degree, application year) tuple. QualifyingCount is
// incremented by one per approved application and decremented by the threshold
// when an award is created, so any remainder keeps counting toward the next award.
type ScholarshipPoint struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	AgentID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_scholarship_points_tuple" json:"agent_id"`
	Agent           Agent          `gorm:"foreignKey:AgentID" json:"-"`
	UniversityID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_scholarship_points_tuple" json:"university_id"`
	University      University     `gorm:"foreignKey:UniversityID" json:"-"`
	DegreeType      DegreeType     `gorm:"type:varchar(20);not null;uniqueIndex:idx_scholarship_points_tuple" json:"degree_type"`
	ApplicationYear int            `gorm:"not null;uniqueIndex:idx_scholarship_points_tuple" json:"application_year"`
	QualifyingCount int            `gorm:"not null;default:0" json:"qualifying_count"`
	CreatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// ScholarshipAwardStatus represents the lifecycle status of an earned award
type ScholarshipAwardStatus string

const (
	AwardStatusPending   ScholarshipAwardStatus = "pending"
	AwardStatusApproved  ScholarshipAwardStatus = "approved"
	AwardStatusPaid      ScholarshipAwardStatus = "paid"
	AwardStatusUsed      ScholarshipAwardStatus = "used"
	AwardStatusCancelled ScholarshipAwardStatus = "cancelled"
	AwardStatusExpired   ScholarshipAwardStatus = "expired"
)

// ScholarshipAward is created when an agent's point counter reaches the
// configured threshold for a university/degree combination. The consumed points
// are spent on creation and never counted toward a future award.
type ScholarshipAward struct {
	ID                   uuid.UUID              `gorm:"type:uuid;primary_key" json:"id"`
	AwardNumber          string                 `gorm:"type:varchar(100);uniqueIndex;not null" json:"award_number"`
	AgentID              uuid.UUID              `gorm:"type:uuid;index;not null" json:"agent_id"`
	Agent                Agent                  `gorm:"foreignKey:AgentID" json:"-"`
	UniversityID         uuid.UUID              `gorm:"type:uuid;index;not null" json:"university_id"`
	University           University             `gorm:"foreignKey:UniversityID" json:"-"`
	DegreeType           DegreeType             `gorm:"type:varchar(20);not null" json:"degree_type"`
	ApplicationYear      int                    `gorm:"not null;index" json:"application_year"`
	QualifyingPointCount int                    `gorm:"not null" json:"qualifying_point_count"`
	Status               ScholarshipAwardStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Notes                string                 `gorm:"type:text" json:"notes"`
	AwardedAt            time.Time              `gorm:"default:CURRENT_TIMESTAMP" json:"awarded_at"`
	ApprovedAt           *time.Time             `json:"approved_at"`
	PaidAt               *time.Time             `json:"paid_at"`
	ExpiredAt            *time.Time             `json:"expired_at"`
	CreatedAt            time.Time              `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time              `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt            gorm.DeletedAt         `gorm:"index" json:"-"`
}

// ScholarshipProgressKind tags an entry in the merged scholarship progress view
type ScholarshipProgressKind string

const (
	ProgressCompleted  ScholarshipProgressKind = "completed"
	ProgressInProgress ScholarshipProgressKind = "in_progress"
)

// ScholarshipProgressEntry is one row of the merged completed/in-progress view
// an agent sees. Exactly one of Award or Point is set, according to Kind.
type ScholarshipProgressEntry struct {
	Kind  ScholarshipProgressKind `json:"kind"`
	Award *ScholarshipAward       `json:"award,omitempty"`
	Point *ScholarshipPoint       `json:"point,omitempty"`
}

// SystemScholarshipProgress is the system-wide qualification projection for a
// university/degree combination, computed at query time and never persisted
type SystemScholarshipProgress struct {
	UniversityID    uuid.UUID  `json:"university_id"`
	DegreeType      DegreeType `json:"degree_type"`
	ApplicationYear int        `json:"application_year"`
	EarnedAwards    int        `json:"earned_awards"`
	SystemThreshold int        `json:"system_threshold"`
	Qualified       bool       `json:"qualified"`
}
