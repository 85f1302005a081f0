package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApplicationStatus represents the lifecycle status of a university application
type ApplicationStatus string

const (
	ApplicationStatusDraft                 ApplicationStatus = "draft"
	ApplicationStatusSubmitted             ApplicationStatus = "submitted"
	ApplicationStatusUnderReview           ApplicationStatus = "under_review"
	ApplicationStatusAdditionalDocsNeeded  ApplicationStatus = "additional_documents_required"
	ApplicationStatusApproved              ApplicationStatus = "approved"
	ApplicationStatusRejected              ApplicationStatus = "rejected"
	ApplicationStatusEnrolled              ApplicationStatus = "enrolled"
	ApplicationStatusCancelled             ApplicationStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed from the status
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusRejected || s == ApplicationStatusEnrolled || s == ApplicationStatusCancelled
}

// Application represents one student's submission to one university program
type Application struct {
	ID                uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	ApplicationNumber string            `gorm:"type:varchar(100);uniqueIndex;not null" json:"application_number"`
	StudentID         uuid.UUID         `gorm:"type:uuid;index;not null" json:"student_id"`
	Student           Student           `gorm:"foreignKey:StudentID" json:"-"`
	ProgramID         uuid.UUID         `gorm:"type:uuid;index;not null" json:"program_id"`
	Program           Program           `gorm:"foreignKey:ProgramID" json:"-"`
	AgentID           uuid.UUID         `gorm:"type:uuid;index;not null" json:"agent_id"`
	Agent             Agent             `gorm:"foreignKey:AgentID" json:"-"`
	Status            ApplicationStatus `gorm:"type:varchar(40);not null;default:'draft'" json:"status"`
	CommissionAmount  float64           `gorm:"type:decimal(20,2);default:0" json:"commission_amount"`
	CommissionPaid    bool              `gorm:"default:false" json:"commission_paid"`
	AssignedAdminID   *uuid.UUID        `gorm:"type:uuid" json:"assigned_admin_id"`
	Notes             string            `gorm:"type:text" json:"notes"`
	SubmittedAt       *time.Time        `json:"submitted_at"`
	ReviewedAt        *time.Time        `json:"reviewed_at"`
	DecisionAt        *time.Time        `json:"decision_at"`
	CreatedAt         time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt         gorm.DeletedAt    `gorm:"index" json:"-"`
}
