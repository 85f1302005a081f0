package application

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/models"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/ledger"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/utils"
)

var (
	// ErrInvalidTransition is returned when a lifecycle action is not allowed
	// from the application's current status
	ErrInvalidTransition = errors.New("invalid application status transition")
	// ErrInvalidOutcome is returned when a decision outcome is not approved/rejected
	ErrInvalidOutcome = errors.New("decision outcome must be approved or rejected")
	// ErrNotOwner is returned when an agent acts on another agent's application
	ErrNotOwner = errors.New("application does not belong to agent")
)

// ApplicationService owns the lifecycle state machine for student applications
// and triggers ledger accrual when an application is approved.
type ApplicationService struct {
	db        *gorm.DB
	ledgerSvc *ledger.LedgerService
}

// NewApplicationService creates a new application service
func NewApplicationService(db *gorm.DB, ledgerSvc *ledger.LedgerService) *ApplicationService {
	return &ApplicationService{db: db, ledgerSvc: ledgerSvc}
}

// CreateApplication creates a draft application for one of the agent's
// students. The commission amount is snapshotted from the program at creation
// and never changes once the application is approved.
func (s *ApplicationService) CreateApplication(agentID, studentID, programID uuid.UUID, notes string) (*models.Application, error) {
	var student models.Student
	if err := s.db.First(&student, "id = ?", studentID).Error; err != nil {
		return nil, fmt.Errorf("error finding student: %w", err)
	}
	if student.AgentID != agentID {
		return nil, ErrNotOwner
	}

	var program models.Program
	if err := s.db.First(&program, "id = ?", programID).Error; err != nil {
		return nil, fmt.Errorf("error finding program: %w", err)
	}

	app := models.Application{
		ID:                uuid.New(),
		ApplicationNumber: utils.GenerateReference("APP"),
		StudentID:         studentID,
		ProgramID:         programID,
		AgentID:           agentID,
		Status:            models.ApplicationStatusDraft,
		CommissionAmount:  program.AgentCommission,
		Notes:             notes,
	}

	if err := s.db.Create(&app).Error; err != nil {
		return nil, fmt.Errorf("error creating application: %w", err)
	}

	return &app, nil
}

// Submit moves a draft or documents-requested application to submitted
func (s *ApplicationService) Submit(applicationID, agentID uuid.UUID) (*models.Application, error) {
	var app models.Application

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&app, "id = ?", applicationID).Error; err != nil {
			return fmt.Errorf("error finding application: %w", err)
		}
		if app.AgentID != agentID {
			return ErrNotOwner
		}
		if app.Status != models.ApplicationStatusDraft && app.Status != models.ApplicationStatusAdditionalDocsNeeded {
			return ErrInvalidTransition
		}

		now := time.Now()
		app.Status = models.ApplicationStatusSubmitted
		app.SubmittedAt = &now
		if err := tx.Save(&app).Error; err != nil {
			return fmt.Errorf("error updating application: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &app, nil
}

// StartReview moves a submitted application to under_review and assigns the admin
func (s *ApplicationService) StartReview(applicationID, adminID uuid.UUID) (*models.Application, error) {
	var app models.Application

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&app, "id = ?", applicationID).Error; err != nil {
			return fmt.Errorf("error finding application: %w", err)
		}
		if app.Status != models.ApplicationStatusSubmitted {
			return ErrInvalidTransition
		}

		now := time.Now()
		app.Status = models.ApplicationStatusUnderReview
		app.AssignedAdminID = &adminID
		app.ReviewedAt = &now
		if err := tx.Save(&app).Error; err != nil {
			return fmt.Errorf("error updating application: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &app, nil
}

// RequestDocuments sends an under-review application back to the agent for
// additional documents
func (s *ApplicationService) RequestDocuments(applicationID, adminID uuid.UUID, note string) (*models.Application, error) {
	var app models.Application

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&app, "id = ?", applicationID).Error; err != nil {
			return fmt.Errorf("error finding application: %w", err)
		}
		if app.Status != models.ApplicationStatusUnderReview {
			return ErrInvalidTransition
		}

		app.Status = models.ApplicationStatusAdditionalDocsNeeded
		app.AssignedAdminID = &adminID
		if note != "" {
			app.Notes = note
		}
		if err := tx.Save(&app).Error; err != nil {
			return fmt.Errorf("error updating application: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &app, nil
}

// Decide applies an admin decision to a submitted or under-review application.
// Approval runs the full ledger accrual in the same transaction, so if any
// accrual step fails the status change rolls back with it. Returns the award
// created by the accrual, if the approval crossed a scholarship threshold.
func (s *ApplicationService) Decide(applicationID, adminID uuid.UUID, outcome models.ApplicationStatus, notes string) (*models.Application, *models.ScholarshipAward, error) {
	if outcome != models.ApplicationStatusApproved && outcome != models.ApplicationStatusRejected {
		return nil, nil, ErrInvalidOutcome
	}

	var app models.Application
	var award *models.ScholarshipAward

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&app, "id = ?", applicationID).Error; err != nil {
			return fmt.Errorf("error finding application: %w", err)
		}
		if app.Status != models.ApplicationStatusSubmitted && app.Status != models.ApplicationStatusUnderReview {
			return ErrInvalidTransition
		}

		now := time.Now()
		app.Status = outcome
		app.AssignedAdminID = &adminID
		app.DecisionAt = &now
		if notes != "" {
			app.Notes = notes
		}

		if outcome == models.ApplicationStatusApproved {
			created, err := s.ledgerSvc.AccrueApproval(tx, &app)
			if err != nil {
				return err
			}
			award = created
			app.CommissionPaid = true
		}

		if err := tx.Save(&app).Error; err != nil {
			return fmt.Errorf("error updating application: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &app, award, nil
}

// Enroll marks an approved application as enrolled
func (s *ApplicationService) Enroll(applicationID, adminID uuid.UUID) (*models.Application, error) {
	var app models.Application

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&app, "id = ?", applicationID).Error; err != nil {
			return fmt.Errorf("error finding application: %w", err)
		}
		if app.Status != models.ApplicationStatusApproved {
			return ErrInvalidTransition
		}

		app.Status = models.ApplicationStatusEnrolled
		app.AssignedAdminID = &adminID
		if err := tx.Save(&app).Error; err != nil {
			return fmt.Errorf("error updating application: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &app, nil
}

// Cancel cancels an application from any non-terminal state. Cancellation has
// no financial side effect: an already-recorded commission stands.
func (s *ApplicationService) Cancel(applicationID, actorID uuid.UUID, actorIsAdmin bool) (*models.Application, error) {
	var app models.Application

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&app, "id = ?", applicationID).Error; err != nil {
			return fmt.Errorf("error finding application: %w", err)
		}
		if !actorIsAdmin && app.AgentID != actorID {
			return ErrNotOwner
		}
		if app.Status.IsTerminal() {
			return ErrInvalidTransition
		}

		app.Status = models.ApplicationStatusCancelled
		if err := tx.Save(&app).Error; err != nil {
			return fmt.Errorf("error updating application: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &app, nil
}

// GetApplication gets an application by ID. When agentID is non-nil the result
// is restricted to that agent's own applications.
func (s *ApplicationService) GetApplication(applicationID uuid.UUID, agentID *uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := s.db.First(&app, "id = ?", applicationID).Error; err != nil {
		return nil, fmt.Errorf("error finding application: %w", err)
	}
	if agentID != nil && app.AgentID != *agentID {
		return nil, ErrNotOwner
	}
	return &app, nil
}

// ListApplications lists applications, scoped to one agent when agentID is
// non-nil and optionally filtered by status
func (s *ApplicationService) ListApplications(agentID *uuid.UUID, status models.ApplicationStatus) ([]models.Application, error) {
	query := s.db.Order("created_at DESC")
	if agentID != nil {
		query = query.Where("agent_id = ?", *agentID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var apps []models.Application
	if err := query.Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("error listing applications: %w", err)
	}
	return apps, nil
}
