package ledger

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/config"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/models"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/wallet"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/utils"
)

var (
	// ErrDuplicateCommission is returned when an application already has a commission record
	ErrDuplicateCommission = errors.New("commission already recorded for application")
	// ErrMissingCommissionConfig is returned when the program has no agent commission figure
	ErrMissingCommissionConfig = errors.New("program has no agent commission configured")
	// ErrInvalidAwardStatus is returned on a disallowed award status change
	ErrInvalidAwardStatus = errors.New("invalid award status transition")
)

// LedgerService records agent commissions per approved application, accrues
// scholarship-qualifying points per (agent, university, degree, year) tuple and
// promotes accumulated points into awards at the configured thresholds.
type LedgerService struct {
	db        *gorm.DB
	cfg       config.ScholarshipConfig
	walletSvc *wallet.WalletService
	now       func() time.Time
}

// NewLedgerService creates a new ledger service
func NewLedgerService(db *gorm.DB, cfg config.ScholarshipConfig, walletSvc *wallet.WalletService) *LedgerService {
	return &LedgerService{
		db:        db,
		cfg:       cfg,
		walletSvc: walletSvc,
		now:       time.Now,
	}
}

// SetClock overrides the service clock, used by tests to pin the application year
func (s *LedgerService) SetClock(now func() time.Time) {
	s.now = now
}

// AccrueApproval runs the full accrual sequence for a freshly approved
// application inside the caller's transaction: commission record, wallet
// credit, scholarship point increment and, when the threshold is crossed, award
// creation. Any error aborts the caller's transaction so the approval never
// half-applies. Returns the created award, if any.
func (s *LedgerService) AccrueApproval(tx *gorm.DB, app *models.Application) (*models.ScholarshipAward, error) {
	var existing models.CommissionRecord
	err := tx.Where("application_id = ?", app.ID).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateCommission
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error checking existing commission: %w", err)
	}

	var program models.Program
	if err := tx.First(&program, "id = ?", app.ProgramID).Error; err != nil {
		return nil, fmt.Errorf("error finding program: %w", err)
	}
	if program.AgentCommission <= 0 {
		return nil, ErrMissingCommissionConfig
	}

	record := models.CommissionRecord{
		ID:            uuid.New(),
		ApplicationID: app.ID,
		AgentID:       app.AgentID,
		Amount:        program.AgentCommission,
		Currency:      program.Currency,
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("error creating commission record: %w", err)
	}

	err = s.walletSvc.CreditCommissionWithTx(
		tx,
		app.AgentID,
		program.AgentCommission,
		app.ApplicationNumber,
		fmt.Sprintf("Commission for application %s", app.ApplicationNumber),
		map[string]interface{}{
			"application_id": app.ID.String(),
			"program_id":     program.ID.String(),
			"commission_id":  record.ID.String(),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("error crediting agent wallet: %w", err)
	}

	year := ApplicationYear(s.now(), s.cfg.CycleMonth, s.cfg.CycleDay)

	return s.accruePoint(tx, app.AgentID, program.UniversityID, program.DegreeType, year)
}

// accruePoint increments the point counter for the tuple and creates an award
// when the counter reaches the threshold. The counter is decremented by the
// threshold, not reset, so leftover points keep counting toward the next award.
func (s *LedgerService) accruePoint(tx *gorm.DB, agentID, universityID uuid.UUID, degree models.DegreeType, year int) (*models.ScholarshipAward, error) {
	point := models.ScholarshipPoint{
		ID:              uuid.New(),
		AgentID:         agentID,
		UniversityID:    universityID,
		DegreeType:      degree,
		ApplicationYear: year,
	}
	err := tx.Where(models.ScholarshipPoint{
		AgentID:         agentID,
		UniversityID:    universityID,
		DegreeType:      degree,
		ApplicationYear: year,
	}).FirstOrCreate(&point).Error
	if err != nil {
		return nil, fmt.Errorf("error finding scholarship point counter: %w", err)
	}

	result := tx.Model(&models.ScholarshipPoint{}).
		Where("id = ?", point.ID).
		Update("qualifying_count", gorm.Expr("qualifying_count + 1"))
	if result.Error != nil {
		return nil, fmt.Errorf("error incrementing scholarship points: %w", result.Error)
	}

	if err := tx.First(&point, "id = ?", point.ID).Error; err != nil {
		return nil, fmt.Errorf("error reloading scholarship point counter: %w", err)
	}

	threshold, _, err := s.thresholds(tx, universityID, degree)
	if err != nil {
		return nil, err
	}

	if point.QualifyingCount < threshold {
		return nil, nil
	}

	// The decrement is guarded on the count so a concurrent accrual cannot
	// consume the same points twice.
	result = tx.Model(&models.ScholarshipPoint{}).
		Where("id = ? AND qualifying_count >= ?", point.ID, threshold).
		Update("qualifying_count", gorm.Expr("qualifying_count - ?", threshold))
	if result.Error != nil {
		return nil, fmt.Errorf("error consuming scholarship points: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	award := models.ScholarshipAward{
		ID:                   uuid.New(),
		AwardNumber:          utils.GenerateReference("SCH"),
		AgentID:              agentID,
		UniversityID:         universityID,
		DegreeType:           degree,
		ApplicationYear:      year,
		QualifyingPointCount: threshold,
		Status:               models.AwardStatusPending,
		AwardedAt:            s.now(),
	}
	if err := tx.Create(&award).Error; err != nil {
		return nil, fmt.Errorf("error creating scholarship award: %w", err)
	}

	return &award, nil
}

// thresholds returns the agent and system thresholds for a university/degree
// combination, falling back to the configured defaults
func (s *LedgerService) thresholds(tx *gorm.DB, universityID uuid.UUID, degree models.DegreeType) (int, int, error) {
	var cfg models.ScholarshipConfig
	err := tx.Where("university_id = ? AND degree_type = ? AND is_active = ?", universityID, degree, true).First(&cfg).Error
	if err == nil {
		return cfg.AgentThreshold, cfg.SystemThreshold, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, fmt.Errorf("error finding scholarship config: %w", err)
	}
	return s.cfg.DefaultAgentThreshold, s.cfg.DefaultSystemThreshold, nil
}

// ScholarshipProgress returns the merged view of an agent's completed awards
// and in-progress point counters for the given application year
func (s *LedgerService) ScholarshipProgress(agentID uuid.UUID, year int) ([]models.ScholarshipProgressEntry, error) {
	var awards []models.ScholarshipAward
	if err := s.db.Where("agent_id = ? AND application_year = ?", agentID, year).
		Order("awarded_at DESC").Find(&awards).Error; err != nil {
		return nil, fmt.Errorf("error listing awards: %w", err)
	}

	var points []models.ScholarshipPoint
	if err := s.db.Where("agent_id = ? AND application_year = ? AND qualifying_count > 0", agentID, year).
		Find(&points).Error; err != nil {
		return nil, fmt.Errorf("error listing point counters: %w", err)
	}

	entries := make([]models.ScholarshipProgressEntry, 0, len(awards)+len(points))
	for i := range awards {
		entries = append(entries, models.ScholarshipProgressEntry{
			Kind:  models.ProgressCompleted,
			Award: &awards[i],
		})
	}
	for i := range points {
		entries = append(entries, models.ScholarshipProgressEntry{
			Kind:  models.ProgressInProgress,
			Point: &points[i],
		})
	}
	return entries, nil
}

// AwardFilters narrows ListAwards results
type AwardFilters struct {
	AgentID      *uuid.UUID
	UniversityID *uuid.UUID
	DegreeType   models.DegreeType
	Status       models.ScholarshipAwardStatus
	Year         int
}

// ListAwards lists scholarship awards matching the filters
func (s *LedgerService) ListAwards(filters AwardFilters) ([]models.ScholarshipAward, error) {
	query := s.db.Order("awarded_at DESC")
	if filters.AgentID != nil {
		query = query.Where("agent_id = ?", *filters.AgentID)
	}
	if filters.UniversityID != nil {
		query = query.Where("university_id = ?", *filters.UniversityID)
	}
	if filters.DegreeType != "" {
		query = query.Where("degree_type = ?", filters.DegreeType)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Year != 0 {
		query = query.Where("application_year = ?", filters.Year)
	}

	var awards []models.ScholarshipAward
	if err := query.Find(&awards).Error; err != nil {
		return nil, fmt.Errorf("error listing awards: %w", err)
	}
	return awards, nil
}

// UpdateAwardStatus applies an admin decision to an award
func (s *LedgerService) UpdateAwardStatus(awardID, adminID uuid.UUID, status models.ScholarshipAwardStatus, notes string) (*models.ScholarshipAward, error) {
	var award models.ScholarshipAward

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&award, "id = ?", awardID).Error; err != nil {
			return fmt.Errorf("error finding award: %w", err)
		}

		if award.Status == models.AwardStatusExpired || award.Status == models.AwardStatusCancelled {
			return ErrInvalidAwardStatus
		}

		now := s.now()
		switch status {
		case models.AwardStatusApproved:
			award.ApprovedAt = &now
		case models.AwardStatusPaid:
			award.PaidAt = &now
		case models.AwardStatusUsed, models.AwardStatusCancelled:
			// timestamps already cover these
		default:
			return ErrInvalidAwardStatus
		}

		award.Status = status
		if notes != "" {
			award.Notes = notes
		}
		if err := tx.Save(&award).Error; err != nil {
			return fmt.Errorf("error updating award: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("award %s status changed to %s by admin %s", award.AwardNumber, status, adminID)
	return &award, nil
}

// SystemProgress computes the system-wide qualification projection for a
// university/degree combination. It is recomputed on demand and never stored.
func (s *LedgerService) SystemProgress(universityID uuid.UUID, degree models.DegreeType, year int) (*models.SystemScholarshipProgress, error) {
	var earned int64
	err := s.db.Model(&models.ScholarshipAward{}).
		Where("university_id = ? AND degree_type = ? AND application_year = ?", universityID, degree, year).
		Where("status NOT IN ?", []models.ScholarshipAwardStatus{models.AwardStatusCancelled, models.AwardStatusExpired}).
		Count(&earned).Error
	if err != nil {
		return nil, fmt.Errorf("error counting awards: %w", err)
	}

	_, systemThreshold, err := s.thresholds(s.db, universityID, degree)
	if err != nil {
		return nil, err
	}

	return &models.SystemScholarshipProgress{
		UniversityID:    universityID,
		DegreeType:      degree,
		ApplicationYear: year,
		EarnedAwards:    int(earned),
		SystemThreshold: systemThreshold,
		Qualified:       int(earned) >= systemThreshold,
	}, nil
}

// CycleReport summarizes one ManageCycles run
type CycleReport struct {
	ExpiredAwards int
	ClearedPoints int
	FailedAwards  int
}

// ManageCycles expires awards left pending past their cycle's end. The yearly
// forced run additionally clears leftover point counters from ended cycles.
// Running it twice on the same date changes nothing the second time, and a
// failure on one award is logged and skipped so the rest of the run proceeds.
func (s *LedgerService) ManageCycles(now time.Time, forceYearly bool) (*CycleReport, error) {
	currentYear := ApplicationYear(now, s.cfg.CycleMonth, s.cfg.CycleDay)
	report := &CycleReport{}

	var stale []models.ScholarshipAward
	err := s.db.Where("application_year < ? AND status = ?", currentYear, models.AwardStatusPending).
		Find(&stale).Error
	if err != nil {
		return nil, fmt.Errorf("error finding stale awards: %w", err)
	}

	for i := range stale {
		award := &stale[i]
		expiredAt := now
		award.Status = models.AwardStatusExpired
		award.ExpiredAt = &expiredAt
		if err := s.db.Save(award).Error; err != nil {
			log.Printf("cycle management: failed to expire award %s: %v", award.AwardNumber, err)
			report.FailedAwards++
			continue
		}
		report.ExpiredAwards++
	}

	if forceYearly {
		result := s.db.Where("application_year < ?", currentYear).
			Delete(&models.ScholarshipPoint{})
		if result.Error != nil {
			return report, fmt.Errorf("error clearing stale point counters: %w", result.Error)
		}
		report.ClearedPoints = int(result.RowsAffected)
	}

	return report, nil
}
