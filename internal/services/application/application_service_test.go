package application

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/config"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/database"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/models"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/ledger"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/wallet"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/utils"
)

type fixture struct {
	db        *gorm.DB
	svc       *ApplicationService
	walletSvc *wallet.WalletService
	agent     *models.Agent
	admin     *models.Agent
	student   *models.Student
	program   *models.Program
}

func newFixture(t *testing.T, commission float64) *fixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	walletSvc := wallet.NewWalletService(db)
	ledgerSvc := ledger.NewLedgerService(db, config.ScholarshipConfig{
		CycleMonth:             time.July,
		CycleDay:               1,
		DefaultAgentThreshold:  5,
		DefaultSystemThreshold: 10,
	}, walletSvc)
	svc := NewApplicationService(db, ledgerSvc)

	agent := &models.Agent{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		AgentCode:    utils.GenerateAgentCode(8),
		PasswordHash: "x",
		Role:         models.RoleAgent,
		IsActive:     true,
	}
	require.NoError(t, db.Create(agent).Error)

	admin := &models.Agent{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		AgentCode:    utils.GenerateAgentCode(8),
		PasswordHash: "x",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	require.NoError(t, db.Create(admin).Error)

	university := &models.University{
		ID:       uuid.New(),
		Name:     "Test University",
		Slug:     "test-university-" + uuid.NewString(),
		IsActive: true,
	}
	require.NoError(t, db.Create(university).Error)

	program := &models.Program{
		ID:              uuid.New(),
		UniversityID:    university.ID,
		Name:            "Computer Science",
		DegreeType:      models.DegreeBachelor,
		AgentCommission: commission,
		Currency:        "USD",
		IsActive:        true,
	}
	require.NoError(t, db.Create(program).Error)

	student := &models.Student{
		ID:        uuid.New(),
		AgentID:   agent.ID,
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
	require.NoError(t, db.Create(student).Error)

	return &fixture{
		db:        db,
		svc:       svc,
		walletSvc: walletSvc,
		agent:     agent,
		admin:     admin,
		student:   student,
		program:   program,
	}
}

func (f *fixture) submitted(t *testing.T) *models.Application {
	app, err := f.svc.CreateApplication(f.agent.ID, f.student.ID, f.program.ID, "")
	require.NoError(t, err)
	app, err = f.svc.Submit(app.ID, f.agent.ID)
	require.NoError(t, err)
	return app
}

func TestCreateApplicationSnapshotsCommission(t *testing.T) {
	f := newFixture(t, 750)

	app, err := f.svc.CreateApplication(f.agent.ID, f.student.ID, f.program.ID, "first intake")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusDraft, app.Status)
	assert.Equal(t, 750.0, app.CommissionAmount)
	assert.NotEmpty(t, app.ApplicationNumber)

	// changing the program later does not touch the snapshot
	require.NoError(t, f.db.Model(f.program).Update("agent_commission", 900).Error)
	reloaded, err := f.svc.GetApplication(app.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 750.0, reloaded.CommissionAmount)
}

func TestCreateApplicationRequiresOwnStudent(t *testing.T) {
	f := newFixture(t, 500)

	stranger := &models.Agent{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		AgentCode:    utils.GenerateAgentCode(8),
		PasswordHash: "x",
		Role:         models.RoleAgent,
		IsActive:     true,
	}
	require.NoError(t, f.db.Create(stranger).Error)

	_, err := f.svc.CreateApplication(stranger.ID, f.student.ID, f.program.ID, "")
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestSubmitTransitions(t *testing.T) {
	f := newFixture(t, 500)

	app, err := f.svc.CreateApplication(f.agent.ID, f.student.ID, f.program.ID, "")
	require.NoError(t, err)

	submitted, err := f.svc.Submit(app.ID, f.agent.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusSubmitted, submitted.Status)
	assert.NotNil(t, submitted.SubmittedAt)

	// submitted applications cannot be submitted again
	_, err = f.svc.Submit(app.ID, f.agent.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSubmitAfterDocumentsRequested(t *testing.T) {
	f := newFixture(t, 500)
	app := f.submitted(t)

	_, err := f.svc.StartReview(app.ID, f.admin.ID)
	require.NoError(t, err)

	returned, err := f.svc.RequestDocuments(app.ID, f.admin.ID, "passport copy missing")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAdditionalDocsNeeded, returned.Status)
	assert.Equal(t, "passport copy missing", returned.Notes)

	resubmitted, err := f.svc.Submit(app.ID, f.agent.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusSubmitted, resubmitted.Status)
}

func TestStartReviewRequiresSubmitted(t *testing.T) {
	f := newFixture(t, 500)

	app, err := f.svc.CreateApplication(f.agent.ID, f.student.ID, f.program.ID, "")
	require.NoError(t, err)

	_, err = f.svc.StartReview(app.ID, f.admin.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDecideApprovedAccruesCommission(t *testing.T) {
	f := newFixture(t, 500)
	app := f.submitted(t)

	decided, award, err := f.svc.Decide(app.ID, f.admin.ID, models.ApplicationStatusApproved, "meets requirements")
	require.NoError(t, err)
	assert.Nil(t, award)
	assert.Equal(t, models.ApplicationStatusApproved, decided.Status)
	assert.True(t, decided.CommissionPaid)
	assert.NotNil(t, decided.DecisionAt)

	var record models.CommissionRecord
	require.NoError(t, f.db.First(&record, "application_id = ?", app.ID).Error)
	assert.Equal(t, 500.0, record.Amount)

	balance, err := f.walletSvc.Balance(f.agent.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, balance)
}

func TestDecideRejectedHasNoFinancialEffect(t *testing.T) {
	f := newFixture(t, 500)
	app := f.submitted(t)

	decided, award, err := f.svc.Decide(app.ID, f.admin.ID, models.ApplicationStatusRejected, "incomplete transcript")
	require.NoError(t, err)
	assert.Nil(t, award)
	assert.Equal(t, models.ApplicationStatusRejected, decided.Status)
	assert.False(t, decided.CommissionPaid)

	var count int64
	require.NoError(t, f.db.Model(&models.CommissionRecord{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	balance, err := f.walletSvc.Balance(f.agent.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)
}

func TestDecideRollsBackOnAccrualFailure(t *testing.T) {
	// a program without a commission figure aborts the whole approval
	f := newFixture(t, 0)
	app := f.submitted(t)

	_, _, err := f.svc.Decide(app.ID, f.admin.ID, models.ApplicationStatusApproved, "")
	assert.ErrorIs(t, err, ledger.ErrMissingCommissionConfig)

	reloaded, err := f.svc.GetApplication(app.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusSubmitted, reloaded.Status)
	assert.False(t, reloaded.CommissionPaid)

	var count int64
	require.NoError(t, f.db.Model(&models.CommissionRecord{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestDecideValidatesOutcome(t *testing.T) {
	f := newFixture(t, 500)
	app := f.submitted(t)

	_, _, err := f.svc.Decide(app.ID, f.admin.ID, models.ApplicationStatusEnrolled, "")
	assert.ErrorIs(t, err, ErrInvalidOutcome)

	// decided applications cannot be decided again
	_, _, err = f.svc.Decide(app.ID, f.admin.ID, models.ApplicationStatusApproved, "")
	require.NoError(t, err)
	_, _, err = f.svc.Decide(app.ID, f.admin.ID, models.ApplicationStatusApproved, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEnrollRequiresApproved(t *testing.T) {
	f := newFixture(t, 500)
	app := f.submitted(t)

	_, err := f.svc.Enroll(app.ID, f.admin.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, _, err = f.svc.Decide(app.ID, f.admin.ID, models.ApplicationStatusApproved, "")
	require.NoError(t, err)

	enrolled, err := f.svc.Enroll(app.ID, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusEnrolled, enrolled.Status)
}

func TestCancelFromNonTerminalStates(t *testing.T) {
	f := newFixture(t, 500)
	app := f.submitted(t)

	cancelled, err := f.svc.Cancel(app.ID, f.agent.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusCancelled, cancelled.Status)

	// cancelled is terminal
	_, err = f.svc.Cancel(app.ID, f.agent.ID, false)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelApprovedKeepsCommission(t *testing.T) {
	f := newFixture(t, 500)
	app := f.submitted(t)

	_, _, err := f.svc.Decide(app.ID, f.admin.ID, models.ApplicationStatusApproved, "")
	require.NoError(t, err)

	_, err = f.svc.Cancel(app.ID, f.admin.ID, true)
	require.NoError(t, err)

	// cancellation does not claw the commission back
	balance, err := f.walletSvc.Balance(f.agent.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, balance)
}

func TestCancelOwnership(t *testing.T) {
	f := newFixture(t, 500)
	app := f.submitted(t)

	stranger := uuid.New()
	_, err := f.svc.Cancel(app.ID, stranger, false)
	assert.ErrorIs(t, err, ErrNotOwner)

	// admins can cancel any application
	_, err = f.svc.Cancel(app.ID, f.admin.ID, true)
	require.NoError(t, err)
}

func TestListApplicationsScoping(t *testing.T) {
	f := newFixture(t, 500)
	first := f.submitted(t)

	second, err := f.svc.CreateApplication(f.agent.ID, f.student.ID, f.program.ID, "")
	require.NoError(t, err)

	all, err := f.svc.ListApplications(nil, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	drafts, err := f.svc.ListApplications(&f.agent.ID, models.ApplicationStatusDraft)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, second.ID, drafts[0].ID)

	submitted, err := f.svc.ListApplications(&f.agent.ID, models.ApplicationStatusSubmitted)
	require.NoError(t, err)
	require.Len(t, submitted, 1)
	assert.Equal(t, first.ID, submitted[0].ID)
}
