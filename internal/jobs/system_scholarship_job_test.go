package jobs

import (
	"context"
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
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/queue"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/ledger"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/wallet"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/utils"
)

func setupJobTest(t *testing.T) (*gorm.DB, *ledger.LedgerService, *queue.Queue) {
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
		DefaultSystemThreshold: 1,
	}, walletSvc)

	return db, ledgerSvc, queue.NewQueue(db)
}

func seedAward(t *testing.T, db *gorm.DB) *models.ScholarshipAward {
	agent := models.Agent{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		AgentCode:    utils.GenerateAgentCode(8),
		PasswordHash: "x",
		Role:         models.RoleAgent,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&agent).Error)

	university := models.University{
		ID:       uuid.New(),
		Name:     "Test University",
		Slug:     "test-university",
		IsActive: true,
	}
	require.NoError(t, db.Create(&university).Error)

	award := models.ScholarshipAward{
		ID:                   uuid.New(),
		AwardNumber:          utils.GenerateReference("SCH"),
		AgentID:              agent.ID,
		UniversityID:         university.ID,
		DegreeType:           models.DegreeBachelor,
		ApplicationYear:      2025,
		QualifyingPointCount: 5,
		Status:               models.AwardStatusPending,
		AwardedAt:            time.Now(),
	}
	require.NoError(t, db.Create(&award).Error)
	return &award
}

func TestSystemScholarshipJobRoundTrip(t *testing.T) {
	db, ledgerSvc, q := setupJobTest(t)
	award := seedAward(t, db)

	job := NewSystemScholarshipJob(ledgerSvc, q)
	job.Register()

	require.NoError(t, job.EnqueueForAward(award))
	assert.True(t, q.ProcessNext())

	var stored queue.Job
	require.NoError(t, db.First(&stored, "type = ?", queue.JobTypeEvaluateSystemScholarship).Error)
	assert.Equal(t, queue.JobStatusCompleted, stored.Status)
	assert.Contains(t, string(stored.Result), `"qualified":true`)
}

func TestSystemScholarshipJobEvaluate(t *testing.T) {
	db, ledgerSvc, q := setupJobTest(t)
	award := seedAward(t, db)

	job := NewSystemScholarshipJob(ledgerSvc, q)

	result, err := job.Evaluate(context.Background(), queue.Job{
		Payload: []byte(`{"university_id":"` + award.UniversityID.String() + `","degree_type":"bachelor","application_year":2025}`),
	})
	require.NoError(t, err)

	progress, ok := result.(*models.SystemScholarshipProgress)
	require.True(t, ok)
	assert.Equal(t, 1, progress.EarnedAwards)
	assert.True(t, progress.Qualified)
}

func TestScholarshipCycleJobRunWithoutRedis(t *testing.T) {
	db, ledgerSvc, _ := setupJobTest(t)
	award := seedAward(t, db)

	// push the award into a past cycle so the run expires it
	require.NoError(t, db.Model(award).Update("application_year", 2024).Error)

	cycleJob := NewScholarshipCycleJob(ledgerSvc, nil)
	now := time.Date(2025, time.September, 1, 2, 0, 0, 0, time.UTC)
	cycleJob.Run(context.Background(), now, false)

	var reloaded models.ScholarshipAward
	require.NoError(t, db.First(&reloaded, "id = ?", award.ID).Error)
	assert.Equal(t, models.AwardStatusExpired, reloaded.Status)
}
