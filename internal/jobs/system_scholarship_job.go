package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/models"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/queue"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/ledger"
)

// SystemScholarshipJobPayload identifies the university/degree combination to
// re-evaluate after an agent earned an award in it
type SystemScholarshipJobPayload struct {
	UniversityID    uuid.UUID         `json:"university_id"`
	DegreeType      models.DegreeType `json:"degree_type"`
	ApplicationYear int               `json:"application_year"`
}

// SystemScholarshipJob re-evaluates system-wide scholarship qualification
// whenever an agent award is created. The projection itself is computed at
// query time; this job only surfaces newly crossed thresholds in the logs and
// keeps the evaluation off the approval request path.
type SystemScholarshipJob struct {
	ledgerSvc *ledger.LedgerService
	queue     *queue.Queue
}

// NewSystemScholarshipJob creates a new system scholarship job handler
func NewSystemScholarshipJob(ledgerSvc *ledger.LedgerService, q *queue.Queue) *SystemScholarshipJob {
	return &SystemScholarshipJob{ledgerSvc: ledgerSvc, queue: q}
}

// Register registers the job handler with the queue
func (j *SystemScholarshipJob) Register() {
	j.queue.RegisterHandler(queue.JobTypeEvaluateSystemScholarship, j.Evaluate)
}

// EnqueueForAward enqueues an evaluation for the combination an award was earned in
func (j *SystemScholarshipJob) EnqueueForAward(award *models.ScholarshipAward) error {
	payload := SystemScholarshipJobPayload{
		UniversityID:    award.UniversityID,
		DegreeType:      award.DegreeType,
		ApplicationYear: award.ApplicationYear,
	}
	_, err := j.queue.Enqueue(queue.JobTypeEvaluateSystemScholarship, payload)
	return err
}

// Evaluate processes one evaluation job
func (j *SystemScholarshipJob) Evaluate(ctx context.Context, job queue.Job) (interface{}, error) {
	var payload SystemScholarshipJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal system scholarship job payload: %w", err)
	}

	progress, err := j.ledgerSvc.SystemProgress(payload.UniversityID, payload.DegreeType, payload.ApplicationYear)
	if err != nil {
		return nil, fmt.Errorf("failed to compute system scholarship progress: %w", err)
	}

	if progress.Qualified {
		log.Printf("system scholarship qualified: university %s degree %s year %d (%d/%d awards)",
			payload.UniversityID, payload.DegreeType, payload.ApplicationYear,
			progress.EarnedAwards, progress.SystemThreshold)
	}

	return progress, nil
}
