package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobType defines the type of background job
type JobType string

const (
	// JobTypeEvaluateSystemScholarship recomputes system-wide scholarship
	// qualification after an agent earns an award
	JobTypeEvaluateSystemScholarship JobType = "evaluate_system_scholarship"
	// JobTypeNotifyAwardCreated notifies an agent about a freshly earned award
	JobTypeNotifyAwardCreated JobType = "notify_award_created"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job represents a background job persisted in the database
type Job struct {
	ID         uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Type       JobType         `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Status     JobStatus       `json:"status"`
	RetryCount int             `json:"retry_count" gorm:"default:0"`
	MaxRetries int             `json:"max_retries" gorm:"default:3"`
	NextRetry  *time.Time      `json:"next_retry,omitempty"`
	Error      string          `json:"error,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// JobHandler is a function that processes a job
type JobHandler func(ctx context.Context, job Job) (interface{}, error)

// Queue is a database-backed job queue. Jobs survive restarts and failed jobs
// are retried with a linear backoff up to MaxRetries.
type Queue struct {
	db         *gorm.DB
	handlers   map[JobType]JobHandler
	processing bool
	interval   time.Duration
}

// NewQueue creates a new queue
func NewQueue(db *gorm.DB) *Queue {
	return &Queue{
		db:       db,
		handlers: make(map[JobType]JobHandler),
		interval: time.Second,
	}
}

// RegisterHandler registers a handler for a job type
func (q *Queue) RegisterHandler(jobType JobType, handler JobHandler) {
	q.handlers[jobType] = handler
}

// Enqueue adds a job to the queue
func (q *Queue) Enqueue(jobType JobType, payload interface{}) (string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job payload: %w", err)
	}

	job := Job{
		ID:         uuid.New(),
		Type:       jobType,
		Payload:    payloadBytes,
		Status:     JobStatusPending,
		MaxRetries: 3,
	}

	if err := q.db.Create(&job).Error; err != nil {
		return "", fmt.Errorf("failed to enqueue job: %w", err)
	}

	return job.ID.String(), nil
}

// GetJob retrieves a job by ID
func (q *Queue) GetJob(jobID string) (*Job, error) {
	var job Job
	if err := q.db.First(&job, "id = ?", jobID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("job not found")
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// StartProcessing starts processing jobs from the queue in a background goroutine
func (q *Queue) StartProcessing() {
	if q.processing {
		return
	}

	q.processing = true
	go func() {
		for q.processing {
			var job Job
			err := q.db.
				Where("status = ? AND (next_retry IS NULL OR next_retry <= ?)", JobStatusPending, time.Now()).
				Order("created_at asc").
				First(&job).Error
			if err != nil {
				if err != gorm.ErrRecordNotFound {
					log.Printf("Error getting job from queue: %v", err)
				}
				time.Sleep(q.interval)
				continue
			}

			q.processJob(job)
		}
	}()
}

// ProcessNext processes at most one due job; used by tests and the scheduler
// for deterministic runs. Reports whether a job was processed.
func (q *Queue) ProcessNext() bool {
	var job Job
	err := q.db.
		Where("status = ? AND (next_retry IS NULL OR next_retry <= ?)", JobStatusPending, time.Now()).
		Order("created_at asc").
		First(&job).Error
	if err != nil {
		return false
	}
	q.processJob(job)
	return true
}

func (q *Queue) processJob(job Job) {
	handler, ok := q.handlers[job.Type]
	if !ok {
		log.Printf("No handler registered for job type: %s", job.Type)
		q.update(job.ID, map[string]interface{}{
			"status": JobStatusFailed,
			"error":  fmt.Sprintf("no handler for job type %s", job.Type),
		})
		return
	}

	if err := q.update(job.ID, map[string]interface{}{"status": JobStatusProcessing}); err != nil {
		log.Printf("Failed to update job status: %v", err)
		return
	}

	result, err := handler(context.Background(), job)
	if err != nil {
		q.handleFailure(job, err)
		return
	}

	var resultJSON []byte
	if result != nil {
		resultJSON, err = json.Marshal(result)
		if err != nil {
			log.Printf("Failed to marshal job result: %v", err)
		}
	}

	if err := q.update(job.ID, map[string]interface{}{
		"status": JobStatusCompleted,
		"result": resultJSON,
	}); err != nil {
		log.Printf("Failed to update job result: %v", err)
	}
}

// handleFailure reschedules a failed job with backoff until retries run out
func (q *Queue) handleFailure(job Job, jobErr error) {
	retryCount := job.RetryCount + 1
	if retryCount > job.MaxRetries {
		log.Printf("Job %s exceeded max retries: %v", job.ID, jobErr)
		q.update(job.ID, map[string]interface{}{
			"status": JobStatusFailed,
			"error":  jobErr.Error(),
		})
		return
	}

	nextRetry := time.Now().Add(time.Duration(retryCount) * 30 * time.Second)
	log.Printf("Job %s failed (attempt %d/%d), retrying at %s: %v",
		job.ID, retryCount, job.MaxRetries, nextRetry.Format(time.RFC3339), jobErr)

	q.update(job.ID, map[string]interface{}{
		"status":      JobStatusPending,
		"retry_count": retryCount,
		"next_retry":  nextRetry,
		"error":       jobErr.Error(),
	})
}

func (q *Queue) update(jobID uuid.UUID, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	return q.db.Model(&Job{}).Where("id = ?", jobID).Updates(fields).Error
}

// StopProcessing stops processing jobs
func (q *Queue) StopProcessing() {
	q.processing = false
}
