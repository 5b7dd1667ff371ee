// Package jobs defines the asynchronous processing job model and the
// queue/store abstractions it moves through.
package jobs

import (
	"context"
	"time"

	"github.com/caassistant/autoledger/internal/pipeline"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeProcessStatement represents a statement processing job.
	JobTypeProcessStatement JobType = "process_statement"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ProcessStatementJob asks a worker to run the full pipeline over an
// uploaded statement spooled to a temporary file. The worker owns the
// file once the job is published and removes it on every exit path.
type ProcessStatementJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Filename is the original upload name, for display only.
	Filename string `json:"filename"`

	// Path is the temporary file holding the document bytes.
	Path string `json:"-"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// ErrorKind is the machine-readable failure kind when Status is
	// failed.
	ErrorKind string `json:"error_kind,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// Result holds the pipeline output once the job completes.
	Result *pipeline.Result `json:"result,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries caps retries. Pipeline failures are deterministic
	// for a given document, so publishers normally leave this zero.
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *ProcessStatementJob) GetID() string { return j.JobID }

// GetType implements the Job interface.
func (j *ProcessStatementJob) GetType() JobType { return JobTypeProcessStatement }

// GetStatus implements the Job interface.
func (j *ProcessStatementJob) GetStatus() JobStatus { return j.Status }

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishProcessStatement publishes a statement processing job.
	PublishProcessStatement(ctx context.Context, job *ProcessStatementJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue, calling handler for
	// each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs.
	Stop(ctx context.Context) error
}

// JobHandler processes a job. A non-nil error marks the job failed
// (and retried while retries remain).
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state for the status endpoints.
type JobStore interface {
	SaveJob(ctx context.Context, job *ProcessStatementJob) error
	GetJob(ctx context.Context, jobID string) (*ProcessStatementJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ProcessStatementJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	Status JobStatus
	Limit  int
	Offset int
}
