package parcel

import (
	"context"
	"net/http"
	"time"

	"github.com/oasislabs/parcel-go/pkg/httpx"
)

// JobPhase is the lifecycle phase of a compute job.
type JobPhase string

const (
	JobPhasePending   JobPhase = "PENDING"
	JobPhaseRunning   JobPhase = "RUNNING"
	JobPhaseSucceeded JobPhase = "SUCCEEDED"
	JobPhaseFailed    JobPhase = "FAILED"
)

// JobSpec describes a compute job: a container run against documents the
// submitter can read, producing new documents.
type JobSpec struct {
	Name            string            `json:"name"`
	Image           string            `json:"image"`
	Cmd             []string          `json:"cmd"`
	Env             map[string]string `json:"env,omitempty"`
	InputDocuments  []JobDocumentRef  `json:"inputDocuments,omitempty"`
	OutputDocuments []JobDocumentSpec `json:"outputDocuments,omitempty"`
}

// JobDocumentRef mounts an existing document into the job container.
type JobDocumentRef struct {
	ID        string `json:"id"`
	MountPath string `json:"mountPath"`
}

// JobDocumentSpec declares a container path to capture as a new document
// when the job succeeds.
type JobDocumentSpec struct {
	MountPath string `json:"mountPath"`
	Owner     string `json:"owner,omitempty"`
}

// Job is a submitted compute job.
type Job struct {
	ID        string    `json:"id"`
	Spec      JobSpec   `json:"spec"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// JobStatus is the observed state of a job.
type JobStatus struct {
	Phase           JobPhase         `json:"phase"`
	Message         string           `json:"message,omitempty"`
	Host            string           `json:"host,omitempty"`
	OutputDocuments []JobDocumentRef `json:"outputDocuments,omitempty"`
}

// Terminal reports whether the job has stopped running.
func (s JobStatus) Terminal() bool {
	return s.Phase == JobPhaseSucceeded || s.Phase == JobPhaseFailed
}

// JobService manages compute jobs.
type JobService struct {
	t *httpx.Client
}

// Submit enqueues a new job. The returned job is typically still pending;
// poll Status until Terminal.
func (s *JobService) Submit(ctx context.Context, spec JobSpec) (*Job, error) {
	var out Job
	// The scheduler acknowledges with 200 when the job is queued on an
	// already-warm worker, 201 otherwise.
	err := s.t.Create(ctx, "/compute/jobs", spec, &out, httpx.AllowStatusCodes(http.StatusOK))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a job with its spec and current status.
func (s *JobService) Get(ctx context.Context, id string) (*Job, error) {
	var out Job
	if err := s.t.Get(ctx, "/compute/jobs/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status returns only the current status of a job; cheaper to poll than Get.
func (s *JobService) Status(ctx context.Context, id string) (*JobStatus, error) {
	var out JobStatus
	if err := s.t.Get(ctx, "/compute/jobs/"+id+"/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Terminate stops a job. Terminating an already-terminal job is not an
// error on the platform side.
func (s *JobService) Terminate(ctx context.Context, id string) error {
	return s.t.Delete(ctx, "/compute/jobs/"+id)
}

// List pages through the caller's jobs.
func (s *JobService) List(ctx context.Context, params ListParams) (*Page[Job], error) {
	var out Page[Job]
	if err := s.t.Get(ctx, "/compute/jobs", params.query(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
