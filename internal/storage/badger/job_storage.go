package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rentradar/internal/interfaces"
	"github.com/ternarybob/rentradar/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// JobStorage implements the JobStorage interface for Badger
type JobStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewJobStorage creates a new JobStorage instance
func NewJobStorage(db *BadgerDB, logger arbor.ILogger) interfaces.JobStorage {
	return &JobStorage{
		db:     db,
		logger: logger,
	}
}

func (s *JobStorage) SaveJob(ctx context.Context, job *models.ScrapeJob) error {
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}
	if err := s.db.Store().Upsert(job.ID, job); err != nil {
		return fmt.Errorf("failed to save job %s: %w", job.ID, err)
	}
	return nil
}

func (s *JobStorage) GetJob(ctx context.Context, id string) (*models.ScrapeJob, error) {
	var job models.ScrapeJob
	if err := s.db.Store().Get(id, &job); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("job %s: %w", id, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return &job, nil
}

func (s *JobStorage) UpdateJobStatus(ctx context.Context, id string, status models.JobStatus, errorMsg string) error {
	var job models.ScrapeJob
	if err := s.db.Store().Get(id, &job); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("job %s: %w", id, interfaces.ErrNotFound)
		}
		return fmt.Errorf("failed to get job %s: %w", id, err)
	}

	// A terminal job never transitions again; a retry is a new job.
	if job.Status.IsTerminal() {
		return fmt.Errorf("job %s (%s -> %s): %w", id, job.Status, status, interfaces.ErrTerminalTransition)
	}

	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}

	now := time.Now().UTC()
	switch status {
	case models.JobStatusProcessing:
		job.StartedAt = &now
	case models.JobStatusCompleted, models.JobStatusFailed:
		job.CompletedAt = &now
	}

	return s.SaveJob(ctx, &job)
}

func (s *JobStorage) GetJobsByStatus(ctx context.Context, status models.JobStatus) ([]*models.ScrapeJob, error) {
	var jobs []models.ScrapeJob
	if err := s.db.Store().Find(&jobs, badgerhold.Where("Status").Eq(status).SortBy("CreatedAt").Reverse()); err != nil {
		return nil, fmt.Errorf("failed to get jobs by status %s: %w", status, err)
	}

	result := make([]*models.ScrapeJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

func (s *JobStorage) MarkProcessingJobsFailed(ctx context.Context, reason string) (int, error) {
	var jobs []models.ScrapeJob
	query := badgerhold.Where("Status").Eq(models.JobStatusProcessing).
		Or(badgerhold.Where("Status").Eq(models.JobStatusPending))
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return 0, fmt.Errorf("failed to find unfinished jobs: %w", err)
	}

	count := 0
	now := time.Now().UTC()
	for _, job := range jobs {
		job.Status = models.JobStatusFailed
		job.Error = reason
		job.CompletedAt = &now
		if err := s.SaveJob(ctx, &job); err == nil {
			count++
		}
	}

	if count > 0 {
		s.logger.Info().Int("count", count).Str("reason", reason).Msg("Marked unfinished jobs as failed")
	}
	return count, nil
}
