// Package worker drains the optional server's (C11) job queue and drives
// pipeline.Generate for each queued run, updating the Postgres ledger as
// the run advances. Grounded on the teacher's processQueue dispatch loop,
// trimmed from three queues/job types down to the single generate_run
// operation C11 exposes — internal/pipeline owns every stage the teacher's
// handleGeneratePlan/handleProcessClip/handleRenderFinal split across jobs.
package worker

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/bobarin/kobanashi/internal/db"
	"github.com/bobarin/kobanashi/internal/models"
	"github.com/bobarin/kobanashi/internal/pipeline"
	"github.com/bobarin/kobanashi/internal/queue"
	"github.com/bobarin/kobanashi/internal/storage"
)

// Worker owns one pipeline.Pipeline and fans dequeued jobs out across a
// fixed number of goroutines, each looping its own Dequeue call.
type Worker struct {
	db       *db.DB
	queue    *queue.Queue
	storage  *storage.Storage
	pipeline *pipeline.Pipeline
	paths    *models.ProjectPaths
}

func New(database *db.DB, q *queue.Queue, stor *storage.Storage, pl *pipeline.Pipeline, paths *models.ProjectPaths) *Worker {
	return &Worker{db: database, queue: q, storage: stor, pipeline: pl, paths: paths}
}

// Start launches concurrency goroutines, each pulling from the single
// generate_run queue, and blocks until ctx is cancelled.
func (w *Worker) Start(ctx context.Context, concurrency int) {
	log.Printf("[worker] started with concurrency %d", concurrency)

	for i := 0; i < concurrency; i++ {
		go w.loop(ctx)
	}

	<-ctx.Done()
	log.Println("[worker] shutting down")
}

func (w *Worker) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.queue.Dequeue(ctx, 5*time.Second)
		if err != nil {
			log.Printf("[worker] dequeue error: %v", err)
			continue
		}
		if job == nil {
			continue // BLPop timed out, nothing queued
		}

		log.Printf("[worker] processing run %s (job %s)", job.RunID, job.ID)
		if err := w.db.UpdateJobStatus(ctx, job.ID, models.JobStatusRunning); err != nil {
			log.Printf("[worker] job status update failed: %v", err)
		}

		if err := w.process(ctx, job); err != nil {
			log.Printf("[worker] run %s failed: %v", job.RunID, err)
			if dbErr := w.db.UpdateRunError(ctx, job.RunID, "pipeline", err.Error()); dbErr != nil {
				log.Printf("[worker] failed to record run error: %v", dbErr)
			}
			if dbErr := w.db.UpdateJobError(ctx, job.ID, err.Error()); dbErr != nil {
				log.Printf("[worker] failed to record job error: %v", dbErr)
			}
			continue
		}

		if err := w.db.UpdateJobStatus(ctx, job.ID, models.JobStatusSucceeded); err != nil {
			log.Printf("[worker] job status update failed: %v", err)
		}
	}
}

// process runs the whole S1-S6 pipeline for one queued run and uploads its
// rendered output to Supabase Storage, mirroring CreateRun's ledger rows.
func (w *Worker) process(ctx context.Context, job *queue.Job) error {
	if err := w.db.UpdateRunStatus(ctx, job.RunID, models.RunStatusScripting); err != nil {
		log.Printf("[worker] run status update failed: %v", err)
	}

	if err := w.pipeline.Generate(ctx, job.Input, job.SceneRange, pipeline.Flags{}); err != nil {
		_ = w.db.UpdateRunStatus(ctx, job.RunID, models.RunStatusFailed)
		return fmt.Errorf("generate: %w", err)
	}

	if err := w.db.UpdateRunStatus(ctx, job.RunID, models.RunStatusRendering); err != nil {
		log.Printf("[worker] run status update failed: %v", err)
	}

	outputPath := w.paths.OutputPath(job.SceneRange)
	asset, err := w.uploadOutput(ctx, job.RunID, outputPath)
	if err != nil {
		_ = w.db.UpdateRunStatus(ctx, job.RunID, models.RunStatusFailed)
		return fmt.Errorf("upload output: %w", err)
	}

	if err := w.db.UpdateRunOutputAsset(ctx, job.RunID, asset.ID); err != nil {
		return fmt.Errorf("record output asset: %w", err)
	}
	return w.db.UpdateRunStatus(ctx, job.RunID, models.RunStatusCompleted)
}

func (w *Worker) uploadOutput(ctx context.Context, runID uuid.UUID, outputPath string) (*models.Asset, error) {
	storagePath := w.storage.GenerateStoragePath(runID, filepath.Base(outputPath))
	if err := w.storage.UploadFile(ctx, storagePath, outputPath, "video/mp4"); err != nil {
		return nil, err
	}

	asset := &models.Asset{
		ID:            uuid.New(),
		RunID:         runID,
		Type:          models.AssetTypeFinalVideo,
		StorageBucket: w.storage.Bucket,
		StoragePath:   storagePath,
	}
	if err := w.db.CreateAsset(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}
