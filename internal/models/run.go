package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RunStatus tracks a generate invocation through the optional server's
// job ledger. It mirrors the pipeline stage order (C9) but at invocation
// granularity, not per-phrase/per-slide.
type RunStatus string

const (
	RunStatusQueued       RunStatus = "queued"
	RunStatusFetching     RunStatus = "fetching"
	RunStatusScripting    RunStatus = "scripting"
	RunStatusSynthesizing RunStatus = "synthesizing"
	RunStatusRendering    RunStatus = "rendering"
	RunStatusCompleted    RunStatus = "completed"
	RunStatusFailed       RunStatus = "failed"
)

// JobStatus tracks one stage-ledger row for a run.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// AssetType classifies a stored artifact referenced by a run.
type AssetType string

const (
	AssetTypeScript    AssetType = "script"
	AssetTypeFinalVideo AssetType = "final_video"
	AssetTypeLogs      AssetType = "logs"
)

// JSONB is a custom type for PostgreSQL JSONB columns, used here to
// persist a config-override snapshot alongside each run.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// Run is one `generate` invocation accepted by the optional server. It
// carries just enough to dispatch to pipeline.Generate and report status;
// all domain logic still lives in the core pipeline, not here.
type Run struct {
	ID                uuid.UUID `json:"id"`
	Input             string    `json:"input"` // URL or script path
	ConfigOverrides   JSONB     `json:"config_overrides,omitempty"`
	SceneRange        *string   `json:"scene_range,omitempty"`
	Status            RunStatus `json:"status"`
	OutputAssetID     *uuid.UUID `json:"output_asset_id,omitempty"`
	ErrorStage        *string   `json:"error_stage,omitempty"`
	ErrorMessage      *string   `json:"error_message,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Job is one ledger row for a run; Stage names the step it tracks (the API
// records a single "dispatch" row per run), not a generic job "type" string.
type Job struct {
	ID           uuid.UUID  `json:"id"`
	RunID        uuid.UUID  `json:"run_id"`
	Stage        string     `json:"stage"`
	Status       JobStatus  `json:"status"`
	Attempts     int        `json:"attempts"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Asset is a stored artifact (final video, script snapshot, log bundle)
// referenced by a run, mirroring the on-disk Project Layout but addressable
// over HTTP by the optional server.
type Asset struct {
	ID            uuid.UUID `json:"id"`
	RunID         uuid.UUID `json:"run_id"`
	Type          AssetType `json:"type"`
	StorageBucket string    `json:"storage_bucket"`
	StoragePath   string    `json:"storage_path"`
	ContentType   *string   `json:"content_type,omitempty"`
	ByteSize      *int64    `json:"byte_size,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateRunRequest is the POST /v1/runs body.
type CreateRunRequest struct {
	Input           string                 `json:"input"`
	ConfigOverrides map[string]interface{} `json:"config_overrides,omitempty"`
	SceneRange      *string                `json:"scene_range,omitempty"`
}

type CreateRunResponse struct {
	RunID  uuid.UUID `json:"run_id"`
	Status RunStatus `json:"status"`
}

// RunResponse is the GET /v1/runs/{id} body.
type RunResponse struct {
	Run
	OutputVideoURL *string `json:"output_video_url,omitempty"`
}

type RunSummary struct {
	ID           uuid.UUID `json:"id"`
	Input        string    `json:"input"`
	Status       RunStatus `json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ListRunsResponse struct {
	Runs   []RunSummary `json:"runs"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}
