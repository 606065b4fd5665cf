// Package queue is the Redis-backed dispatch for the optional server (C11):
// a request handler enqueues a run, a worker goroutine dequeues it and calls
// pipeline.Generate. It carries no pipeline logic of its own.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const QueueGenerateRun = "queue:generate_run"

type Queue struct {
	client *redis.Client
}

// Job is the wire payload for one queued run. SceneRange is carried
// verbatim from the API request so the worker can pass it straight to
// pipeline.Generate without a round-trip through Postgres.
type Job struct {
	ID         uuid.UUID `json:"id"`
	RunID      uuid.UUID `json:"run_id"`
	Input      string    `json:"input"`
	SceneRange string    `json:"scene_range,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func New(redisURL string) (*Queue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Queue{client: client}, nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}

func (q *Queue) Enqueue(ctx context.Context, job *Job) error {
	job.CreatedAt = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	return q.client.RPush(ctx, QueueGenerateRun, data).Err()
}

func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	result, err := q.client.BLPop(ctx, timeout, QueueGenerateRun).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue: %w", err)
	}

	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected redis response")
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

func (q *Queue) GetQueueLength(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, QueueGenerateRun).Result()
}

// EnqueueGenerateRun enqueues a generate invocation for the background worker.
func (q *Queue) EnqueueGenerateRun(ctx context.Context, runID uuid.UUID, input, sceneRange string) error {
	job := &Job{
		ID:         uuid.New(),
		RunID:      runID,
		Input:      input,
		SceneRange: sceneRange,
	}
	return q.Enqueue(ctx, job)
}
