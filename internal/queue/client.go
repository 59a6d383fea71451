// Package queue wraps the Redis-backed task queue that hands bulk
// validation work from the API process to the worker process.
//
// Grounded on mailvetter's internal/queue/client.go for the
// redis.Client connection shape; Task and QueueName are defined here
// because the teacher's worker and upload handler referenced them
// without the type ever being checked in, so they are reconstructed
// to match how internal/worker/runner.go and cmd/api/upload.go use them.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// QueueName is the single Redis list every bulk validation task is
// pushed to and BLPOP'd from.
const QueueName = "mailvetter:validate"

// Task is one unit of bulk work: validate Email and record the result
// under JobID.
type Task struct {
	JobID string `json:"job_id"`
	Email string `json:"email"`
}

var Client *redis.Client

// Init connects to Redis and pings it to ensure it's alive.
func Init(addr string) error {
	Client = redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Enqueue pushes one task onto the queue as JSON.
func Enqueue(ctx context.Context, t Task) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	return Client.RPush(ctx, QueueName, raw).Err()
}
