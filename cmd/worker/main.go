package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"mailvetter/internal/config"
	"mailvetter/internal/engine"
	"mailvetter/internal/queue"
	"mailvetter/internal/store"
)

// main launches the worker loop: BLPOP a task, run it through the
// engine, persist the result, repeat forever.
//
// Grounded on mailvetter's internal/worker/runner.go for the
// BLPOP-parse-process-save loop shape; PROCESS now calls the
// Coordinator instead of validator.VerifyEmail, and errors from a
// single task never stop the loop.
func main() {
	logrus.Info("worker starting")

	cfg := config.Load()
	config.ConfigureLogger(cfg)

	if err := queue.Init(cfg.RedisAddr); err != nil {
		logrus.Fatalf("redis connection failed: %v", err)
	}
	logrus.Info("connected to redis")

	if err := store.Init(cfg.DBURL); err != nil {
		logrus.Fatalf("database connection failed: %v", err)
	}
	logrus.Info("connected to postgres")

	eng := engine.Build(cfg)

	ctx := context.Background()
	for {
		result, err := queue.Client.BLPop(ctx, 0*time.Second, queue.QueueName).Result()
		if err != nil {
			logrus.Errorf("redis error: %v", err)
			time.Sleep(time.Second)
			continue
		}

		var task queue.Task
		if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
			logrus.Errorf("malformed task: %s", result[1])
			continue
		}

		valCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		r := eng.Coordinator.Validate(valCtx, task.Email)
		cancel()

		if err := store.SaveResult(ctx, task.JobID, task.Email, r); err != nil {
			logrus.Errorf("failed to save result for %s: %v", task.Email, err)
			continue
		}

		logrus.WithFields(logrus.Fields{
			"email":  task.Email,
			"score":  r.Score,
			"status": r.Status,
		}).Info("processed")
	}
}
