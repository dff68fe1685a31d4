package cmd

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// startWorker runs fn once immediately and then on every tick until ctx is done.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, interval time.Duration, fn func(ctx context.Context) error) {
	if interval <= 0 {
		logrus.WithField("job", name).Fatal("invalid worker interval")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		runJob(name, func() error { return fn(ctx) })
		for {
			select {
			case <-ctx.Done():
				logrus.WithField("job", name).Info("Worker shutdown requested")
				return
			case <-ticker.C:
				runJob(name, func() error { return fn(ctx) })
			}
		}
	}()
}

func runJob(name string, fn func() error) {
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		logrus.WithError(err).WithField("job", name).WithField("latency", latency.String()).Error("job_failed")
		return
	}
	logrus.WithField("job", name).WithField("latency", latency.String()).Debug("job_completed")
}
