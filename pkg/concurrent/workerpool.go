// Copyright The Videoconf Tools Authors.
// SPDX-License-Identifier: MIT

// Package concurrent provides a bounded worker pool for fanning out
// independent Zoom API calls, such as archiving every recording file of a
// user in parallel without exhausting rate-limit budgets.
package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerPool bounds how many jobs run at once.
type WorkerPool struct {
	workerCount int
}

// NewWorkerPool creates a pool running at most workerCount jobs concurrently.
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{workerCount: workerCount}
}

// Run executes all jobs and fails fast: the first error cancels the group
// context and is returned once in-flight jobs finish.
func (wp *WorkerPool) Run(ctx context.Context, jobs ...func() error) error {
	if len(jobs) == 0 {
		return nil
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(wp.workerCount)

	for _, job := range jobs {
		g.Go(func() error {
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			default:
			}
			return job()
		})
	}

	return g.Wait()
}

// RunAll executes all jobs to completion regardless of failures and returns
// every non-nil error. Jobs not yet started when ctx is cancelled report the
// context error instead of running.
func (wp *WorkerPool) RunAll(ctx context.Context, jobs ...func() error) []error {
	if len(jobs) == 0 {
		return nil
	}

	errCh := make(chan error, len(jobs))

	g := new(errgroup.Group)
	g.SetLimit(wp.workerCount)

	for _, job := range jobs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return nil
			default:
			}

			if err := job(); err != nil {
				errCh <- err
			}
			return nil
		})
	}

	// Jobs report failures only through errCh, so Wait never errors.
	_ = g.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errs
}
