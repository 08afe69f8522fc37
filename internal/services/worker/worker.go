// Package worker runs a batch of uploads through the document pipeline
// on a fixed number of goroutines.
//
// Go Pattern: Goroutines and channels are Go's concurrency primitives.
// A goroutine is like a lightweight thread (thousands are fine), and
// channels are typed pipes for communication between goroutines.
//
// This worker pool pattern is very common in Go:
// 1. Create a buffered channel as a job queue
// 2. Spawn N worker goroutines that read from the channel
// 3. Send the batch's files to the channel
// 4. Collect outcomes from a second channel as workers finish them
//
// Think of it like a restaurant: the channel is the order window,
// workers are the cooks, and the handler waits at the pass for every plate.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shimizu-Technology/pdf-insights-api/internal/models"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/services/pipeline"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 4

// ErrNoFilesUploaded is returned for a batch without any file.
var ErrNoFilesUploaded = errors.New("no files uploaded")

// Processor handles a single upload. *pipeline.Pipeline satisfies it.
type Processor interface {
	Process(ctx context.Context, up pipeline.Upload) pipeline.Outcome
}

// Pool processes batches with a fixed number of workers.
// A Pool holds no per-batch state, so one Pool serves every request.
type Pool struct {
	workers   int
	processor Processor
}

// NewPool creates a pool of the given size. Sizes below 1 use DefaultWorkers.
func NewPool(workers int, proc Processor) *Pool {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Pool{workers: workers, processor: proc}
}

// WorkerCount returns the number of workers.
func (p *Pool) WorkerCount() int {
	return p.workers
}

// Run processes every upload and returns the outcomes in completion order.
// It blocks until all uploads are done. Each worker runs one upload to
// completion before taking the next; a failing file never stops its siblings.
func (p *Pool) Run(ctx context.Context, uploads []pipeline.Upload) []pipeline.Outcome {
	if len(uploads) == 0 {
		return []pipeline.Outcome{}
	}

	// Go Pattern: Both channels are buffered to the batch size, so neither
	// the feeder nor the workers ever block on a slow reader.
	jobs := make(chan pipeline.Upload, len(uploads))
	results := make(chan pipeline.Outcome, len(uploads))

	for _, up := range uploads {
		jobs <- up
	}
	close(jobs)

	// Go Pattern: sync.WaitGroup tracks running goroutines.
	// We call wg.Add(1) when starting a worker, wg.Done() when it finishes,
	// and wg.Wait() blocks until all workers are done.
	var wg sync.WaitGroup
	n := min(p.workers, len(uploads))
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.worker(ctx, id, jobs, results)
		}(i)
	}

	// Close results once every worker has returned so the range below ends.
	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]pipeline.Outcome, 0, len(uploads))
	for out := range results {
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// worker is the main loop for each worker goroutine.
// It reads uploads from the channel and processes them.
func (p *Pool) worker(ctx context.Context, id int, jobs <-chan pipeline.Upload, results chan<- pipeline.Outcome) {
	// Go Pattern: `range` over a channel reads values until the channel is closed.
	// This is the idiomatic way to consume from a channel.
	for up := range jobs {
		out := p.process(ctx, up)
		if out.Err != nil {
			log.Printf("❌ Worker %d: %s %s: %v", id, up.FileName, out.Status, out.Err)
		} else {
			log.Printf("✅ Worker %d: %s completed", id, up.FileName)
		}
		results <- out
	}
}

// process wraps the processor so that a panic inside it still produces
// an outcome and the batch finishes.
func (p *Pool) process(ctx context.Context, up pipeline.Upload) (out pipeline.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic while processing: %v", r)
			out = pipeline.Outcome{
				FileName: up.FileName,
				Status:   pipeline.Failed,
				Err:      err,
				Details:  err.Error(),
			}
		}
	}()
	return p.processor.Process(ctx, up)
}

// Batch runs uploads and partitions the outcomes into the /parse response.
// Outcomes carrying an error (degraded or failed) are reported only in
// Errors; the response is successful only when Errors is empty.
func (p *Pool) Batch(ctx context.Context, uploads []pipeline.Upload) (models.ParseResponse, error) {
	if len(uploads) == 0 {
		return models.ParseResponse{}, ErrNoFilesUploaded
	}

	batchID := uuid.New().String()
	start := time.Now()
	log.Printf("📥 Batch %s: %d file(s) on %d worker(s)", batchID, len(uploads), min(p.workers, len(uploads)))

	resp := models.ParseResponse{
		Results: []models.Document{},
		Errors:  []models.FileError{},
	}
	for _, out := range p.Run(ctx, uploads) {
		if out.Err != nil || out.Record == nil {
			resp.Errors = append(resp.Errors, models.FileError{
				Error:   fmt.Sprintf("Failed to process %s", out.FileName),
				Details: out.Details,
			})
			continue
		}
		resp.Results = append(resp.Results, out.Record.Export())
	}
	resp.Success = len(resp.Errors) == 0

	log.Printf("📦 Batch %s done in %s: %d ok, %d failed", batchID, time.Since(start).Round(time.Millisecond), len(resp.Results), len(resp.Errors))
	return resp, nil
}
