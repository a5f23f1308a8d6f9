package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tmalloy/docchunk/internal/chunker"
	"github.com/tmalloy/docchunk/internal/config"
	"github.com/tmalloy/docchunk/internal/sink"
	"github.com/tmalloy/docchunk/internal/stats"
	"github.com/tmalloy/docchunk/internal/store"
)

// Orchestrator manages the document ingestion pipeline.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	docs  *store.Store
	sink  *sink.Client
	stats *stats.Pipeline
	log   *slog.Logger
	cfg   config.Config

	chunkCfg chunker.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. sinkClient may be nil.
func NewOrchestrator(cfg config.Config, docs *store.Store, sinkClient *sink.Client, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		docs:  docs,
		sink:  sinkClient,
		stats: stats.NewPipeline(time.Hour),
		log:   log,
		cfg:   cfg,
		chunkCfg: chunker.Config{
			ChunkSizeTokens: cfg.ChunkSizeTokens,
			OverlapElements: cfg.OverlapElements,
		},
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.docs, o.sink, o.stats, o.log, o.chunkCfg, o.cfg.MaxConcurrentPush, o.cfg.PDFFallbackPdftotext)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Documents returns the document store for direct use by API handlers.
func (o *Orchestrator) Documents() *store.Store {
	return o.docs
}

// SinkClient returns the configured sink client, or nil.
func (o *Orchestrator) SinkClient() *sink.Client {
	return o.sink
}

// Stats returns pipeline throughput stats.
func (o *Orchestrator) Stats() *stats.Pipeline {
	return o.stats
}
