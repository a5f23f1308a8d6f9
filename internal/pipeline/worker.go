package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmalloy/docchunk/internal/chunker"
	"github.com/tmalloy/docchunk/internal/doctree"
	"github.com/tmalloy/docchunk/internal/hierarchy"
	"github.com/tmalloy/docchunk/internal/parser"
	"github.com/tmalloy/docchunk/internal/sink"
	"github.com/tmalloy/docchunk/internal/stats"
	"github.com/tmalloy/docchunk/internal/store"
)

// sinkBatchSize is how many chunks go into one sink push.
const sinkBatchSize = 200

// Worker processes a single document job end to end:
// parse → structure → chunk → store → push.
type Worker struct {
	builder *hierarchy.Builder
	docs    *store.Store
	sink    *sink.Client
	stats   *stats.Pipeline
	log     *slog.Logger

	chunkCfg          chunker.Config
	tokenCounter      chunker.TokenCounter
	maxConcurrentPush int
	pdfFallback       bool
}

func NewWorker(docs *store.Store, sinkClient *sink.Client, pipelineStats *stats.Pipeline, log *slog.Logger, chunkCfg chunker.Config, maxPush int, pdfFallback bool) *Worker {
	return &Worker{
		builder:           hierarchy.NewBuilder(log),
		docs:              docs,
		sink:              sinkClient,
		stats:             pipelineStats,
		log:               log,
		chunkCfg:          chunkCfg,
		tokenCounter:      chunker.CachedCounter(chunker.EstimateTokens),
		maxConcurrentPush: maxPush,
		pdfFallback:       pdfFallback,
	}
}

// Process runs the full pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)
	started := time.Now()

	// Phase 1: Parse to flat elements.
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		w.fail(job, log, "parsing", err)
		return
	}
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		pdfParser.FallbackPdftotext = w.pdfFallback
	}

	elements, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		w.fail(job, log, "parsing", fmt.Errorf("parse: %w", err))
		return
	}
	job.SetCounts(len(elements), -1)

	// Dedup on the parsed text, not the raw bytes, so trivially re-saved
	// files with identical content are caught.
	contentHash := ContentHashHex([]byte(flattenElementText(elements)))
	job.SetContentHash(contentHash)
	if !job.Force {
		if existingID, ok := w.docs.FindByHash(contentHash); ok && existingID != job.DocID {
			log.Info("duplicate document, skipping", "existing_doc_id", existingID)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		}
	}

	// Phase 2: Reconstruct the hierarchy.
	job.SetStatus(StatusStructuring, "structuring")
	roots := w.builder.Build(elements)

	// Phase 3: Chunk.
	job.SetStatus(StatusChunking, "chunking")
	cfg := w.chunkCfg
	if job.ChunkSizeTokens > 0 {
		cfg.ChunkSizeTokens = job.ChunkSizeTokens
	}
	if job.OverlapElements > 0 {
		cfg.OverlapElements = job.OverlapElements
	}
	assembler, err := chunker.New(cfg, chunker.WithTokenCounter(w.tokenCounter))
	if err != nil {
		w.fail(job, log, "chunking", fmt.Errorf("chunker config: %w", err))
		return
	}

	sourceFormat := parser.SourceFormat(job.Filename)
	chunks := assembler.Apply(roots, job.DocID, sourceFormat)
	job.SetCounts(-1, len(chunks))
	log.Info("chunked document", "elements", len(elements), "chunks", len(chunks))

	if len(chunks) == 0 {
		w.fail(job, log, "chunking", fmt.Errorf("no extractable content"))
		return
	}

	// Phase 4: Store locally for retrieval.
	job.SetStatus(StatusStoring, "storing")
	w.docs.Put(job.DocID, job.Filename, sourceFormat, contentHash, chunks)

	// Phase 5: Push downstream, if a sink is configured.
	hadErrors := false
	if w.sink != nil {
		job.SetStatus(StatusPushing, "pushing")
		hadErrors = !w.pushChunks(ctx, job, log, sourceFormat, chunks)
	}

	if hadErrors {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
	if w.stats != nil {
		w.stats.RecordDocument(time.Since(started), len(chunks))
	}
}

// pushChunks uploads chunk batches with bounded concurrency and
// retry/backoff per batch. Returns true if every batch made it.
func (w *Worker) pushChunks(ctx context.Context, job *Job, log *slog.Logger, sourceFormat string, chunks []doctree.Chunk) bool {
	type batch struct {
		offset int
		chunks []doctree.Chunk
	}
	var batches []batch
	for off := 0; off < len(chunks); off += sinkBatchSize {
		end := min(off+sinkBatchSize, len(chunks))
		batches = append(batches, batch{offset: off, chunks: chunks[off:end]})
	}

	sem := make(chan struct{}, w.maxConcurrentPush)
	results := make(chan error, len(batches))

	for _, b := range batches {
		sem <- struct{}{}
		go func(b batch) {
			defer func() { <-sem }()
			var lastErr error
			for attempt := 0; attempt < MaxRetries; attempt++ {
				lastErr = w.sink.PushChunks(ctx, job.DocID, sourceFormat, job.Filename, b.offset, b.chunks)
				if lastErr == nil || !IsRetryable(lastErr) {
					break
				}
				log.Warn("retryable sink error", "offset", b.offset, "attempt", attempt, "error", lastErr)
				select {
				case <-time.After(Backoff(attempt)):
				case <-ctx.Done():
					results <- ctx.Err()
					return
				}
			}
			if lastErr == nil {
				job.AddChunksPushed(len(b.chunks))
			}
			results <- lastErr
		}(b)
	}

	ok := true
	for range batches {
		if err := <-results; err != nil {
			log.Error("sink push failed", "error", err)
			job.AddError(fmt.Sprintf("push: %s", err))
			ok = false
		}
	}
	return ok
}

func (w *Worker) fail(job *Job, log *slog.Logger, phase string, err error) {
	log.Error(phase+" failed", "error", err)
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, phase)
	if w.stats != nil {
		w.stats.RecordFailure()
	}
}

// flattenElementText concatenates all textual content of a flat element
// sequence, for content hashing.
func flattenElementText(elements []doctree.Element) string {
	var sb strings.Builder
	for _, el := range elements {
		if el.Text != "" {
			sb.WriteString(el.Text)
			sb.WriteString("\n")
		}
		for _, cell := range el.Header {
			sb.WriteString(cell)
			sb.WriteString("|")
		}
		for _, row := range el.DataRows {
			for _, cell := range row {
				sb.WriteString(cell)
				sb.WriteString("|")
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
