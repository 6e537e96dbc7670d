package batch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/audioscribe/backend/internal/chunk"
	"github.com/audioscribe/backend/internal/provider"
	"github.com/audioscribe/backend/internal/transcript"
)

// ErrBatchFailed is returned when every segment exhausted its retries.
var ErrBatchFailed = errors.New("all segments failed")

// ErrCancelled is returned when the run was cancelled before all
// segments were dispatched. A cancelled run never yields a transcript.
var ErrCancelled = errors.New("transcription cancelled")

const (
	defaultConcurrency = 3 // in-flight provider calls, keeps under rate limits
	defaultMaxAttempts = 3
	defaultBackoffBase = 2 * time.Second
)

// Orchestrator drives a segment plan through one provider adapter,
// normalizes each result, and merges the fragments in segment-index
// order regardless of completion order.
type Orchestrator struct {
	Concurrency int
	MaxAttempts int
	BackoffBase time.Duration

	// sleep is swapped out by tests to skip real backoff waits.
	sleep func(ctx context.Context, d time.Duration)
}

func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		Concurrency: defaultConcurrency,
		MaxAttempts: defaultMaxAttempts,
		BackoffBase: defaultBackoffBase,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// segmentOutcome is the settled state of one segment's call chain.
type segmentOutcome struct {
	seg      chunk.Segment
	fragment *transcript.Fragment
	err      error
}

// Run transcribes all segments of file through adapter. Progress fires
// after every segment settles (success or exhausted failure); the
// percentage is monotonic and reaches 100 exactly once, on the final
// settle. With at least one successful segment the run returns a
// transcript assembled from the successes in original order, carrying a
// warning naming the missing byte ranges; with none it returns
// ErrBatchFailed. A tripped cancel token stops further dispatch, lets
// in-flight calls finish, discards their results, and returns
// ErrCancelled.
func (o *Orchestrator) Run(
	ctx context.Context,
	file *chunk.AudioFile,
	segments []chunk.Segment,
	adapter provider.Adapter,
	opts provider.Options,
	onProgress func(transcript.Progress),
	cancel CancelToken,
) (*transcript.Canonical, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("empty segment plan")
	}
	if onProgress == nil {
		onProgress = func(transcript.Progress) {}
	}
	if cancel == nil {
		cancel = NewFlagToken()
	}

	// Pre-flight: reject bad option combinations before any network call.
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := provider.CheckSupport(adapter, opts); err != nil {
		return nil, err
	}

	total := len(segments)
	outcomes := make([]segmentOutcome, total)

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		completed int
		cancelled bool
	)

	concurrency := o.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if total == 1 {
		// No split happened; run sequentially.
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	log.Printf("[batch] run: %s provider=%s segments=%d concurrency=%d",
		file.Name, adapter.Name(), total, concurrency)

	for _, seg := range segments {
		if cancel.IsCancelled() {
			mu.Lock()
			cancelled = true
			mu.Unlock()
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(seg chunk.Segment) {
			defer wg.Done()
			defer func() { <-sem }()

			// Re-check after acquiring a slot: a cancel that tripped while
			// this segment was queued must not reach the provider.
			if cancel.IsCancelled() {
				mu.Lock()
				cancelled = true
				mu.Unlock()
				return
			}

			frag, err := o.transcribeSegment(ctx, adapter, seg, opts)

			mu.Lock()
			defer mu.Unlock()
			if cancelled || cancel.IsCancelled() {
				// Discarded: the run was cancelled while this call was
				// in flight.
				cancelled = true
				return
			}
			outcomes[seg.Index] = segmentOutcome{seg: seg, fragment: frag, err: err}
			completed++
			onProgress(transcript.Progress{
				Completed:  completed,
				Total:      total,
				Percentage: completed * 100 / total,
				Stage:      "transcribing",
			})
		}(seg)
	}

	wg.Wait()

	if cancelled || cancel.IsCancelled() {
		log.Printf("[batch] run cancelled: %s", file.Name)
		return nil, ErrCancelled
	}

	return o.merge(file, adapter, opts, segments, outcomes)
}

// transcribeSegment runs one segment's call with bounded retries and
// exponential backoff. Only transient errors are retried.
func (o *Orchestrator) transcribeSegment(ctx context.Context, adapter provider.Adapter, seg chunk.Segment, opts provider.Options) (*transcript.Fragment, error) {
	maxAttempts := o.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err := adapter.Transcribe(ctx, seg, opts)
		if err == nil {
			return provider.Normalize(res)
		}
		lastErr = err
		if !provider.IsRetryable(err) || attempt == maxAttempts {
			break
		}
		backoff := o.BackoffBase * time.Duration(1<<(attempt-1))
		log.Printf("[batch] segment %d attempt %d/%d failed (%v), retrying in %s",
			seg.Index, attempt, maxAttempts, err, backoff)
		o.sleep(ctx, backoff)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("segment %d: %w", seg.Index, lastErr)
}

// merge assembles the canonical transcript from successful fragments in
// segment-index order. Word times shift onto the file timeline.
func (o *Orchestrator) merge(file *chunk.AudioFile, adapter provider.Adapter, opts provider.Options, segments []chunk.Segment, outcomes []segmentOutcome) (*transcript.Canonical, error) {
	var (
		texts       []string
		words       []transcript.Word
		speakers    []transcript.SpeakerSegment
		confidences []float64
		missing     []string
		entities    = map[string][]string{}
		confSum     float64
		lastErr     error
	)

	for _, out := range outcomes {
		if out.err != nil {
			missing = append(missing, fmt.Sprintf("segment %d (%s)", out.seg.Index, out.seg.ByteRange()))
			lastErr = out.err
			continue
		}
		frag := out.fragment
		if frag.Text != "" {
			texts = append(texts, frag.Text)
		}
		for _, w := range frag.Words {
			w.StartTime += out.seg.TimeStart
			w.EndTime += out.seg.TimeStart
			words = append(words, w)
		}
		for _, s := range frag.Speakers {
			s.StartTime += out.seg.TimeStart
			s.EndTime += out.seg.TimeStart
			speakers = append(speakers, s)
		}
		mergeEntities(entities, frag.Entities)
		confidences = append(confidences, frag.Confidence)
		confSum += frag.Confidence
	}

	if len(confidences) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrBatchFailed, lastErr)
	}

	modelUsed := opts.Model
	if modelUsed == "" {
		modelUsed = adapter.Name()
	}

	fullText := strings.Join(texts, " ")
	overall := confSum / float64(len(confidences))
	alt := transcript.Alternative{Transcript: fullText, Confidence: overall}

	c := &transcript.Canonical{
		Results: transcript.Results{
			Transcripts: []transcript.Alternative{alt},
			Channels:    []transcript.Channel{{Alternatives: []transcript.Alternative{alt}}},
		},
		Metadata: transcript.Metadata{
			FileName:          file.Name,
			ModelUsed:         modelUsed,
			Words:             words,
			SegmentConfidence: confidences,
		},
		Entities: entities,
		Speakers: speakers,
	}
	if len(missing) > 0 {
		c.Warning = fmt.Sprintf("partial transcript: %d of %d segments failed after retries: %s",
			len(missing), len(segments), strings.Join(missing, ", "))
		log.Printf("[batch] %s", c.Warning)
	}
	return c, nil
}

// mergeEntities appends src values in order, dropping exact duplicates
// already present in the category.
func mergeEntities(dst, src map[string][]string) {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		seen := make(map[string]bool, len(dst[k]))
		for _, v := range dst[k] {
			seen[v] = true
		}
		for _, v := range src[k] {
			if !seen[v] {
				dst[k] = append(dst[k], v)
				seen[v] = true
			}
		}
	}
}
