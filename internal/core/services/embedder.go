package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/negah-labs/grounder/internal/core/domain"
	"github.com/negah-labs/grounder/internal/core/ports/driven"
	"github.com/negah-labs/grounder/internal/logger"
)

// Embedder turns texts into vectors in batches, with exponential-backoff
// retries per batch and an optional sustained request rate cap. A batch
// that fails every attempt aborts the whole operation: a build never
// produces a partially embedded index.
type Embedder struct {
	svc      driven.EmbeddingService
	settings domain.BuildSettings
	limiter  *rate.Limiter

	// sleep is swappable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewEmbedder creates an embedder over the given service.
func NewEmbedder(svc driven.EmbeddingService, settings domain.BuildSettings) (*Embedder, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	e := &Embedder{
		svc:      svc,
		settings: settings,
		sleep:    sleepContext,
	}
	if settings.RequestsPerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(settings.RequestsPerSecond), 1)
	}
	return e, nil
}

// Embed embeds a single text under the same retry, backoff, and rate
// policy as a batch. Query embedding goes through here, so a transient
// provider error does not abort a retrieval.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Dimensions reports the underlying model's vector size.
func (e *Embedder) Dimensions() int { return e.svc.Dimensions() }

// ModelName reports the underlying model's name.
func (e *Embedder) ModelName() string { return e.svc.ModelName() }

// EmbedAll embeds texts in input order. Output index i is the vector for
// texts[i].
func (e *Embedder) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	size := e.settings.EmbedBatchSize
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch starting at %d: %w", start, err)
		}
		vectors = append(vectors, batch...)

		logger.Debug("embedded %d/%d texts", end, len(texts))
	}

	return vectors, nil
}

// embedBatch runs one batch through the service with retries. Transient
// failures back off as BackoffBase * 2^attempt; a dimension or count
// mismatch is a configuration fault and is not retried.
func (e *Embedder) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt < e.settings.MaxRetries; attempt++ {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		vectors, err := e.svc.EmbedBatch(ctx, batch)
		if err == nil {
			if err := e.validate(batch, vectors); err != nil {
				return nil, err
			}
			return vectors, nil
		}
		lastErr = err

		if attempt+1 < e.settings.MaxRetries {
			delay := e.settings.BackoffBase * (1 << attempt)
			logger.Warn("embedding attempt %d/%d failed, retrying in %s: %v",
				attempt+1, e.settings.MaxRetries, delay, err)
			if err := e.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("%w: %d attempts exhausted: %v",
		domain.ErrEmbeddingUnavailable, e.settings.MaxRetries, lastErr)
}

func (e *Embedder) validate(batch []string, vectors [][]float32) error {
	if len(vectors) != len(batch) {
		return fmt.Errorf("%w: got %d vectors for %d texts",
			domain.ErrEmbeddingUnavailable, len(vectors), len(batch))
	}
	want := e.svc.Dimensions()
	for i, v := range vectors {
		if len(v) != want {
			return fmt.Errorf("%w: vector %d has %d dimensions, model %s declares %d",
				domain.ErrDimensionMismatch, i, len(v), e.svc.ModelName(), want)
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
