package fal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scaler/internal/domain"
)

// PollOptions tunes the submit-then-poll loop. Zero values fall back to the
// provider defaults (2s interval, 60 attempts).
type PollOptions struct {
	Interval    time.Duration
	MaxAttempts int
	OnStatus    func(domain.QueueStatus)
}

func (o PollOptions) withDefaults() PollOptions {
	if o.Interval <= 0 {
		o.Interval = 2 * time.Second
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 60
	}
	return o
}

// GenerateAndPoll drives one queued generation job from submission to its
// terminal result: submit once, then query status on a fixed interval until
// the job completes or fails, then fetch the full result payload. The loop
// keeps at most one status query in flight and never polls faster than the
// interval. The attempt bound is deliberate: an unbounded loop would leak
// when a provider job stalls without ever reaching a terminal state.
func (c *Client) GenerateAndPoll(ctx context.Context, req domain.GenerationRequest, opts PollOptions) (*domain.GenerationResult, error) {
	opts = opts.withDefaults()

	requestID, err := c.SubmitJob(ctx, req)
	if err != nil {
		return nil, err
	}

	var last domain.QueuePhase
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.Interval):
		}

		status, err := c.JobStatus(ctx, requestID)
		if err != nil {
			var genErr *domain.GenerationError
			if errors.As(err, &genErr) {
				if status != nil && opts.OnStatus != nil && status.Phase != last {
					opts.OnStatus(*status)
				}
				return nil, err
			}
			return nil, err
		}
		if status.Phase != last {
			last = status.Phase
			if opts.OnStatus != nil {
				opts.OnStatus(*status)
			}
		}
		if status.Phase == domain.PhaseCompleted {
			return c.JobResult(ctx, requestID)
		}
	}

	return nil, fmt.Errorf("fal: %w after %d attempts", domain.ErrPollTimeout, opts.MaxAttempts)
}
