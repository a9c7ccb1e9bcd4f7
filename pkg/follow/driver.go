package follow

import (
	"context"
	"errors"
	"time"

	"bilifollow/pkg/bilibili"
	"bilifollow/pkg/checkpoint"
	"bilifollow/pkg/config"
	apierr "bilifollow/pkg/errors"
	"bilifollow/pkg/logger"
	"bilifollow/pkg/retry"
)

// Client is the slice of the Bilibili API the driver needs
type Client interface {
	Relation(ctx context.Context, fid int64) (*bilibili.RelationData, error)
	Follow(ctx context.Context, fid int64) error
}

// Outcome is the per-target result of one driver pass
type Outcome string

const (
	// OutcomeAlreadyFollowing means the target was already followed,
	// found either by the pre-check or by the follow call's 22014 code
	OutcomeAlreadyFollowing Outcome = "already_following"
	// OutcomeFollowed means the follow call succeeded
	OutcomeFollowed Outcome = "followed"
	// OutcomeNotFound means the target does not exist (-404)
	OutcomeNotFound Outcome = "not_found"
	// OutcomeExhausted means every attempt failed transiently
	OutcomeExhausted Outcome = "exhausted"
)

// Success reports whether the outcome counts toward successful_follows
func (o Outcome) Success() bool {
	return o == OutcomeAlreadyFollowing || o == OutcomeFollowed
}

// Report accumulates the run counters. Each target increments exactly
// one of the two counters, exactly once.
type Report struct {
	Successful int
	Failed     int
}

// Driver processes an ordered list of follow targets sequentially:
// a relation pre-check, then a bounded retry loop around the follow
// call, with fixed pacing pauses throughout. There is no early abort;
// the full input is always processed.
type Driver struct {
	client      Client
	pacing      config.PacingConfig
	logger      logger.Logger
	checkpoints *checkpoint.Manager
	sleep       func(ctx context.Context, d time.Duration) error
}

// New creates a follow driver with the given pacing policy
func New(client Client, pacing config.PacingConfig, log logger.Logger) *Driver {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Driver{
		client: client,
		pacing: pacing,
		logger: log,
		sleep:  retry.Wait,
	}
}

// SetCheckpoints enables resume support via the given manager
func (d *Driver) SetCheckpoints(mgr *checkpoint.Manager) {
	d.checkpoints = mgr
}

// SetSleep replaces the pause implementation, used by tests
func (d *Driver) SetSleep(sleep func(ctx context.Context, d time.Duration) error) {
	d.sleep = sleep
}

// Run processes every target in order and returns the final counters.
// A non-nil error only means the run was cut short (context cancelled);
// the report still covers everything processed up to that point.
func (d *Driver) Run(ctx context.Context, targets []bilibili.Following) (*Report, error) {
	report := &Report{}

	// prior holds the processed set as loaded from disk. Only mids from
	// an earlier interrupted run are skipped; duplicates within the
	// current input go through the state machine once per occurrence.
	var cp, prior *checkpoint.Checkpoint
	if d.checkpoints != nil {
		var err error
		cp, err = d.checkpoints.Load()
		if err != nil {
			d.logger.WithError(err).Warn("failed to load checkpoint, starting fresh")
		}
		if cp == nil {
			cp = &checkpoint.Checkpoint{Processed: make(map[string]string)}
		} else {
			report.Successful = cp.Successful
			report.Failed = cp.Failed
			prior = &checkpoint.Checkpoint{Processed: make(map[string]string, len(cp.Processed))}
			for mid, outcome := range cp.Processed {
				prior.Processed[mid] = outcome
			}
		}
	}

	for _, target := range targets {
		if prior.IsProcessed(target.Mid) {
			d.logger.DebugWithFields("target processed in a previous run, skipping", map[string]interface{}{
				"mid": target.Mid,
			})
			continue
		}

		outcome, pause := d.processTarget(ctx, target.Mid)
		if outcome.Success() {
			report.Successful++
		} else {
			report.Failed++
		}

		d.logger.InfoWithFields("target processed", map[string]interface{}{
			"mid":     target.Mid,
			"outcome": string(outcome),
		})

		if d.checkpoints != nil {
			cp.MarkProcessed(target.Mid, string(outcome))
			cp.Successful = report.Successful
			cp.Failed = report.Failed
			if err := d.checkpoints.Save(cp); err != nil {
				d.logger.WithError(err).Warn("failed to save checkpoint")
			}
		}

		if err := d.sleep(ctx, pause); err != nil {
			return report, err
		}
	}

	// A completed run leaves no state to resume from
	if d.checkpoints != nil {
		if err := d.checkpoints.Delete(); err != nil {
			d.logger.WithError(err).Warn("failed to delete checkpoint")
		}
	}

	return report, nil
}

// processTarget runs the per-target state machine and returns the
// outcome plus the pause to observe before the next target. Targets
// settled by the pre-check get the short skip pause; targets that went
// through the follow call get the full inter-target pause, including
// after exhausted retries, so failure bursts stay paced too.
func (d *Driver) processTarget(ctx context.Context, mid int64) (Outcome, time.Duration) {
	rel, err := d.client.Relation(ctx, mid)
	switch {
	case err == nil:
		if rel.Attribute.IsFollowing() {
			d.logger.DebugWithFields("already following, skipping", map[string]interface{}{
				"mid": mid,
			})
			return OutcomeAlreadyFollowing, d.pacing.SkipInterval
		}
	case apierr.IsNotFound(err):
		d.logger.WarnWithFields("target does not exist", map[string]interface{}{
			"mid": mid,
		})
		return OutcomeNotFound, d.pacing.SkipInterval
	default:
		// Unknown relation state, attempt the follow anyway
		d.logger.WarnWithFields("relation check failed", map[string]interface{}{
			"mid":   mid,
			"error": err.Error(),
		})
	}

	err = retry.Do(func() error {
		return d.client.Follow(ctx, mid)
	}, &retry.Config{
		MaxAttempts: d.pacing.MaxRetries + 1,
		Backoff:     &retry.ConstantBackoff{Delay: d.pacing.RetryInterval},
		RetryIf:     followRetryIf,
		Context:     ctx,
		Sleep:       d.sleep,
		Logger:      d.logger,
	})

	switch {
	case err == nil:
		return OutcomeFollowed, d.pacing.FollowInterval
	case apierr.IsAlreadyFollowing(err):
		return OutcomeAlreadyFollowing, d.pacing.FollowInterval
	case apierr.IsNotFound(err):
		return OutcomeNotFound, d.pacing.FollowInterval
	default:
		return OutcomeExhausted, d.pacing.FollowInterval
	}
}

// followRetryIf keeps the two terminal API codes out of the retry
// loop: 22014 is a success in disguise and -404 can never recover.
// Everything else is treated as transient.
func followRetryIf(err error) bool {
	if err == nil {
		return false
	}
	if apierr.IsAlreadyFollowing(err) || apierr.IsNotFound(err) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
