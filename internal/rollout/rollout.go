// Package rollout pushes a configuration change to a running service by
// forcing a rolling redeploy, then supervises it until the deployment
// settles. The first failed task triggers a single revert of the stored
// configuration pointer.
package rollout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hogwarts-cloud/capturectl/internal/configstore"
	"github.com/hogwarts-cloud/capturectl/internal/models"
)

const DefaultPollInterval = 15 * time.Second

type State string

const (
	StateInitiated  State = "INITIATED"
	StateMonitoring State = "MONITORING"
	StateStable     State = "STABLE"
	StateRolledBack State = "ROLLED_BACK"
	StateFatal      State = "FATAL"
	StateCancelled  State = "CANCELLED"
)

// Failed reports whether the run ended in a state operators must act on.
func (s State) Failed() bool {
	return s == StateFatal
}

type DeploymentProvider interface {
	ForceRedeploy(ctx context.Context, cluster, service string) error
	IsInProgress(ctx context.Context, cluster, service string) (bool, error)
	FailedTaskCount(ctx context.Context, cluster, service string) (int, error)
}

type Reverter interface {
	Revert(ctx context.Context) error
}

// WaitFunc blocks for d or until ctx is done, returning ctx.Err() in the
// latter case.
type WaitFunc func(ctx context.Context, d time.Duration) error

type Config struct {
	Provider     DeploymentProvider
	Reverter     Reverter
	PollInterval time.Duration
	Wait         WaitFunc
	Logger       *slog.Logger
}

type Result struct {
	RunID    string
	State    State
	Reverted bool
	Polls    int
}

type Controller struct {
	provider     DeploymentProvider
	reverter     Reverter
	pollInterval time.Duration
	wait         WaitFunc
	logger       *slog.Logger
}

// Run supervises one rollout of target. Only the wait between polls observes
// ctx cancellation; status queries and reverts always run to completion.
func (c *Controller) Run(ctx context.Context, target models.ServiceDetails) (Result, error) {
	result := Result{RunID: uuid.NewString(), State: StateInitiated}
	logger := c.logger.With(
		"run", result.RunID,
		"ecsCluster", target.EcsCluster,
		"ecsService", target.EcsService,
	)

	queryCtx := context.WithoutCancel(ctx)

	logger.Info("forcing redeploy")
	if err := c.provider.ForceRedeploy(queryCtx, target.EcsCluster, target.EcsService); err != nil {
		return result, fmt.Errorf("failed to force redeploy: %w", err)
	}

	result.State = StateMonitoring

	for {
		inProgress, err := c.provider.IsInProgress(queryCtx, target.EcsCluster, target.EcsService)
		if err != nil {
			return result, fmt.Errorf("failed to get deployment status: %w", err)
		}

		if !inProgress {
			break
		}

		result.Polls++

		failed, err := c.provider.FailedTaskCount(queryCtx, target.EcsCluster, target.EcsService)
		if err != nil {
			return result, fmt.Errorf("failed to get failed task count: %w", err)
		}

		if failed > 0 && !result.Reverted {
			logger.Warn("tasks failing, rolling back to previous config", "failedTasks", failed)

			if err := c.reverter.Revert(queryCtx); err != nil {
				result.State = StateFatal
				if errors.Is(err, configstore.ErrNoPreviousConfig) {
					logger.Error("unable to roll back, manual action required")
				}
				return result, fmt.Errorf("failed to revert config: %w", err)
			}

			result.Reverted = true
		}

		logger.Debug("waiting for deployment", "interval", c.pollInterval)

		if err := c.wait(ctx, c.pollInterval); err != nil {
			logger.Info("rollout cancelled")

			if !result.Reverted {
				if err := c.reverter.Revert(queryCtx); err != nil {
					logger.Error("failed to roll back after cancellation", "error", err)
				} else {
					result.Reverted = true
				}
			}

			result.State = StateCancelled
			return result, nil
		}
	}

	if result.Reverted {
		result.State = StateRolledBack
		logger.Warn("service did not stabilize with the new config, config was reverted")
	} else {
		result.State = StateStable
		logger.Info("service redeployed successfully")
	}

	return result, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func New(cfg Config) *Controller {
	c := &Controller{
		provider:     cfg.Provider,
		reverter:     cfg.Reverter,
		pollInterval: cfg.PollInterval,
		wait:         cfg.Wait,
		logger:       cfg.Logger,
	}

	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.wait == nil {
		c.wait = sleep
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}
