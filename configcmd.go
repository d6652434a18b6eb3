package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/hogwarts-cloud/capturectl/internal/archive"
	"github.com/hogwarts-cloud/capturectl/internal/clusters"
	"github.com/hogwarts-cloud/capturectl/internal/configstore"
	ecsprovider "github.com/hogwarts-cloud/capturectl/internal/ecs"
	"github.com/hogwarts-cloud/capturectl/internal/executor"
	"github.com/hogwarts-cloud/capturectl/internal/models"
	"github.com/hogwarts-cloud/capturectl/internal/rollout"
	"github.com/hogwarts-cloud/capturectl/internal/validator"
	"github.com/spf13/cobra"
)

var configFlags struct {
	cluster       string
	component     string
	archive       string
	bucket        string
	sourceVersion string
	forceBounce   bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration deployed to capture and viewer nodes",
}

var configUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Deploy a configuration archive and supervise the rollout",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		component, err := parseConfigFlags()
		if err != nil {
			return err
		}

		tmpDir, err := os.MkdirTemp("", "capturectl-")
		if err != nil {
			return fmt.Errorf("failed to create temp dir: %w", err)
		}
		defer os.RemoveAll(tmpDir)

		archivePath, err := archive.Resolve(configFlags.archive, tmpDir)
		if err != nil {
			return fmt.Errorf("failed to prepare archive: %w", err)
		}

		digest, err := configstore.Digest(archivePath)
		if err != nil {
			return fmt.Errorf("failed to digest archive: %w", err)
		}

		s, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		configs := configstore.New(configstore.Config{
			Store:     s,
			Cluster:   configFlags.cluster,
			Component: component,
			Logger:    logger,
		})

		sourceVersion := configFlags.sourceVersion
		if !cmd.Flags().Changed("source-version") {
			sourceVersion = resolveSourceVersion(cmd.Context(), executor.New(filepath.Dir(filepath.Clean(configFlags.archive))))
		}

		awsCfg, err := loadAWSConfig(cmd.Context())
		if err != nil {
			return err
		}

		target, changed, err := stageConfig(cmd.Context(), clusters.New(s), configs, configFlags.cluster, component, configFlags.bucket, digest, sourceVersion, time.Now())
		if err != nil {
			return err
		}

		if !changed && !configFlags.forceBounce {
			logger.Info("deployed config matches the archive, skipping", "component", component)
			return nil
		}

		controller := rollout.New(rollout.Config{
			Provider:     ecsprovider.New(ecs.NewFromConfig(awsCfg)),
			Reverter:     configs,
			PollInterval: cfg.Rollout.PollInterval,
			Logger:       logger,
		})

		result, err := controller.Run(cmd.Context(), target)
		if err != nil {
			return fmt.Errorf("rollout %s ended in %s: %w", result.RunID, result.State, err)
		}

		logger.Info("rollout finished", "run", result.RunID, "state", result.State, "polls", result.Polls)

		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the deployed configuration and the one before it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		component, err := parseConfigFlags()
		if err != nil {
			return err
		}

		s, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		current, err := configstore.New(configstore.Config{
			Store:     s,
			Cluster:   configFlags.cluster,
			Component: component,
			Logger:    logger,
		}).Current(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get config: %w", err)
		}

		return printYAML(cmd.OutOrStdout(), current)
	},
}

type sourceVersioner interface {
	SourceVersion(ctx context.Context) (string, error)
}

// resolveSourceVersion falls back to the binary's version outside a git
// checkout.
func resolveSourceVersion(ctx context.Context, v sourceVersioner) string {
	sourceVersion, err := v.SourceVersion(ctx)
	if err != nil {
		logger.Debug("unable to describe source version", "error", err)
		return version
	}

	return sourceVersion
}

func parseConfigFlags() (models.Component, error) {
	if err := validator.ValidateClusterName(configFlags.cluster); err != nil {
		return "", err
	}

	return models.ParseComponent(configFlags.component)
}

// commitConfig records a new config version when the archive differs from
// what is deployed and reports whether it did.
type serviceLoader interface {
	LoadServiceDetails(ctx context.Context, cluster string, component models.Component) (models.ServiceDetails, error)
}

// stageConfig looks up the service to bounce and only then commits the
// archive, so an unknown target leaves the deployed record untouched.
func stageConfig(ctx context.Context, services serviceLoader, configs *configstore.Store, cluster string, component models.Component, bucket, digest, sourceVersion string, now time.Time) (models.ServiceDetails, bool, error) {
	target, err := services.LoadServiceDetails(ctx, cluster, component)
	if err != nil {
		return models.ServiceDetails{}, false, err
	}

	changed, err := commitConfig(ctx, configs, bucket, digest, sourceVersion, now)
	if err != nil {
		return models.ServiceDetails{}, false, fmt.Errorf("failed to commit config: %w", err)
	}

	return target, changed, nil
}

func commitConfig(ctx context.Context, configs *configstore.Store, bucket, digest, sourceVersion string, now time.Time) (bool, error) {
	needed, err := configs.NeedsUpdate(ctx, digest)
	if err != nil {
		return false, err
	}
	if !needed {
		return false, nil
	}

	next, err := configs.NextRecord(ctx, bucket, digest, sourceVersion, now)
	if err != nil {
		return false, err
	}

	if err := configs.Commit(ctx, next); err != nil {
		return false, err
	}

	return true, nil
}

func init() {
	for _, cmd := range []*cobra.Command{configUpdateCmd, configListCmd} {
		cmd.Flags().StringVar(&configFlags.cluster, "cluster", "", "Cluster name")
		cmd.Flags().StringVar(&configFlags.component, "component", "", "capture or viewer")
		cmd.MarkFlagRequired("cluster")
		cmd.MarkFlagRequired("component")
	}

	configUpdateCmd.Flags().StringVar(&configFlags.archive, "archive", "", "Path to the config archive or a directory to pack")
	configUpdateCmd.Flags().StringVar(&configFlags.bucket, "bucket", "", "Bucket holding config archives")
	configUpdateCmd.Flags().StringVar(&configFlags.sourceVersion, "source-version", version, "Source version recorded with the config")
	configUpdateCmd.Flags().BoolVar(&configFlags.forceBounce, "force-bounce", false, "Redeploy even if the config is unchanged")
	configUpdateCmd.MarkFlagRequired("archive")
	configUpdateCmd.MarkFlagRequired("bucket")

	configCmd.AddCommand(configUpdateCmd, configListCmd)
}
