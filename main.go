package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/hogwarts-cloud/capturectl/config"
	"github.com/hogwarts-cloud/capturectl/internal/logging"
	"github.com/hogwarts-cloud/capturectl/internal/store"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	logLevel   string
	logFormat  string

	cfg    config.Config
	logger = slog.Default()
)

var root = &cobra.Command{
	Use:     "capturectl",
	Short:   "Manage traffic capture clusters",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if cmd.Flags().Changed("log-level") {
			loaded.Log.Level = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			loaded.Log.Format = logFormat
		}

		logger, err = logging.SetDefault(os.Stderr, cmd.Root().Name(), version, loaded.Log.Level, loaded.Log.Format)
		if err != nil {
			return fmt.Errorf("failed to configure logging: %w", err)
		}

		cfg = loaded

		return nil
	},
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	opts := make([]func(*awsconfig.LoadOptions) error, 0)
	if cfg.AWS.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.AWS.Profile))
	}
	if cfg.AWS.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWS.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return awsCfg, nil
}

// openStore returns the configured backend and a func releasing it.
func openStore(ctx context.Context) (store.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Backend {
	case config.BackendMemory:
		return store.NewMemory(), noop, nil
	case config.BackendBolt:
		b, err := store.NewBolt(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open bolt store: %w", err)
		}
		return b, b.Close, nil
	case config.BackendSSM:
		awsCfg, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, nil, err
		}
		return store.NewSSM(ssm.NewFromConfig(awsCfg)), noop, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Store.Backend)
	}
}

func init() {
	root.PersistentFlags().StringVar(&configPath, "config", ".", "Directory containing capturectl.yaml")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text, json")
	root.AddCommand(clusterCmd, clustersCmd, vpcCmd, configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := root.ExecuteContext(ctx)
	stop()

	if err != nil {
		os.Exit(1)
	}
}
