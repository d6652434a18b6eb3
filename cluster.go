package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hogwarts-cloud/capturectl/internal/clusters"
	"github.com/hogwarts-cloud/capturectl/internal/models"
	"github.com/hogwarts-cloud/capturectl/internal/parser"
	"github.com/hogwarts-cloud/capturectl/internal/planner"
	"github.com/hogwarts-cloud/capturectl/internal/validator"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

var ErrCidrImmutable = errors.New("cidr cannot be changed after the cluster is created")

type planRequest struct {
	Cluster   string
	Overrides models.UserConfigOverrides
	Hints     planner.NetworkHints
}

var planFlags struct {
	name        string
	traffic     float64
	spiDays     int
	historyDays int
	replicas    int
	pcapDays    int
	captureCidr string
	viewerCidr  string
	azs         []string
	sizingFile  string
}

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Plan and record capture clusters",
}

var clusterPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the capacity plan for a cluster without saving it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		req, err := newPlanRequest(cmd.Flags())
		if err != nil {
			return err
		}

		s, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		details, err := planCluster(cmd.Context(), clusters.New(s), planner.New(planner.Config{Logger: logger}), req)
		if err != nil {
			return fmt.Errorf("failed to plan cluster: %w", err)
		}

		return printYAML(cmd.OutOrStdout(), details)
	},
}

var clusterCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Plan a cluster and save the plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		req, err := newPlanRequest(cmd.Flags())
		if err != nil {
			return err
		}

		s, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		repo := clusters.New(s)

		details, err := planCluster(cmd.Context(), repo, planner.New(planner.Config{Logger: logger}), req)
		if err != nil {
			return fmt.Errorf("failed to plan cluster: %w", err)
		}

		if err := repo.SaveDetails(cmd.Context(), req.Cluster, details); err != nil {
			return fmt.Errorf("failed to save cluster: %w", err)
		}

		logger.Info("saved cluster plan", "cluster", req.Cluster)

		return printYAML(cmd.OutOrStdout(), details)
	},
}

func newPlanRequest(flags *pflag.FlagSet) (planRequest, error) {
	if err := validator.ValidateClusterName(planFlags.name); err != nil {
		return planRequest{}, err
	}

	overrides := models.UserConfigOverrides{}
	if planFlags.sizingFile != "" {
		parsed, err := parser.Parse(planFlags.sizingFile)
		if err != nil {
			return planRequest{}, fmt.Errorf("failed to parse sizing file: %w", err)
		}
		overrides = parsed
	}

	if flags.Changed("expected-traffic") {
		overrides.ExpectedTraffic = lo.ToPtr(planFlags.traffic)
	}
	if flags.Changed("spi-days") {
		overrides.SpiDays = lo.ToPtr(planFlags.spiDays)
	}
	if flags.Changed("history-days") {
		overrides.HistoryDays = lo.ToPtr(planFlags.historyDays)
	}
	if flags.Changed("replicas") {
		overrides.Replicas = lo.ToPtr(planFlags.replicas)
	}
	if flags.Changed("pcap-days") {
		overrides.PcapDays = lo.ToPtr(planFlags.pcapDays)
	}

	if err := validator.ValidateUserConfig(overrides); err != nil {
		return planRequest{}, err
	}

	azs := planFlags.azs
	if len(azs) == 0 {
		azs = cfg.Network.AZs
	}
	if len(azs) == 0 && cfg.AWS.Region != "" {
		azs = []string{cfg.AWS.Region + "a", cfg.AWS.Region + "b"}
	}

	return planRequest{
		Cluster:   planFlags.name,
		Overrides: overrides,
		Hints: planner.NetworkHints{
			CaptureCidr:       planFlags.captureCidr,
			ViewerCidr:        planFlags.viewerCidr,
			AvailabilityZones: azs,
		},
	}, nil
}

// planCluster merges the request with whatever is stored for the cluster
// and computes a fresh plan. Nothing is written.
func planCluster(ctx context.Context, repo *clusters.Repository, p *planner.Planner, req planRequest) (models.Details, error) {
	var (
		previousConfig *models.UserConfig
		previousPlan   models.ClusterPlan
	)

	existing, err := repo.LoadDetails(ctx, req.Cluster)
	switch {
	case errors.Is(err, clusters.ErrClusterNotFound):
	case err != nil:
		return models.Details{}, err
	default:
		if req.Hints.CaptureCidr != "" && existing.CapacityPlan.CaptureVpc.IsComplete() {
			return models.Details{}, fmt.Errorf("%w: capture vpc", ErrCidrImmutable)
		}
		if req.Hints.ViewerCidr != "" && existing.CapacityPlan.ViewerVpc.IsComplete() {
			return models.Details{}, fmt.Errorf("%w: viewer vpc", ErrCidrImmutable)
		}

		previousConfig = &existing.UserConfig
		previousPlan = existing.CapacityPlan
	}

	userConfig := planner.ResolveUserConfig(req.Overrides, previousConfig)

	plan, err := p.Plan(userConfig, previousPlan, req.Hints)
	if err != nil {
		return models.Details{}, err
	}

	return models.Details{UserConfig: userConfig, CapacityPlan: plan}, nil
}

func printYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	return encoder.Close()
}

func init() {
	for _, cmd := range []*cobra.Command{clusterPlanCmd, clusterCreateCmd} {
		flags := cmd.Flags()
		flags.StringVar(&planFlags.name, "name", "", "Cluster name")
		flags.Float64Var(&planFlags.traffic, "expected-traffic", 0, "Expected mirrored traffic in Gbps")
		flags.IntVar(&planFlags.spiDays, "spi-days", 0, "Days to retain session metadata")
		flags.IntVar(&planFlags.historyDays, "history-days", 0, "Days to retain viewer history")
		flags.IntVar(&planFlags.replicas, "replicas", 0, "Replica count for session metadata")
		flags.IntVar(&planFlags.pcapDays, "pcap-days", 0, "Days to retain packet captures")
		flags.StringVar(&planFlags.captureCidr, "capture-cidr", "", "CIDR of the capture vpc")
		flags.StringVar(&planFlags.viewerCidr, "viewer-cidr", "", "CIDR of a separate viewer vpc")
		flags.StringSliceVar(&planFlags.azs, "azs", nil, "Availability zones to place the vpcs in")
		flags.StringVar(&planFlags.sizingFile, "sizing-file", "", "YAML file with sizing overrides")
		cmd.MarkFlagRequired("name")
	}

	clusterCmd.AddCommand(clusterPlanCmd, clusterCreateCmd)
}
