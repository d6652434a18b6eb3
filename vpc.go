package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/hogwarts-cloud/capturectl/internal/clusters"
	"github.com/hogwarts-cloud/capturectl/internal/models"
	"github.com/hogwarts-cloud/capturectl/internal/validator"
	"github.com/hogwarts-cloud/capturectl/internal/vni"
	"github.com/spf13/cobra"
)

var vpcFlags struct {
	cluster string
	vpcID   string
	vni     int
}

var vpcCmd = &cobra.Command{
	Use:   "vpc",
	Short: "Attach and detach monitored vpcs",
}

var vpcAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Start monitoring a vpc and assign it a vni",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		if err := validateVpcFlags(); err != nil {
			return err
		}

		s, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		var explicit *int
		if cmd.Flags().Changed("vni") {
			explicit = &vpcFlags.vni
		}

		allocator := vni.New(vni.Config{Store: s, Cluster: vpcFlags.cluster, Logger: logger})

		record, err := addVpc(cmd.Context(), clusters.New(s), allocator, vpcFlags.cluster, vpcFlags.vpcID, explicit)
		if err != nil {
			return fmt.Errorf("failed to add vpc: %w", err)
		}

		logger.Info("added vpc", "cluster", vpcFlags.cluster, "vpc", record.VpcID, "vni", record.Vni)

		return printYAML(cmd.OutOrStdout(), record)
	},
}

var vpcRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Stop monitoring a vpc and release its vni",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		if err := validateVpcFlags(); err != nil {
			return err
		}

		s, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		allocator := vni.New(vni.Config{Store: s, Cluster: vpcFlags.cluster, Logger: logger})

		record, err := removeVpc(cmd.Context(), clusters.New(s), allocator, vpcFlags.cluster, vpcFlags.vpcID)
		if err != nil {
			return fmt.Errorf("failed to remove vpc: %w", err)
		}

		logger.Info("removed vpc", "cluster", vpcFlags.cluster, "vpc", record.VpcID, "vni", record.Vni)

		return nil
	},
}

func validateVpcFlags() error {
	if err := validator.ValidateClusterName(vpcFlags.cluster); err != nil {
		return err
	}

	return validator.ValidateVpcID(vpcFlags.vpcID)
}

// addVpc claims a vni for the vpc and records it. An automatically chosen
// vni is only committed once the record is written, and the record is
// removed again if the commit fails.
func addVpc(ctx context.Context, repo *clusters.Repository, allocator *vni.Allocator, cluster, vpcID string, explicit *int) (models.VpcRecord, error) {
	exists, err := repo.Exists(ctx, cluster)
	if err != nil {
		return models.VpcRecord{}, err
	}
	if !exists {
		return models.VpcRecord{}, fmt.Errorf("%w: %s", clusters.ErrClusterNotFound, cluster)
	}

	_, err = repo.LoadVpc(ctx, cluster, vpcID)
	if err == nil {
		return models.VpcRecord{}, fmt.Errorf("%w: %s", clusters.ErrVpcExists, vpcID)
	}
	if !errors.Is(err, clusters.ErrVpcNotFound) {
		return models.VpcRecord{}, err
	}

	if explicit != nil {
		if err := allocator.RegisterExplicit(ctx, *explicit); err != nil {
			return models.VpcRecord{}, err
		}

		record := models.VpcRecord{VpcID: vpcID, Vni: *explicit, UserSpecified: true}
		if err := repo.AddVpc(ctx, cluster, record); err != nil {
			if relErr := allocator.Relinquish(ctx, *explicit); relErr != nil {
				logger.Error("failed to release vni", "vni", *explicit, "error", relErr)
			}
			return models.VpcRecord{}, err
		}

		return record, nil
	}

	id, err := allocator.Propose(ctx)
	if err != nil {
		return models.VpcRecord{}, err
	}

	record := models.VpcRecord{VpcID: vpcID, Vni: id}
	if err := repo.AddVpc(ctx, cluster, record); err != nil {
		return models.VpcRecord{}, err
	}

	if err := allocator.Commit(ctx, id); err != nil {
		if delErr := repo.DeleteVpc(ctx, cluster, vpcID); delErr != nil {
			logger.Error("failed to remove vpc record", "vpc", vpcID, "vni", id, "error", delErr)
		}
		return models.VpcRecord{}, err
	}

	return record, nil
}

// removeVpc deletes the record before releasing its vni so a failure can
// only leak the vni, never hand it out twice.
func removeVpc(ctx context.Context, repo *clusters.Repository, allocator *vni.Allocator, cluster, vpcID string) (models.VpcRecord, error) {
	record, err := repo.LoadVpc(ctx, cluster, vpcID)
	if err != nil {
		return models.VpcRecord{}, err
	}

	if err := repo.DeleteVpc(ctx, cluster, vpcID); err != nil {
		return models.VpcRecord{}, err
	}

	if err := allocator.Relinquish(ctx, record.Vni); err != nil {
		return models.VpcRecord{}, err
	}

	return record, nil
}

func init() {
	for _, cmd := range []*cobra.Command{vpcAddCmd, vpcRemoveCmd} {
		cmd.Flags().StringVar(&vpcFlags.cluster, "cluster", "", "Cluster name")
		cmd.Flags().StringVar(&vpcFlags.vpcID, "vpc-id", "", "Id of the vpc to monitor")
		cmd.MarkFlagRequired("cluster")
		cmd.MarkFlagRequired("vpc-id")
	}
	vpcAddCmd.Flags().IntVar(&vpcFlags.vni, "vni", 0, "Use this vni instead of an automatically assigned one")

	vpcCmd.AddCommand(vpcAddCmd, vpcRemoveCmd)
}
