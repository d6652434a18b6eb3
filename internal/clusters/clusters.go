// Package clusters persists per-cluster state in the key/value store.
package clusters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hogwarts-cloud/capturectl/internal/models"
	"github.com/hogwarts-cloud/capturectl/internal/store"
	"github.com/hogwarts-cloud/capturectl/pkg/constants"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const MaxConcurrentRequests = 3

var (
	ErrClusterNotFound = errors.New("cluster not found")
	ErrVpcNotFound     = errors.New("vpc is not registered with cluster")
	ErrVpcExists       = errors.New("vpc is already registered with cluster")
)

type Summary struct {
	Name            string   `yaml:"name"`
	ExpectedTraffic float64  `yaml:"expectedTraffic"`
	CaptureNodes    string   `yaml:"captureNodes"`
	DataNodes       int      `yaml:"dataNodes"`
	Vpcs            []string `yaml:"vpcs"`
}

type Repository struct {
	store store.Store
}

func (r *Repository) Exists(ctx context.Context, cluster string) (bool, error) {
	_, err := r.store.Get(ctx, constants.ClusterKey(cluster))
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get cluster: %w", err)
	}

	return true, nil
}

func (r *Repository) LoadDetails(ctx context.Context, cluster string) (models.Details, error) {
	var details models.Details

	err := store.GetJSON(ctx, r.store, constants.ClusterKey(cluster), &details)
	if errors.Is(err, store.ErrNotFound) {
		return models.Details{}, fmt.Errorf("%w: %s", ErrClusterNotFound, cluster)
	}
	if err != nil {
		return models.Details{}, fmt.Errorf("failed to get cluster details: %w", err)
	}

	return details, nil
}

func (r *Repository) SaveDetails(ctx context.Context, cluster string, details models.Details) error {
	if err := store.PutJSON(ctx, r.store, constants.ClusterKey(cluster), details); err != nil {
		return fmt.Errorf("failed to put cluster details: %w", err)
	}

	return nil
}

func (r *Repository) LoadServiceDetails(ctx context.Context, cluster string, component models.Component) (models.ServiceDetails, error) {
	var details models.ServiceDetails

	err := store.GetJSON(ctx, r.store, constants.ServiceDetailsKey(cluster, component.String()), &details)
	if errors.Is(err, store.ErrNotFound) {
		return models.ServiceDetails{}, fmt.Errorf("%w: no %s service for %s", ErrClusterNotFound, component, cluster)
	}
	if err != nil {
		return models.ServiceDetails{}, fmt.Errorf("failed to get %s service details: %w", component, err)
	}

	return details, nil
}

func (r *Repository) SaveServiceDetails(ctx context.Context, cluster string, component models.Component, details models.ServiceDetails) error {
	if err := store.PutJSON(ctx, r.store, constants.ServiceDetailsKey(cluster, component.String()), details); err != nil {
		return fmt.Errorf("failed to put %s service details: %w", component, err)
	}

	return nil
}

func (r *Repository) LoadVpc(ctx context.Context, cluster, vpcID string) (models.VpcRecord, error) {
	var record models.VpcRecord

	err := store.GetJSON(ctx, r.store, constants.VpcKey(cluster, vpcID), &record)
	if errors.Is(err, store.ErrNotFound) {
		return models.VpcRecord{}, fmt.Errorf("%w: %s", ErrVpcNotFound, vpcID)
	}
	if err != nil {
		return models.VpcRecord{}, fmt.Errorf("failed to get vpc record: %w", err)
	}

	return record, nil
}

// AddVpc records a monitored network. An existing record is never replaced.
func (r *Repository) AddVpc(ctx context.Context, cluster string, record models.VpcRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal vpc record: %w", err)
	}

	err = r.store.Put(ctx, constants.VpcKey(cluster, record.VpcID), string(data), false)
	if errors.Is(err, store.ErrAlreadyExists) {
		return fmt.Errorf("%w: %s", ErrVpcExists, record.VpcID)
	}
	if err != nil {
		return fmt.Errorf("failed to put vpc record: %w", err)
	}

	return nil
}

func (r *Repository) DeleteVpc(ctx context.Context, cluster, vpcID string) error {
	err := r.store.Delete(ctx, constants.VpcKey(cluster, vpcID))
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrVpcNotFound, vpcID)
	}
	if err != nil {
		return fmt.Errorf("failed to delete vpc record: %w", err)
	}

	return nil
}

func (r *Repository) ListVpcs(ctx context.Context, cluster string) ([]models.VpcRecord, error) {
	kvs, err := r.store.List(ctx, constants.VpcsPrefix(cluster))
	if err != nil {
		return nil, fmt.Errorf("failed to list vpcs: %w", err)
	}

	records := make([]models.VpcRecord, 0, len(kvs))
	for _, kv := range kvs {
		var record models.VpcRecord
		if err := json.Unmarshal([]byte(kv.Value), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", kv.Key, err)
		}

		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].VpcID < records[j].VpcID })

	return records, nil
}

// Names returns every cluster with stored details.
func (r *Repository) Names(ctx context.Context) ([]string, error) {
	prefix := constants.ClustersPrefix + "/"

	kvs, err := r.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list clusters: %w", err)
	}

	names := lo.FilterMap(kvs, func(kv store.KV, _ int) (string, bool) {
		name := strings.TrimPrefix(kv.Key, prefix)
		return name, name != "" && !strings.Contains(name, "/")
	})

	names = lo.Uniq(names)
	sort.Strings(names)

	return names, nil
}

func (r *Repository) List(ctx context.Context) ([]Summary, error) {
	names, err := r.Names(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, len(names))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(MaxConcurrentRequests)

	for i, name := range names {
		i, name := i, name

		eg.Go(func() error {
			summary, err := r.summarize(ctx, name)
			if err != nil {
				return err
			}

			summaries[i] = summary
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return summaries, nil
}

func (r *Repository) summarize(ctx context.Context, cluster string) (Summary, error) {
	details, err := r.LoadDetails(ctx, cluster)
	if err != nil {
		return Summary{}, err
	}

	vpcs, err := r.ListVpcs(ctx, cluster)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Name:            cluster,
		ExpectedTraffic: details.UserConfig.ExpectedTraffic,
		CaptureNodes:    details.CapacityPlan.CaptureNodes.InstanceType,
		DataNodes:       details.CapacityPlan.OSDomain.DataNodes.Count,
		Vpcs: lo.Map(vpcs, func(record models.VpcRecord, _ int) string {
			return record.VpcID
		}),
	}, nil
}

func New(s store.Store) *Repository {
	return &Repository{store: s}
}
