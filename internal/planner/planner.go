package planner

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/hogwarts-cloud/capturectl/internal/models"
	"github.com/hogwarts-cloud/capturectl/internal/network"
	"github.com/hogwarts-cloud/capturectl/pkg/utils"
	"github.com/samber/lo"
)

const (
	MinTraffic      = 0.01 // Gbps
	MaxTraffic      = 100  // Gbps, limit of a single capture network endpoint
	BufferFactor    = 1.25
	SecondsPerDay   = 24 * 60 * 60
	ShardSizeGiB    = 50
	MasterNodeCount = 3
	MinDataNodes    = 2

	// OverheadFactor converts raw packet volume into search domain storage. It
	// folds in the metadata ratio, index overhead, OS reserved space and
	// service overhead.
	OverheadFactor = 0.03

	DefaultSpiDays        = 30
	DefaultHistoryDays    = 365
	DefaultReplicas       = 1
	DefaultPcapDays       = 30
	DefaultS3StorageClass = "STANDARD"
)

var (
	ErrTrafficTooHigh      = errors.New("expected traffic exceeds the limit of a single cluster")
	ErrUnknownInstanceType = errors.New("unknown instance type")
	ErrPlanDoesNotFit      = errors.New("capacity plan does not fit in the capture vpc")
)

type Config struct {
	CaptureFlavors    []models.CaptureFlavor
	DataNodeFlavors   []models.DataNodeFlavor
	MasterNodeFlavors []models.MasterNodeFlavor
	Logger            *slog.Logger
}

// Planner turns sizing intent into a ClusterPlan. It holds no mutable state
// and is safe for concurrent use.
type Planner struct {
	captureFlavors    []models.CaptureFlavor
	dataNodeFlavors   []models.DataNodeFlavor
	masterNodeFlavors []models.MasterNodeFlavor
	logger            *slog.Logger
}

func (p *Planner) Plan(cfg models.UserConfig, previous models.ClusterPlan, hints NetworkHints) (models.ClusterPlan, error) {
	captureNodes, err := p.CaptureNodes(cfg.ExpectedTraffic)
	if err != nil {
		return models.ClusterPlan{}, fmt.Errorf("failed to plan capture nodes: %w", err)
	}

	captureVpc, err := CaptureVpc(previous.CaptureVpc, hints)
	if err != nil {
		return models.ClusterPlan{}, fmt.Errorf("failed to plan capture vpc: %w", err)
	}

	osDomain, err := p.OSDomain(cfg.ExpectedTraffic, cfg.SpiDays, cfg.Replicas, len(captureVpc.AZs))
	if err != nil {
		return models.ClusterPlan{}, fmt.Errorf("failed to plan os domain: %w", err)
	}

	ecsResources, err := p.EcsResources(captureNodes.InstanceType)
	if err != nil {
		return models.ClusterPlan{}, fmt.Errorf("failed to plan ecs resources: %w", err)
	}

	viewerVpc, err := ViewerVpc(previous.ViewerVpc, hints)
	if err != nil {
		return models.ClusterPlan{}, fmt.Errorf("failed to plan viewer vpc: %w", err)
	}

	plan := models.ClusterPlan{
		CaptureNodes: captureNodes,
		CaptureVpc:   captureVpc,
		EcsResources: ecsResources,
		OSDomain:     osDomain,
		S3: models.S3Plan{
			StorageClass:  DefaultS3StorageClass,
			RetentionDays: cfg.PcapDays,
		},
		ViewerNodes: ViewerNodes(cfg.ExpectedTraffic),
		ViewerVpc:   viewerVpc,
	}

	if err := network.CheckOverlap(plan.CaptureVpc, plan.ViewerVpc); err != nil {
		return models.ClusterPlan{}, err
	}

	if err := CheckFit(plan); err != nil {
		return models.ClusterPlan{}, err
	}

	p.logger.Debug("computed capacity plan",
		"captureType", plan.CaptureNodes.InstanceType,
		"captureMax", plan.CaptureNodes.MaxCount,
		"dataType", plan.OSDomain.DataNodes.InstanceType,
		"dataCount", plan.OSDomain.DataNodes.Count,
		"masterType", plan.OSDomain.MasterNodes.InstanceType,
	)

	return plan, nil
}

func (p *Planner) CaptureNodes(expectedTraffic float64) (models.CaptureNodesPlan, error) {
	if expectedTraffic > MaxTraffic {
		return models.CaptureNodesPlan{}, fmt.Errorf("%w: %g Gbps > %d Gbps", ErrTrafficTooHigh, expectedTraffic, MaxTraffic)
	}

	traffic := math.Max(expectedTraffic, MinTraffic)

	flavor, ok := lo.Find(p.captureFlavors, func(f models.CaptureFlavor) bool {
		return f.MaxTraffic >= traffic
	})
	if !ok {
		return models.CaptureNodesPlan{}, fmt.Errorf("%w: %g Gbps > largest capture flavor", ErrTrafficTooHigh, traffic)
	}

	desired := max(flavor.MinNodes, utils.CeilDiv(traffic, flavor.TrafficPerInstance))

	return models.CaptureNodesPlan{
		InstanceType: flavor.InstanceType,
		DesiredCount: desired,
		MaxCount:     int(math.Ceil(float64(desired) * BufferFactor)),
		MinCount:     flavor.MinNodes,
	}, nil
}

func (p *Planner) EcsResources(instanceType string) (models.EcsSysResourcePlan, error) {
	flavor, ok := lo.Find(p.captureFlavors, func(f models.CaptureFlavor) bool {
		return f.InstanceType == instanceType
	})
	if !ok {
		return models.EcsSysResourcePlan{}, fmt.Errorf("%w: %s", ErrUnknownInstanceType, instanceType)
	}

	return models.EcsSysResourcePlan{CPU: flavor.CPU, Memory: flavor.Memory}, nil
}

// ViewerNodes is a step function: the smallest tier only serves the
// minimum traffic floor.
func ViewerNodes(expectedTraffic float64) models.ViewerNodesPlan {
	if expectedTraffic <= MinTraffic {
		return models.ViewerNodesPlan{MaxCount: 2, MinCount: 1}
	}

	return models.ViewerNodesPlan{MaxCount: 4, MinCount: 2}
}

func (p *Planner) OSDomain(expectedTraffic float64, spiDays, replicas, numAZs int) (models.OSDomainPlan, error) {
	perReplica := StoragePerReplica(expectedTraffic, spiDays)
	total := perReplica * float64(1+replicas)

	dataNodes := p.dataNodes(total, numAZs)

	masterNodes, err := p.masterNodes(perReplica, dataNodes)
	if err != nil {
		return models.OSDomainPlan{}, err
	}

	return models.OSDomainPlan{DataNodes: dataNodes, MasterNodes: masterNodes}, nil
}

// StoragePerReplica is the search domain storage needed for one copy of the
// session metadata, in GiB.
func StoragePerReplica(expectedTraffic float64, spiDays int) float64 {
	return float64(spiDays*SecondsPerDay) * expectedTraffic / 8 * OverheadFactor
}

func (p *Planner) dataNodes(totalStorage float64, numAZs int) models.DataNodesPlan {
	flavor, ok := lo.Find(p.dataNodeFlavors, func(f models.DataNodeFlavor) bool {
		return float64(f.Capacity()) >= totalStorage
	})
	if !ok {
		// Past the catalog the node limit has to be raised out of band; keep
		// adding the largest type.
		flavor = p.dataNodeFlavors[len(p.dataNodeFlavors)-1]
	}

	count := max(utils.CeilDiv(totalStorage, float64(flavor.VolumeSizeGiB)), MinDataNodes)
	if numAZs == 2 {
		count = utils.RoundUpEven(count)
	}

	return models.DataNodesPlan{
		Count:         count,
		InstanceType:  flavor.InstanceType,
		VolumeSizeGiB: flavor.VolumeSizeGiB,
	}
}

func (p *Planner) masterNodes(storagePerReplica float64, dataNodes models.DataNodesPlan) (models.MasterNodesPlan, error) {
	shards := utils.CeilDiv(storagePerReplica, ShardSizeGiB)
	isArm := !strings.HasPrefix(dataNodes.InstanceType, nonArmDataFamily)

	flavor, ok := lo.Find(p.masterNodeFlavors, func(f models.MasterNodeFlavor) bool {
		return f.IsArm == isArm && shards <= f.MaxShards && dataNodes.Count <= f.MaxDataNodes
	})
	if !ok {
		return models.MasterNodesPlan{}, fmt.Errorf("%w: no master node for %d shards and %d data nodes",
			ErrUnknownInstanceType, shards, dataNodes.Count)
	}

	return models.MasterNodesPlan{Count: MasterNodeCount, InstanceType: flavor.InstanceType}, nil
}

// RequiredCaptureIPs counts the addresses the plan consumes inside the
// capture network. Viewer nodes only count when they share it.
func RequiredCaptureIPs(plan models.ClusterPlan) int {
	required := plan.CaptureNodes.MaxCount + plan.OSDomain.DataNodes.Count + plan.OSDomain.MasterNodes.Count
	if plan.ViewerVpc == nil {
		required += plan.ViewerNodes.MaxCount
	}

	return required
}

func CheckFit(plan models.ClusterPlan) error {
	usable := network.UsableIPs(plan.CaptureVpc)
	required := RequiredCaptureIPs(plan)

	if usable < required {
		return fmt.Errorf("%w: %d usable ips, %d required", ErrPlanDoesNotFit, usable, required)
	}

	return nil
}

func New(cfg Config) *Planner {
	p := &Planner{
		captureFlavors:    cfg.CaptureFlavors,
		dataNodeFlavors:   cfg.DataNodeFlavors,
		masterNodeFlavors: cfg.MasterNodeFlavors,
		logger:            cfg.Logger,
	}

	if len(p.captureFlavors) == 0 {
		p.captureFlavors = CaptureFlavors
	}
	if len(p.dataNodeFlavors) == 0 {
		p.dataNodeFlavors = DataNodeFlavors
	}
	if len(p.masterNodeFlavors) == 0 {
		p.masterNodeFlavors = MasterNodeFlavors
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}
