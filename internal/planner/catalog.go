package planner

import (
	"math"

	"github.com/hogwarts-cloud/capturectl/internal/models"
)

// The catalogs are scanned in order and the first match wins, so entries
// must stay sorted by the capacity they are matched against.
var (
	CaptureFlavors = []models.CaptureFlavor{
		{InstanceType: "t3.medium", TrafficPerInstance: 0.25, MaxTraffic: 0.5, MinNodes: 1, CPU: 1536, Memory: 3072},
		{InstanceType: "m5.xlarge", TrafficPerInstance: 2.0, MaxTraffic: MaxTraffic, MinNodes: 1, CPU: 3584, Memory: 15360},
	}

	DataNodeFlavors = []models.DataNodeFlavor{
		{InstanceType: "t3.small.search", VolumeSizeGiB: 100, MaxNodes: 10},
		{InstanceType: "r6g.large.search", VolumeSizeGiB: 1024, MaxNodes: 80},
		{InstanceType: "r6g.4xlarge.search", VolumeSizeGiB: 6 * 1024, MaxNodes: 80},
		{InstanceType: "r6g.12xlarge.search", VolumeSizeGiB: 12 * 1024, MaxNodes: 80},
	}

	MasterNodeFlavors = []models.MasterNodeFlavor{
		{InstanceType: "m6g.large.search", IsArm: true, MaxShards: 10000, MaxDataNodes: 10},
		{InstanceType: "c6g.2xlarge.search", IsArm: true, MaxShards: 30000, MaxDataNodes: 30},
		{InstanceType: "r6g.2xlarge.search", IsArm: true, MaxShards: 75000, MaxDataNodes: 125},
		{InstanceType: "r6g.4xlarge.search", IsArm: true, MaxShards: math.MaxInt, MaxDataNodes: math.MaxInt},
		{InstanceType: "m5.large.search", IsArm: false, MaxShards: 10000, MaxDataNodes: 10},
		{InstanceType: "c5.2xlarge.search", IsArm: false, MaxShards: 30000, MaxDataNodes: 30},
		{InstanceType: "r5.2xlarge.search", IsArm: false, MaxShards: 75000, MaxDataNodes: 125},
		{InstanceType: "r5.4xlarge.search", IsArm: false, MaxShards: math.MaxInt, MaxDataNodes: math.MaxInt},
	}
)

// nonArmDataFamily is the only data node family without an ARM processor.
const nonArmDataFamily = "t3."
