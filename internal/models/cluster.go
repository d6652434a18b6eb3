package models

// ClusterPlan is the full infrastructure shape of a capture cluster. It is
// versioned and stored as a whole.
type ClusterPlan struct {
	CaptureNodes CaptureNodesPlan   `json:"captureNodes" yaml:"captureNodes"`
	CaptureVpc   *VpcPlan           `json:"captureVpc" yaml:"captureVpc"`
	EcsResources EcsSysResourcePlan `json:"ecsResources" yaml:"ecsResources"`
	OSDomain     OSDomainPlan       `json:"osDomain" yaml:"osDomain"`
	S3           S3Plan             `json:"s3" yaml:"s3"`
	ViewerNodes  ViewerNodesPlan    `json:"viewerNodes" yaml:"viewerNodes"`
	ViewerVpc    *VpcPlan           `json:"viewerVpc" yaml:"viewerVpc"`
}

type CaptureNodesPlan struct {
	InstanceType string `json:"instanceType" yaml:"instanceType"`
	DesiredCount int    `json:"desiredCount" yaml:"desiredCount"`
	MaxCount     int    `json:"maxCount" yaml:"maxCount"`
	MinCount     int    `json:"minCount" yaml:"minCount"`
}

type ViewerNodesPlan struct {
	MaxCount int `json:"maxCount" yaml:"maxCount"`
	MinCount int `json:"minCount" yaml:"minCount"`
}

// EcsSysResourcePlan mirrors the capacity of the chosen capture instance.
// CPU is in ECS units (1024 per vCPU), memory in MiB.
type EcsSysResourcePlan struct {
	CPU    int `json:"cpu" yaml:"cpu"`
	Memory int `json:"memory" yaml:"memory"`
}

type OSDomainPlan struct {
	DataNodes   DataNodesPlan   `json:"dataNodes" yaml:"dataNodes"`
	MasterNodes MasterNodesPlan `json:"masterNodes" yaml:"masterNodes"`
}

type DataNodesPlan struct {
	Count         int    `json:"count" yaml:"count"`
	InstanceType  string `json:"instanceType" yaml:"instanceType"`
	VolumeSizeGiB int    `json:"volumeSize" yaml:"volumeSize"`
}

type MasterNodesPlan struct {
	Count        int    `json:"count" yaml:"count"`
	InstanceType string `json:"instanceType" yaml:"instanceType"`
}

type S3Plan struct {
	StorageClass  string `json:"pcapStorageClass" yaml:"pcapStorageClass"`
	RetentionDays int    `json:"pcapStorageDays" yaml:"pcapStorageDays"`
}

type Cidr struct {
	Block  string `json:"block" yaml:"block"`
	Prefix string `json:"prefix" yaml:"prefix"`
	Mask   int    `json:"mask" yaml:"mask"`
}

// VpcPlan is immutable once the network it describes has been created.
type VpcPlan struct {
	Cidr             *Cidr    `json:"cidr" yaml:"cidr"`
	AZs              []string `json:"azs" yaml:"azs"`
	PublicSubnetMask int      `json:"publicSubnetMask" yaml:"publicSubnetMask"`
}

// IsComplete reports whether every field of the plan has been populated.
func (p *VpcPlan) IsComplete() bool {
	return p != nil && p.Cidr != nil && p.Cidr.Block != "" && len(p.AZs) > 0 && p.PublicSubnetMask > 0
}

// Details is what gets stored per cluster.
type Details struct {
	UserConfig   UserConfig  `json:"userConfig" yaml:"userConfig"`
	CapacityPlan ClusterPlan `json:"capacityPlan" yaml:"capacityPlan"`
}
